package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/quay/distroalias"
	"github.com/quay/distroalias/test"
)

// Serve starts a server for the release catalog and product list fixtures in
// the opensuse package, with "edit" applied to the release catalog, and points
// the command configuration at it.
func serve(t *testing.T, edit func(string) string) {
	t.Helper()
	dir := filepath.Join("..", "..", "opensuse", "testdata")
	rel, err := os.ReadFile(filepath.Join(dir, "distributions.json"))
	if err != nil {
		t.Fatal(err)
	}
	prod, err := os.ReadFile(filepath.Join(dir, "productlist.xml"))
	if err != nil {
		t.Fatal(err)
	}
	releases := string(rel)
	if edit != nil {
		releases = edit(releases)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/releases.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(releases))
	})
	mux.HandleFunc("/products.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write(prod)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("DISTROALIAS_RELEASES_URL", srv.URL+"/releases.json")
	t.Setenv("DISTROALIAS_PRODUCTS_URL", srv.URL+"/products.xml")
}

func run(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(ctx)
	if errOut.Len() != 0 {
		t.Logf("stderr:\n%s", errOut.String())
	}
	return out.String(), err
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	const doc = `releases_url: https://example.com/releases.json
products_url: https://example.com/products.xml
timeout: 5s
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DISTROALIAS_PRODUCTS_URL", "https://mirror.example.com/products.xml")

	got, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := config{
		ReleasesURL: "https://example.com/releases.json",
		ProductsURL: "https://mirror.example.com/products.xml",
		Timeout:     5 * time.Second,
	}
	if !cmp.Equal(got, want) {
		t.Error(cmp.Diff(got, want))
	}

	t.Run("Default", func(t *testing.T) {
		got, err := loadConfig("")
		if err != nil {
			t.Fatal(err)
		}
		if got, want := got.Timeout, defaultConfig().Timeout; got != want {
			t.Errorf("got: %v, want: %v", got, want)
		}
	})
	t.Run("Missing", func(t *testing.T) {
		if _, err := loadConfig(filepath.Join(dir, "nonexistent.yaml")); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("NegativeTimeout", func(t *testing.T) {
		t.Setenv("DISTROALIAS_TIMEOUT", "-1s")
		if _, err := loadConfig(""); err == nil {
			t.Error("expected error")
		}
	})
}

func TestResolve(t *testing.T) {
	ctx := test.Logging(t)
	serve(t, nil)

	out, err := run(ctx, t, "resolve", "--alias", "opensuse-leap-all", "--eol")
	if err != nil {
		t.Fatal(err)
	}
	var ds []distroalias.Distro
	if err := json.Unmarshal([]byte(out), &ds); err != nil {
		t.Fatal(err)
	}
	if got, want := len(ds), 5; got != want {
		t.Errorf("got: %d, want: %d", got, want)
	}

	out, err = run(ctx, t, "resolve", "-o", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	var tbl distroalias.AliasTable
	if err := yaml.Unmarshal([]byte(out), &tbl); err != nil {
		t.Fatal(err)
	}
	if got, want := tbl.WithoutTumbleweedVersion(), distroalias.CachedActiveAliases(); !cmp.Equal(got, want) {
		t.Error(cmp.Diff(got, want))
	}

	if _, err := run(ctx, t, "resolve", "--alias", "opensuse-slowroll-all"); err == nil {
		t.Error("expected error for unknown alias")
	}
}

func TestCached(t *testing.T) {
	ctx := test.Logging(t)
	out, err := run(ctx, t, "cached", "--output", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	var got distroalias.AliasTable
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if want := distroalias.CachedActiveAliases(); !cmp.Equal(got, want) {
		t.Error(cmp.Diff(got, want))
	}

	if _, err := run(ctx, t, "cached", "--output", "toml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLatest(t *testing.T) {
	ctx := test.Logging(t)
	out, err := run(ctx, t, "latest", "--cached", "opensuse-leap-micro-all")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out, "opensuse-leap-micro-6.1\n"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}

	serve(t, func(s string) string {
		return strings.Replace(s, `"version": "16.0", "state": "Stable"`, `"version": "16.0", "state": "EOL"`, 1)
	})
	out, err = run(ctx, t, "latest", "opensuse-leap-all")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out, "opensuse-leap-15.6\n"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}
}

func TestIdentify(t *testing.T) {
	ctx := test.Logging(t)
	dir := t.TempDir()
	write := func(name, doc string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	micro := write("micro", "NAME=\"openSUSE Leap Micro\"\nID=opensuse-leap-micro\nVERSION_ID=\"6.0\"\n")
	eol := write("eol", "NAME=\"openSUSE Leap\"\nID=\"opensuse-leap\"\nVERSION_ID=\"15.4\"\n")

	out, err := run(ctx, t, "identify", "--cached", micro)
	if err != nil {
		t.Fatal(err)
	}
	var got distroalias.Distro
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if want := distroalias.NewDistro("openSUSE Leap Micro", "6.0", "openSUSE:Leap:Micro:6.0", true); got != want {
		t.Errorf("got: %#v, want: %#v", got, want)
	}

	if _, err := run(ctx, t, "identify", "--cached", eol); err == nil {
		t.Error("expected error for a release missing from the cached table")
	}

	serve(t, nil)
	out, err = run(ctx, t, "identify", "-o", "yaml", eol)
	if err != nil {
		t.Fatal(err)
	}
	got = distroalias.Distro{}
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if want := distroalias.NewDistro("openSUSE Leap", "15.4", "openSUSE:Leap:15.4", false); got != want {
		t.Errorf("got: %#v, want: %#v", got, want)
	}

	t.Run("Qualifier", func(t *testing.T) {
		out, err := run(ctx, t, "identify", "--cached", "--qualifier", micro)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := out, "distro=opensuse-leap-micro-6.0\n"; got != want {
			t.Errorf("got: %q, want: %q", got, want)
		}
	})

	t.Run("PURL", func(t *testing.T) {
		const purl = `pkg:rpm/opensuse/bash@5.2.15-150500.1.1?arch=x86_64&distro=opensuse-leap-15.5`
		out, err := run(ctx, t, "identify", "--cached", "--purl", purl)
		if err != nil {
			t.Fatal(err)
		}
		var got distroalias.Distro
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatal(err)
		}
		if want := distroalias.NewDistro("openSUSE Leap", "15.5", "openSUSE:Leap:15.5", true); got != want {
			t.Errorf("got: %#v, want: %#v", got, want)
		}

		for _, bad := range []string{
			`pkg:rpm/opensuse/bash@5.2.15`,
			`pkg:rpm/opensuse/bash@5.2.15?distro=opensuse-leap-15.4`,
			`not a purl`,
		} {
			if _, err := run(ctx, t, "identify", "--cached", "--purl", bad); err == nil {
				t.Errorf("%s: expected error", bad)
			}
		}
		if _, err := run(ctx, t, "identify", "--cached", "--purl", purl, micro); err == nil {
			t.Error("expected error for both a package URL and a file")
		}
	})
}

func TestDebug(t *testing.T) {
	ctx := test.Logging(t)
	for _, debug := range []bool{false, true} {
		var out, errOut bytes.Buffer
		cmd := newRootCmd()
		args := []string{"cached", "--alias", distroalias.AllAlias}
		if debug {
			args = append(args, "--debug")
		}
		cmd.SetArgs(args)
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		if err := cmd.ExecuteContext(ctx); err != nil {
			t.Fatal(err)
		}
		t.Logf("stderr:\n%s", errOut.String())
		if got := strings.Contains(errOut.String(), "configuration loaded"); got != debug {
			t.Errorf("debug %v: debug output written: %v", debug, got)
		}
	}
}

func TestTimeoutFlag(t *testing.T) {
	ctx := test.Logging(t)
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(done) })
	t.Setenv("DISTROALIAS_RELEASES_URL", srv.URL+"/releases.json")

	_, err := run(ctx, t, "resolve", "--timeout", "50ms")
	if !errors.Is(err, distroalias.ErrTransport) {
		t.Errorf("got: %v, want kind: %v", err, distroalias.ErrTransport)
	}

	if _, err := run(ctx, t, "resolve", "--timeout", "soon"); err == nil {
		t.Error("expected error for a malformed duration")
	}
}

func TestCheck(t *testing.T) {
	t.Run("UpToDate", func(t *testing.T) {
		ctx := test.Logging(t)
		serve(t, nil)
		metrics := filepath.Join(t.TempDir(), "distroalias.prom")
		t.Setenv("DISTROALIAS_METRICS_FILE", metrics)

		out, err := run(ctx, t, "check")
		if err != nil {
			t.Fatalf("%v\n%s", err, out)
		}
		b, err := os.ReadFile(metrics)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(b, []byte("distroalias_opensuse_requests_total")) {
			t.Errorf("missing request metrics:\n%s", b)
		}
	})

	t.Run("Stale", func(t *testing.T) {
		ctx := test.Logging(t)
		serve(t, func(s string) string {
			return strings.Replace(s, `"version": "15.5", "state": "Stable"`, `"version": "15.5", "state": "EOL"`, 1)
		})
		out, err := run(ctx, t, "check")
		t.Log(out)
		if !errors.Is(err, errDrift) {
			t.Errorf("got: %v, want: %v", err, errDrift)
		}
		if !strings.Contains(out, "opensuse-leap-15.5") {
			t.Error("diff does not mention the changed release")
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		ctx := test.Logging(t)
		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)
		t.Setenv("DISTROALIAS_RELEASES_URL", srv.URL+"/releases.json")
		_, err := run(ctx, t, "check")
		if !errors.Is(err, distroalias.ErrTransport) {
			t.Errorf("got: %v, want kind: %v", err, distroalias.ErrTransport)
		}
	})
}

func TestConsistencyProblems(t *testing.T) {
	leap := distroalias.NewDistro("openSUSE Leap", "15.6", "", true)
	eol := distroalias.NewDistro("openSUSE Leap", "15.4", "", false)
	mk := func(ds ...distroalias.Distro) distroalias.AliasTable {
		return distroalias.AliasTable{
			{Key: "opensuse-leap-all", Distros: ds},
			{Key: distroalias.AllAlias, Distros: ds},
		}
	}

	if ps := consistencyProblems(mk(leap), mk(leap, eol)); len(ps) != 0 {
		t.Errorf("unexpected problems: %q", ps)
	}
	if ps := consistencyProblems(mk(leap, eol), mk(leap, eol)); len(ps) != 2 {
		t.Errorf("expected a problem per alias, got: %q", ps)
	}
	if ps := consistencyProblems(mk(leap), mk(eol)); len(ps) != 2 {
		t.Errorf("expected a problem per alias, got: %q", ps)
	}
	if ps := consistencyProblems(mk(leap)[:1], mk(leap)); len(ps) != 2 {
		t.Errorf("expected key and membership problems, got: %q", ps)
	}
}
