// Package osrelease identifies openSUSE releases from "os-release" files, as
// documented at
// https://www.freedesktop.org/software/systemd/man/os-release.html
package osrelease

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/quay/distroalias"
	"github.com/quay/distroalias/internal/log"
)

// Path is the conventional location of the os-release file.
const Path = `/etc/os-release`

// Release is the subset of os-release fields used to identify a release.
type Release struct {
	ID         string
	VersionID  string
	Name       string
	PrettyName string
	CPEName    string
}

// NameVer returns the alias-table NameVer the release corresponds to.
//
// Tumbleweed is a rolling release, so its snapshot VERSION_ID is ignored.
func (r Release) NameVer() string {
	if r.ID == distroalias.TumbleweedNameVer {
		return distroalias.TumbleweedNameVer
	}
	return r.ID + "-" + r.VersionID
}

// Parse reads os-release contents from "r".
func Parse(ctx context.Context, r io.Reader) (Release, error) {
	ctx = log.With(ctx, "component", "osrelease/Parse")
	var rel Release
	s := bufio.NewScanner(r)
	for s.Scan() && ctx.Err() == nil {
		b := bytes.TrimSpace(s.Bytes())
		if len(b) == 0 || b[0] == '#' {
			continue
		}
		eq := bytes.IndexByte(b, '=')
		if eq == -1 {
			return Release{}, &distroalias.Error{
				Op:      "osrelease.Parse",
				Kind:    distroalias.ErrDecode,
				Message: fmt.Sprintf("malformed line %q", s.Text()),
			}
		}
		key := strings.TrimSpace(string(b[:eq]))
		value := unquote(strings.TrimSpace(string(b[eq+1:])))

		switch key {
		case "ID":
			rel.ID = value
		case "VERSION_ID":
			rel.VersionID = value
		case "NAME":
			rel.Name = value
		case "PRETTY_NAME":
			rel.PrettyName = value
		case "CPE_NAME":
			rel.CPEName = value
		default:
			continue
		}
		slog.DebugContext(ctx, "found key", "key", key)
	}
	if err := s.Err(); err != nil {
		return Release{}, &distroalias.Error{
			Op:    "osrelease.Parse",
			Kind:  distroalias.ErrTransport,
			Inner: err,
		}
	}
	if err := ctx.Err(); err != nil {
		return Release{}, err
	}
	if rel.ID == "" {
		return Release{}, &distroalias.Error{
			Op:      "osrelease.Parse",
			Kind:    distroalias.ErrSchema,
			Message: `missing "ID"`,
		}
	}
	return rel, nil
}

// Unquote handles the shell-like quoting allowed on the value side.
//
// Within single quotes nothing is special; a literal single quote is written
// as '\''. Within double quotes only the metacharacters called out in the
// os-release documentation are unescaped.
func unquote(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '\'':
		v = strings.TrimFunc(v, func(r rune) bool { return r == '\'' })
		v = strings.ReplaceAll(v, `'\''`, `'`)
	case '"':
		v = strings.TrimFunc(v, func(r rune) bool { return r == '"' })
		v = strings.NewReplacer(
			"\\`", "`",
			`\\`, `\`,
			`\"`, `"`,
			`\$`, `$`,
		).Replace(v)
	}
	return v
}

// Identify reports the release in "tbl" described by "rel".
func Identify(tbl distroalias.AliasTable, rel Release) (distroalias.Distro, bool) {
	return tbl.Find(rel.NameVer())
}
