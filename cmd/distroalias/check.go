package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/quay/distroalias"
	"github.com/quay/distroalias/opensuse"
)

// ErrDrift is returned by runCheck when the live data disagrees with the
// cached table or is internally inconsistent.
var errDrift = errors.New("check failed")

// RunCheck resolves the aliases with and without EOL releases and reports
// every inconsistency between them and with the cached table to "out".
func runCheck(ctx context.Context, r *opensuse.Resolver, out io.Writer) error {
	var active, all distroalias.AliasTable
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		active, err = r.Resolve(ctx, false)
		return err
	})
	eg.Go(func() (err error) {
		all, err = r.Resolve(ctx, true)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	problems := consistencyProblems(active, all)
	cached := distroalias.CachedActiveAliases()
	if got := active.WithoutTumbleweedVersion(); !got.Equal(cached) {
		// Converted to drop the Equal method, so that the diff is per-field.
		d := cmp.Diff([]distroalias.Alias(cached), []distroalias.Alias(got))
		problems = append(problems, "cached table is out of date (-cached +live):\n"+d)
	}
	for _, p := range problems {
		fmt.Fprintln(out, p)
	}
	if len(problems) != 0 {
		return fmt.Errorf("%w: %d problem(s)", errDrift, len(problems))
	}
	slog.InfoContext(ctx, "cached table up to date", "aliases", cached.Len())
	return nil
}

// ConsistencyProblems describes the ways the tables resolved without and with
// EOL releases disagree with each other.
func consistencyProblems(active, all distroalias.AliasTable) []string {
	var out []string
	if !cmp.Equal(active.Keys(), all.Keys()) {
		out = append(out, fmt.Sprintf("alias keys differ: %q vs. %q", active.Keys(), all.Keys()))
	}
	for _, a := range all {
		ds, _ := active.Get(a.Key)
		seen := make(map[distroalias.Distro]struct{}, len(a.Distros))
		for _, d := range a.Distros {
			seen[d] = struct{}{}
		}
		for _, d := range ds {
			if !d.Active {
				out = append(out, fmt.Sprintf("%s: EOL release %v included without EOL releases requested", a.Key, d))
			}
			if _, ok := seen[d]; !ok {
				out = append(out, fmt.Sprintf("%s: active release %v missing with EOL releases included", a.Key, d))
			}
			delete(seen, d)
		}
		for d := range seen {
			if d.Active {
				out = append(out, fmt.Sprintf("%s: active release %v only listed with EOL releases included", a.Key, d))
			}
		}
	}
	return out
}
