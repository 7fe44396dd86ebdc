package opensuse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/quay/distroalias"
	"github.com/quay/distroalias/internal/httputil"
	"github.com/quay/distroalias/internal/log"
)

// Resolve fetches both catalogs and returns the alias table.
//
// Releases marked EOL are left out unless "includeEOL" is set. Tumbleweed is
// always included. Any failure to fetch, decode, or validate either document
// fails the whole call; see [distroalias.ErrTransport],
// [distroalias.ErrDecode], and [distroalias.ErrSchema].
func (r *Resolver) Resolve(ctx context.Context, includeEOL bool) (tbl distroalias.AliasTable, err error) {
	ctx = log.With(ctx, "component", "opensuse/Resolver.Resolve")
	ctx, span := tracer.Start(ctx, "Resolve",
		trace.WithAttributes(includeEOLKey.Bool(includeEOL)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer func() {
		resolveCalls.Add(ctx, 1, metric.WithAttributes(
			includeEOLKey.Bool(includeEOL),
			successKey.Bool(err == nil),
		))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "resolve failed")
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	var fams []family
	err = r.fetch(ctx, "releases", r.releases, "application/json", func(rd io.Reader) (err error) {
		fams, err = decodeReleases(rd)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("opensuse: release catalog: %w", err)
	}
	var prods []product
	err = r.fetch(ctx, "products", r.products, "application/xml", func(rd io.Reader) (err error) {
		prods, err = decodeProducts(rd)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("opensuse: product list: %w", err)
	}

	tbl, err = buildTable(ctx, fams, prods, includeEOL)
	if err != nil {
		return nil, fmt.Errorf("opensuse: %w", err)
	}
	slog.DebugContext(ctx, "resolved aliases",
		"include_eol", includeEOL,
		"aliases", tbl.Len())
	return tbl, nil
}

// Fetch requests "u" and hands the body to "decode".
func (r *Resolver) fetch(ctx context.Context, name string, u *url.URL, accept string, decode func(io.Reader) error) error {
	ctx = log.With(ctx, "document", name)
	ctx, span := tracer.Start(ctx, "fetch/"+name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("url.full", u.Redacted()))

	start := time.Now()
	outcome := "error"
	defer func() {
		requestCounter.WithLabelValues(name, outcome).Inc()
		requestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &distroalias.Error{
			Op:      "opensuse.fetch",
			Kind:    distroalias.ErrInternal,
			Message: "unable to construct request",
			Inner:   err,
		}
	}
	req.Header.Set("accept", accept)
	slog.DebugContext(ctx, "making request", "url", u.Redacted())
	res, err := r.client.Do(req)
	if err != nil {
		return &distroalias.Error{
			Op:      "opensuse.fetch",
			Kind:    distroalias.ErrTransport,
			Message: fmt.Sprintf("error requesting %q", u.Redacted()),
			Inner:   err,
		}
	}
	defer res.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	if err := httputil.CheckResponse(res); err != nil {
		return err
	}
	if err := decode(res.Body); err != nil {
		return err
	}
	outcome = "ok"
	return nil
}

// BuildTable joins the release catalog with the product list.
func buildTable(ctx context.Context, fams []family, prods []product, includeEOL bool) (distroalias.AliasTable, error) {
	tbl := make(distroalias.AliasTable, 0, len(fams)+1)
	for _, f := range fams {
		var ds []distroalias.Distro
		switch f.ID {
		case familyTumbleweed:
			if len(f.Releases) == 0 {
				return nil, &distroalias.Error{
					Op:      "opensuse.buildTable",
					Kind:    distroalias.ErrSchema,
					Message: "no Tumbleweed release in catalog",
				}
			}
			rel := f.Releases[0]
			ds = append(ds, distroalias.Distro{
				Name:           rel.Name,
				Version:        rel.Version,
				NameVer:        distroalias.TumbleweedNameVer,
				OBSProjectName: distroalias.TumbleweedProject,
				Active:         true,
			})
		default:
			for _, rel := range f.Releases {
				active := rel.Active()
				if !active && !includeEOL {
					slog.DebugContext(ctx, "skipping EOL release",
						"family", f.ID,
						"version", rel.Version)
					continue
				}
				prj := matchProject(prods, f.ID, rel.Version)
				if prj == "" {
					slog.DebugContext(ctx, "no build project for release",
						"family", f.ID,
						"version", rel.Version)
				}
				ds = append(ds, distroalias.NewDistro(rel.Name, rel.Version, prj, active))
			}
		}
		if len(ds) == 0 {
			continue
		}
		tbl = append(tbl, distroalias.Alias{
			Key:     distroalias.AliasKey(displayFamily(f.ID)),
			Distros: ds,
		})
	}
	tbl = append(tbl, distroalias.Alias{
		Key:     distroalias.AllAlias,
		Distros: tbl.Aggregate(),
	})
	return tbl, nil
}
