// Package opensuse resolves openSUSE distribution aliases from the public
// openSUSE APIs.
//
// Two documents are consulted: the release catalog published at
// get.opensuse.org, listing the releases of every distribution family, and the
// product list of the openSUSE project on build.opensuse.org, which names the
// project each product is built from. They are joined into an
// [distroalias.AliasTable].
//
// There is no caching, retrying, or rate limiting: every call to
// [Resolver.Resolve] makes two requests. Callers wanting a fallback should use
// [distroalias.CachedActiveAliases] explicitly.
package opensuse

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/quay/distroalias"
)

// Default endpoints.
const (
	DefaultReleasesURL = `https://get.opensuse.org/api/v0/distributions.json`
	DefaultProductsURL = `https://api.opensuse.org/public/source/openSUSE?view=productlist&expand=1&format=xml`
)

// Config is the configuration accepted by a Resolver.
type Config struct {
	// ReleasesURL is the location of the release catalog. If empty,
	// DefaultReleasesURL is used.
	ReleasesURL string `json:"releases_url" yaml:"releases_url"`
	// ProductsURL is the location of the product list. If empty,
	// DefaultProductsURL is used.
	ProductsURL string `json:"products_url" yaml:"products_url"`
}

// Resolver fetches and joins the openSUSE catalogs.
//
// A Resolver holds no state between calls and is safe for concurrent use.
type Resolver struct {
	client   *http.Client
	releases *url.URL
	products *url.URL
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithClient sets the http.Client used by a Resolver.
//
// If this Option is not supplied, http.DefaultClient will be used. Timeouts
// should be configured on the client.
func WithClient(c *http.Client) Option {
	return func(r *Resolver) error {
		r.client = c
		return nil
	}
}

// WithConfig overrides the endpoints used by a Resolver.
func WithConfig(cfg Config) Option {
	return func(r *Resolver) error {
		var err error
		if cfg.ReleasesURL != "" {
			if r.releases, err = parseEndpoint(cfg.ReleasesURL); err != nil {
				return err
			}
		}
		if cfg.ProductsURL != "" {
			if r.products, err = parseEndpoint(cfg.ProductsURL); err != nil {
				return err
			}
		}
		return nil
	}
}

// NewResolver returns a Resolver talking to the default endpoints, unless
// configured otherwise.
func NewResolver(opts ...Option) (*Resolver, error) {
	r := &Resolver{}
	for _, o := range opts {
		if err := o(r); err != nil {
			return nil, err
		}
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	if r.releases == nil {
		r.releases = defaultReleases
	}
	if r.products == nil {
		r.products = defaultProducts
	}
	return r, nil
}

var defaultReleases, defaultProducts *url.URL

func init() {
	var err error
	defaultReleases, err = url.Parse(DefaultReleasesURL)
	if err != nil {
		panic("static url somehow didn't parse")
	}
	defaultProducts, err = url.Parse(DefaultProductsURL)
	if err != nil {
		panic("static url somehow didn't parse")
	}
}

func parseEndpoint(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, &distroalias.Error{
			Op:      "opensuse.WithConfig",
			Kind:    distroalias.ErrInvalid,
			Message: "bad endpoint",
			Inner:   err,
		}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &distroalias.Error{
			Op:      "opensuse.WithConfig",
			Kind:    distroalias.ErrInvalid,
			Message: fmt.Sprintf("endpoint %q is not an absolute http(s) URL", s),
		}
	}
	return u, nil
}

var defaultResolver = sync.OnceValues(func() (*Resolver, error) {
	return NewResolver()
})

// GetDistroAliases fetches the openSUSE catalogs from their default locations
// and returns the alias table. EOL releases are only included if "includeEOL"
// is set.
func GetDistroAliases(ctx context.Context, includeEOL bool) (distroalias.AliasTable, error) {
	r, err := defaultResolver()
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, includeEOL)
}
