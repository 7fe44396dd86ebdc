package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"

	"github.com/quay/distroalias/opensuse"
)

// EnvPrefix is the prefix of environment variables overriding the
// configuration file, e.g. DISTROALIAS_TIMEOUT.
const envPrefix = `DISTROALIAS_`

// Config is the command configuration.
type config struct {
	ReleasesURL string        `koanf:"releases_url"`
	ProductsURL string        `koanf:"products_url"`
	Timeout     time.Duration `koanf:"timeout"`
	// MetricsFile, if set, is where request metrics are written in the
	// Prometheus text format on exit.
	MetricsFile string `koanf:"metrics_file"`
}

func defaultConfig() config {
	return config{
		Timeout: 30 * time.Second,
	}
}

// LoadConfig reads the optional YAML file at "path", then applies overrides
// from the environment.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return cfg, fmt.Errorf("loading environment: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.Timeout < 0 {
		return cfg, fmt.Errorf("bad timeout: %v", cfg.Timeout)
	}
	return cfg, nil
}

// ResolverConfig returns the resolver configuration.
func (c *config) ResolverConfig() opensuse.Config {
	return opensuse.Config{
		ReleasesURL: c.ReleasesURL,
		ProductsURL: c.ProductsURL,
	}
}
