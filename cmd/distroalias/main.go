// Command distroalias prints openSUSE distribution aliases.
//
// Usage:
//
//	distroalias resolve [--eol] [--alias key] [--output json|yaml]
//	distroalias cached [--alias key] [--output json|yaml]
//	distroalias latest [--cached] <alias>
//	distroalias identify [--cached] [--qualifier] [--output json|yaml] [os-release file]
//	distroalias identify [--cached] [--qualifier] --purl <package URL>
//	distroalias check
//
// The "check" subcommand exits 2 if the cached table is out of date.
//
// Configuration is read from the YAML file named by --config, if any, then
// from DISTROALIAS_* environment variables (e.g. DISTROALIAS_TIMEOUT=10s).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/package-url/packageurl-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/quay/distroalias"
	"github.com/quay/distroalias/internal/log"
	"github.com/quay/distroalias/opensuse"
	"github.com/quay/distroalias/osrelease"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, errDrift):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// App holds state shared by the subcommands.
type app struct {
	configPath string
	debug      bool
	timeout    time.Duration
	cfg        config
}

func (a *app) resolver() (*opensuse.Resolver, error) {
	return opensuse.NewResolver(
		opensuse.WithClient(&http.Client{Timeout: a.cfg.Timeout}),
		opensuse.WithConfig(a.cfg.ResolverConfig()),
	)
}

// WriteMetrics writes the default registry out if configured to.
func (a *app) writeMetrics(ctx context.Context) {
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, prometheus.DefaultGatherer); err != nil {
		slog.WarnContext(ctx, "unable to write metrics", "file", a.cfg.MetricsFile, "reason", err)
	}
}

func newRootCmd() *cobra.Command {
	var a app
	root := &cobra.Command{
		Use:           "distroalias",
		Short:         "Print openSUSE distribution aliases",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(slog.New(log.NewHandler(cmd.ErrOrStderr())))
			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = a.timeout
			}
			a.cfg = cfg
			ctx := log.With(cmd.Context(), "command", cmd.Name())
			if a.debug {
				ctx = log.WithLevel(ctx, slog.LevelDebug)
			}
			cmd.SetContext(ctx)
			slog.DebugContext(ctx, "configuration loaded",
				"releases_url", cfg.ReleasesURL,
				"products_url", cfg.ProductsURL,
				"timeout", cfg.Timeout)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.writeMetrics(cmd.Context())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.BoolVar(&a.debug, "debug", false, "enable debug logging")
	pf.DurationVar(&a.timeout, "timeout", defaultConfig().Timeout, "HTTP client timeout")

	root.AddCommand(
		newResolveCmd(&a),
		newCachedCmd(),
		newLatestCmd(&a),
		newIdentifyCmd(&a),
		newCheckCmd(&a),
	)
	return root
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		eol    bool
		alias  string
		format string
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Fetch the current aliases from the openSUSE APIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolver()
			if err != nil {
				return err
			}
			tbl, err := r.Resolve(cmd.Context(), eol)
			if err != nil {
				return err
			}
			return printTable(cmd, tbl, alias, format)
		},
	}
	cmd.Flags().BoolVar(&eol, "eol", false, "include end-of-life releases")
	cmd.Flags().StringVar(&alias, "alias", "", "only print the releases of this alias")
	cmd.Flags().StringVarP(&format, "output", "o", formatJSON, "output format: json or yaml")
	return cmd
}

func newCachedCmd() *cobra.Command {
	var (
		alias  string
		format string
	)
	cmd := &cobra.Command{
		Use:   "cached",
		Short: "Print the cached aliases of active releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTable(cmd, distroalias.CachedActiveAliases(), alias, format)
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "only print the releases of this alias")
	cmd.Flags().StringVarP(&format, "output", "o", formatJSON, "output format: json or yaml")
	return cmd
}

func newLatestCmd(a *app) *cobra.Command {
	var cached bool
	cmd := &cobra.Command{
		Use:   "latest <alias>",
		Short: "Print the namever of the newest release of an alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := distroalias.CachedActiveAliases()
			if !cached {
				r, err := a.resolver()
				if err != nil {
					return err
				}
				if tbl, err = r.Resolve(cmd.Context(), false); err != nil {
					return err
				}
			}
			d, ok := tbl.Latest(args[0])
			if !ok {
				return fmt.Errorf("no releases for alias %q", args[0])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), d.NameVer)
			return err
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "use the cached aliases instead of fetching")
	return cmd
}

func newIdentifyCmd(a *app) *cobra.Command {
	var (
		cached    bool
		purl      string
		qualifier bool
		format    string
	)
	cmd := &cobra.Command{
		Use:   "identify [os-release file]",
		Short: "Print the release described by an os-release file or package URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if purl != "" && len(args) != 0 {
				return errors.New("--purl and an os-release file are mutually exclusive")
			}
			tbl := distroalias.CachedActiveAliases()
			if !cached {
				r, err := a.resolver()
				if err != nil {
					return err
				}
				if tbl, err = r.Resolve(ctx, true); err != nil {
					return err
				}
			}

			var (
				d  distroalias.Distro
				ok bool
			)
			switch {
			case purl != "":
				p, err := packageurl.FromString(purl)
				if err != nil {
					return fmt.Errorf("bad package URL %q: %w", purl, err)
				}
				if d, ok = tbl.FindPURL(p); !ok {
					return fmt.Errorf("%s: no known release in %q qualifier", purl, distroalias.PURLDistroKey)
				}
			default:
				p := osrelease.Path
				if len(args) == 1 {
					p = args[0]
				}
				rel, err := readOSRelease(ctx, p)
				if err != nil {
					return err
				}
				if d, ok = osrelease.Identify(tbl, rel); !ok {
					return fmt.Errorf("%s: unknown release %q", p, rel.NameVer())
				}
			}
			if qualifier {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), d.PURLQualifier().String())
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, d)
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "use the cached aliases instead of fetching")
	cmd.Flags().StringVar(&purl, "purl", "", "identify the release named by this package URL's distro qualifier")
	cmd.Flags().BoolVar(&qualifier, "qualifier", false, "only print the package URL distro qualifier")
	cmd.Flags().StringVarP(&format, "output", "o", formatJSON, "output format: json or yaml")
	return cmd
}

func readOSRelease(ctx context.Context, p string) (osrelease.Release, error) {
	f, err := os.Open(p)
	if err != nil {
		return osrelease.Release{}, err
	}
	defer f.Close()
	rel, err := osrelease.Parse(ctx, f)
	if err != nil {
		return osrelease.Release{}, fmt.Errorf("%s: %w", p, err)
	}
	return rel, nil
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compare the cached aliases against the openSUSE APIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolver()
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), r, cmd.OutOrStdout())
		},
	}
}

func printTable(cmd *cobra.Command, tbl distroalias.AliasTable, alias, format string) error {
	if alias == "" {
		return writeOutput(cmd.OutOrStdout(), format, tbl)
	}
	ds, ok := tbl.Get(alias)
	if !ok {
		return fmt.Errorf("unknown alias %q (known: %q)", alias, tbl.Keys())
	}
	return writeOutput(cmd.OutOrStdout(), format, ds)
}
