package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reqsmith/reqsmith/pkg/observability"
	"github.com/reqsmith/reqsmith/pkg/registry"
	"github.com/reqsmith/reqsmith/pkg/version"
)

// verifyOpts holds the command-line flags for the verify command.
type verifyOpts struct {
	refresh     bool // bypass the response cache
	offline     bool // serve only from the cache, no network
	noCache     bool // disable the cache entirely
	jsonOut     bool // emit results as JSON
	interactive bool // live progress via the TUI
	workers     int  // concurrent index lookups
}

// verifyCommand creates the verify command. It checks every exact pin in a
// manifest against the package index.
func (c *CLI) verifyCommand() *cobra.Command {
	opts := verifyOpts{workers: 8}

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify pinned versions against the package index",
		Long: `Verify confirms that every exactly pinned declaration names a package
that exists on the index and a version that was actually published.
Unconstrained declarations are reported with the latest known version.

Responses are cached (default 24h); use --refresh to force fresh lookups
or --offline to rely on the cache alone.

Examples:
  reqsmith verify requirements.txt
  reqsmith verify --refresh requirements.txt
  reqsmith verify --offline --json requirements.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVerify(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache and query the index")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "use cached responses only, fail on cache misses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable response caching")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output results as JSON")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "show live progress")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "concurrent index lookups")

	return cmd
}

func (c *CLI) runVerify(cmd *cobra.Command, path string, opts verifyOpts) error {
	if opts.refresh && opts.offline {
		return fmt.Errorf("--refresh and --offline are mutually exclusive")
	}
	logger := loggerFromContext(cmd.Context())

	idx, err := c.newIndex(opts.noCache)
	if err != nil {
		return err
	}
	idx.SetOffline(opts.offline)

	doc, err := loadManifest(path)
	if err != nil {
		return err
	}
	decls := doc.Declarations()
	if len(decls) == 0 {
		printInfo("No declarations in %s", path)
		return nil
	}

	observability.Check().OnVerifyStart(cmd.Context(), path, len(decls))
	start := time.Now()

	verifyOptions := registry.Options{
		Workers: opts.workers,
		Refresh: opts.refresh,
		Logger:  func(msg string, args ...any) { logger.Warnf(msg, args...) },
	}

	var results []registry.Result
	if opts.interactive && !opts.jsonOut {
		results, err = runVerifyTUI(cmd.Context(), idx, decls, verifyOptions)
	} else {
		prog := newProgress(logger)
		results, err = registry.VerifyPins(cmd.Context(), idx, decls, verifyOptions)
		if err == nil {
			prog.done(fmt.Sprintf("Verified %d declarations", len(results)))
		}
	}

	failures := registry.Failures(results)
	observability.Check().OnVerifyComplete(cmd.Context(), path, len(failures), time.Since(start), err)
	if err != nil {
		return err
	}

	switch {
	case opts.jsonOut:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	case !opts.interactive: // the live view already rendered per-result lines
		for _, r := range results {
			printResult(r)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d declarations failed verification", len(failures), len(results))
	}
	if !opts.jsonOut {
		printSuccess("All %d declarations verified", len(results))
	}
	return nil
}

// printResult prints one verification result with its status icon.
func printResult(r registry.Result) {
	label := r.Name
	if r.Pin != "" {
		label = r.Name + version.FormatPin(r.Pin)
	}
	switch r.Status {
	case registry.StatusOK:
		if r.Pin == "" {
			printDetail("%s unconstrained, latest is %s", label, r.Latest)
		} else if r.Latest != "" && r.Latest != r.Pin {
			printDetail("%s ok, latest is %s", label, r.Latest)
		} else {
			printDetail("%s ok", label)
		}
	case registry.StatusUnknownPackage:
		printError("%s: package not on index (line %d)", label, r.Line)
	case registry.StatusUnknownVersion:
		msg := fmt.Sprintf("%s: version never published (line %d)", label, r.Line)
		if r.Latest != "" {
			msg += fmt.Sprintf(", latest is %s", r.Latest)
		}
		printError("%s", msg)
	default:
		printWarning("%s: %v (line %d)", label, r.Err, r.Line)
	}
}
