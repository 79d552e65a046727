package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reqsmith/reqsmith/pkg/lint"
	"github.com/reqsmith/reqsmith/pkg/observability"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	jsonOut bool // emit findings as JSON instead of styled text
	quiet   bool // suppress non-error findings
}

// checkCommand creates the check command. It lints one or more manifest
// files and exits non-zero when any error-severity finding is reported.
func (c *CLI) checkCommand() *cobra.Command {
	opts := checkOpts{}

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Lint requirements manifests",
		Long: `Check parses requirements manifests and reports findings: unparsable
lines, duplicate declarations, conflicting pins, unpinned dependencies,
and pre-release pins.

The exit code is non-zero when any finding has error severity.

Examples:
  reqsmith check requirements.txt
  reqsmith check --json docs/requirements.txt
  reqsmith check requirements.txt requirements-dev.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output findings as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only report error-severity findings")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, args []string, opts checkOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	lintOpts := cfg.LintOptions()

	failed := false
	byFile := make(map[string][]lint.Finding, len(args))
	for _, path := range args {
		observability.Check().OnCheckStart(cmd.Context(), path)
		start := time.Now()

		doc, err := loadManifest(path)
		if err != nil {
			observability.Check().OnCheckComplete(cmd.Context(), path, 0, time.Since(start), err)
			return err
		}
		findings := lint.Check(doc, lintOpts)
		if opts.quiet {
			findings = errorsOnly(findings)
		}
		byFile[path] = findings
		if lint.HasErrors(findings) {
			failed = true
		}

		observability.Check().OnCheckComplete(cmd.Context(), path, len(findings), time.Since(start), nil)
	}

	if opts.jsonOut {
		out := make([]fileFindings, 0, len(args))
		for _, path := range args {
			findings := byFile[path]
			if findings == nil {
				findings = []lint.Finding{}
			}
			out = append(out, fileFindings{File: path, Findings: findings})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		total := 0
		for _, path := range args {
			for _, f := range byFile[path] {
				printFinding(path, f)
				total++
			}
		}
		if total == 0 {
			printSuccess("%d file(s) checked, no findings", len(args))
		} else {
			printDetail("%d finding(s) in %d file(s)", total, len(args))
		}
	}

	if failed {
		return fmt.Errorf("check failed")
	}
	return nil
}

type fileFindings struct {
	File     string         `json:"file"`
	Findings []lint.Finding `json:"findings"`
}

func errorsOnly(findings []lint.Finding) []lint.Finding {
	var out []lint.Finding
	for _, f := range findings {
		if f.Severity == lint.SeverityError {
			out = append(out, f)
		}
	}
	return out
}
