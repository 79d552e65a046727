package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reqsmith/reqsmith/pkg/manifest"
)

// fmtOpts holds the command-line flags for the fmt command.
type fmtOpts struct {
	write bool // rewrite files in place
	check bool // exit non-zero when files are not canonical
	diff  bool // print line-level differences instead of full output
}

// fmtCommand creates the fmt command. It rewrites manifests in canonical
// form: normalized spacing in declarations, trailing comments kept, and
// everything else passed through verbatim.
func (c *CLI) fmtCommand() *cobra.Command {
	opts := fmtOpts{}

	cmd := &cobra.Command{
		Use:   "fmt <file>...",
		Short: "Format requirements manifests canonically",
		Long: `Fmt rewrites declarations with canonical spacing ("name[extras]==1.2.3")
while leaving comments, blank lines, and non-declaration lines untouched.

By default the formatted output goes to stdout. Use --write to rewrite
files in place, --check to report unformatted files without changing
them, or --diff to see what would change.

Examples:
  reqsmith fmt requirements.txt
  reqsmith fmt --write requirements.txt
  reqsmith fmt --check requirements.txt docs/requirements.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVar(&opts.check, "check", false, "exit non-zero when files need formatting")
	cmd.Flags().BoolVarP(&opts.diff, "diff", "d", false, "print differences instead of formatted output")

	return cmd
}

func runFmt(paths []string, opts fmtOpts) error {
	dirty := 0
	for _, path := range paths {
		doc, err := loadManifest(path)
		if err != nil {
			return err
		}

		original := manifest.WriteString(doc)
		formatted := manifest.FormatString(doc)
		changed := original != formatted
		if changed {
			dirty++
		}

		switch {
		case opts.check:
			if changed {
				printWarning("%s needs formatting", path)
			}
		case opts.diff:
			if changed {
				printDiff(path, original, formatted)
			}
		case opts.write:
			if changed {
				if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				printSuccess("Formatted %s", path)
			}
		default:
			fmt.Print(formatted)
		}
	}

	if opts.check && dirty > 0 {
		return fmt.Errorf("%d file(s) need formatting", dirty)
	}
	return nil
}

// printDiff prints changed lines only. Formatting never adds or removes
// lines, so a positional comparison is exact.
func printDiff(path, original, formatted string) {
	oldLines := strings.Split(strings.TrimSuffix(original, "\n"), "\n")
	newLines := strings.Split(strings.TrimSuffix(formatted, "\n"), "\n")

	fmt.Println(StyleTitle.Render(path))
	for i := 0; i < len(oldLines) && i < len(newLines); i++ {
		if oldLines[i] == newLines[i] {
			continue
		}
		fmt.Println(StyleDim.Render(fmt.Sprintf("%4d", i+1)) + " " + StyleError.Render("- "+oldLines[i]))
		fmt.Println(StyleDim.Render("    ") + " " + StyleSuccess.Render("+ "+newLines[i]))
	}
}
