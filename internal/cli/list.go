package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/reqsmith/reqsmith/pkg/manifest"
)

// listOpts holds the command-line flags for the list command.
type listOpts struct {
	jsonOut bool
}

// listCommand creates the list command, a quick overview of what a
// manifest declares.
func (c *CLI) listCommand() *cobra.Command {
	opts := listOpts{}

	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List the declarations in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output declarations as JSON")

	return cmd
}

type listEntry struct {
	Name      string   `json:"name"`
	Extras    []string `json:"extras,omitempty"`
	Specifier string   `json:"specifier,omitempty"`
	Pin       string   `json:"pin,omitempty"`
	Marker    string   `json:"marker,omitempty"`
	Line      int      `json:"line"`
}

func runList(path string, opts listOpts) error {
	doc, err := loadManifest(path)
	if err != nil {
		return err
	}
	decls := doc.Declarations()

	if opts.jsonOut {
		entries := make([]listEntry, 0, len(decls))
		for _, d := range decls {
			e := listEntry{
				Name:      d.NormalizedName(),
				Extras:    d.Extras,
				Specifier: d.Spec.String(),
				Marker:    d.Marker,
				Line:      d.Line,
			}
			if pin, ok := d.Pinned(); ok {
				e.Pin = pin
			}
			entries = append(entries, e)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(decls) == 0 {
		printInfo("No declarations in %s", path)
		return nil
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, 0, len(decls))
	pinned := 0
	for _, d := range decls {
		constraint := d.Spec.String()
		if constraint == "" {
			constraint = "—"
		}
		status := "floating"
		if _, ok := d.Pinned(); ok {
			status = "pinned"
			pinned++
		}
		rows = append(rows, []string{d.NormalizedName(), extrasString(d), constraint, status})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Extras", "Constraint", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 && rows[row][3] == "pinned" {
				return StyleSuccess
			}
			if col == 3 {
				return StyleWarning
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())
	printDetail("%d declaration(s), %d pinned", len(decls), pinned)
	return nil
}

func extrasString(d *manifest.Declaration) string {
	if len(d.Extras) == 0 {
		return ""
	}
	out := d.Extras[0]
	for _, e := range d.Extras[1:] {
		out += "," + e
	}
	return out
}
