package manifest

import (
	"io"
	"strings"
)

// Write reproduces the document exactly as it was read, including comments,
// blank separator lines, and any trailing newline.
func Write(d *Document, w io.Writer) error {
	for i, line := range d.Lines {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, line.Raw); err != nil {
			return err
		}
	}
	if len(d.Lines) > 0 && d.trailingNewline {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Format writes the document in canonical form:
//
//   - declaration bodies are re-rendered with normalized spacing
//     ("name[extras]==1.2.3"), keeping the name's written spelling
//   - trailing comments are kept, separated by two spaces
//   - comments, blank lines, option lines, URL requirements, and lines that
//     do not parse are passed through unchanged
//
// The output always ends with a newline.
func Format(d *Document, w io.Writer) error {
	for _, line := range d.Lines {
		var out string
		if line.Kind == KindDeclaration {
			out = formatDeclaration(line.Decl)
		} else {
			out = strings.TrimRight(line.Raw, " \t")
		}
		if _, err := io.WriteString(w, out+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func formatDeclaration(decl *Declaration) string {
	out := decl.String()
	if decl.Comment != "" {
		out += "  # " + decl.Comment
	}
	return out
}

// FormatString returns the canonical rendition of the document.
func FormatString(d *Document) string {
	var b strings.Builder
	_ = Format(d, &b)
	return b.String()
}

// WriteString returns the byte-faithful rendition of the document.
func WriteString(d *Document) string {
	var b strings.Builder
	_ = Write(d, &b)
	return b.String()
}
