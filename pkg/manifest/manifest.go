// Package manifest parses and writes line-oriented dependency manifests in
// the requirements.txt dialect.
//
// A manifest is a flat list of declarations, one per line:
//
//	# documentation tooling
//	mkdocs==1.2.3            # static site generator
//	pymdown-extensions==9.4
//
//	jax[cpu]                 # project runtime dependency
//
// Blank lines are cosmetic section separators, full-line comments and
// trailing comments carry no machine semantics, and declarations are
// independent of one another. The parser preserves the complete line
// structure so a parsed document can be written back byte-for-byte.
//
// Installer option lines ("-r", "--index-url", "-e .") and URL or VCS
// requirements are recognized and carried through verbatim; they never
// produce declarations.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LineKind classifies a manifest line.
type LineKind int

const (
	// KindBlank is an empty or whitespace-only line.
	KindBlank LineKind = iota
	// KindComment is a full-line comment ("# ...").
	KindComment
	// KindDeclaration is a dependency declaration.
	KindDeclaration
	// KindOption is an installer option line ("-r other.txt", "--index-url ...").
	KindOption
	// KindURL is a URL or VCS requirement ("git+https://...", "https://...").
	KindURL
	// KindInvalid is a line that should declare a dependency but does not parse.
	KindInvalid
)

// String returns a short identifier for the kind.
func (k LineKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindDeclaration:
		return "declaration"
	case KindOption:
		return "option"
	case KindURL:
		return "url"
	default:
		return "invalid"
	}
}

// Line is a single manifest line with its classification.
type Line struct {
	Number int      // 1-based line number
	Raw    string   // the line exactly as read, without the newline
	Kind   LineKind // classification
	Decl   *Declaration
	Err    error // parse error for KindInvalid lines
}

// Document is a parsed manifest that preserves full line structure.
type Document struct {
	Lines []Line

	// trailingNewline records whether the source ended with a newline, so
	// Write can reproduce the file exactly.
	trailingNewline bool
}

// Parse reads a manifest from r.
//
// Parse never fails on malformed declarations; those become KindInvalid
// lines carrying their parse error, so callers (the linter, the formatter)
// can report them with line numbers. Only read errors are returned.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{trailingNewline: true}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		doc.Lines = append(doc.Lines, classify(n, scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return doc, nil
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}
	doc.trailingNewline = len(data) == 0 || data[len(data)-1] == '\n'
	return doc, nil
}

// classify determines the kind of a raw line and parses declarations.
func classify(number int, raw string) Line {
	line := Line{Number: number, Raw: raw}
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		line.Kind = KindBlank
	case strings.HasPrefix(trimmed, "#"):
		line.Kind = KindComment
	case strings.HasPrefix(trimmed, "-"):
		line.Kind = KindOption
	case isURLRequirement(trimmed):
		line.Kind = KindURL
	default:
		decl, err := parseDeclaration(number, trimmed)
		if err != nil {
			line.Kind = KindInvalid
			line.Err = err
		} else {
			line.Kind = KindDeclaration
			line.Decl = decl
		}
	}

	return line
}

// isURLRequirement reports whether the line is a direct URL or VCS
// requirement rather than a named declaration.
func isURLRequirement(s string) bool {
	if strings.Contains(s, "://") {
		return true
	}
	for _, prefix := range []string{"git+", "hg+", "svn+", "bzr+"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Declarations returns the parsed declarations in file order.
func (d *Document) Declarations() []*Declaration {
	var decls []*Declaration
	for _, line := range d.Lines {
		if line.Kind == KindDeclaration {
			decls = append(decls, line.Decl)
		}
	}
	return decls
}

// Invalid returns the lines that failed to parse as declarations.
func (d *Document) Invalid() []Line {
	var bad []Line
	for _, line := range d.Lines {
		if line.Kind == KindInvalid {
			bad = append(bad, line)
		}
	}
	return bad
}

// Find returns the declarations whose normalized name matches name.
// Several declarations may share a name; the linter reports on that.
func (d *Document) Find(name string) []*Declaration {
	want := NormalizeName(name)
	var found []*Declaration
	for _, decl := range d.Declarations() {
		if decl.NormalizedName() == want {
			found = append(found, decl)
		}
	}
	return found
}
