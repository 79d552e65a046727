package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reqsmith/reqsmith/pkg/version"
)

// nameRE matches a package name per the PEP 508 grammar: it starts and ends
// with an alphanumeric, with dots, hyphens, and underscores in between.
var nameRE = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)

// normalizeRE collapses runs of name separators for PEP 503 normalization.
var normalizeRE = regexp.MustCompile(`[-_.]+`)

// Declaration is a single dependency declaration: a named external package
// requirement with an optional version constraint, optional extras, and an
// optional trailing comment.
//
// Declarations are independent of one another; identity comparisons use
// NormalizedName.
type Declaration struct {
	Name    string            // name as written (e.g., "Pymdown_Extensions")
	Extras  []string          // extras markers, lowercased (e.g., ["cpu"])
	Spec    version.Specifier // empty means unconstrained ("always latest")
	Marker  string            // environment marker after ";", verbatim, or ""
	Comment string            // trailing comment without the "#", trimmed, or ""
	Line    int               // 1-based source line, 0 if not from a file
}

// NormalizeName lowercases a package name and collapses runs of "-", "_",
// and "." into single hyphens (PEP 503), so "Pymdown_Extensions" and
// "pymdown-extensions" compare equal.
func NormalizeName(name string) string {
	return strings.ToLower(normalizeRE.ReplaceAllString(name, "-"))
}

// NormalizedName returns the declaration's name in normalized form.
func (d *Declaration) NormalizedName() string {
	return NormalizeName(d.Name)
}

// Pinned returns the exact pin and true when the declaration fixes a single
// version ("name==1.2.3").
func (d *Declaration) Pinned() (string, bool) {
	return d.Spec.ExactPin()
}

// String renders the declaration in canonical form, without its comment.
func (d *Declaration) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if len(d.Extras) > 0 {
		b.WriteByte('[')
		b.WriteString(strings.Join(d.Extras, ","))
		b.WriteByte(']')
	}
	b.WriteString(d.Spec.String())
	if d.Marker != "" {
		b.WriteString(" ; ")
		b.WriteString(d.Marker)
	}
	return b.String()
}

// parseDeclaration parses the body of a declaration line (leading and
// trailing whitespace already trimmed, but the trailing comment still
// attached).
func parseDeclaration(number int, s string) (*Declaration, error) {
	body, comment := splitComment(s)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("line %d: empty declaration", number)
	}

	decl := &Declaration{Comment: comment, Line: number}

	// Environment marker: everything after an unbracketed ";".
	if i := strings.Index(body, ";"); i >= 0 {
		decl.Marker = strings.TrimSpace(body[i+1:])
		body = strings.TrimSpace(body[:i])
	}

	m := nameRE.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("line %d: %q does not start with a package name", number, body)
	}
	decl.Name = m[1]
	rest := strings.TrimSpace(body[len(m[1]):])

	// Extras: "[cpu]" or "[cpu,tpu]".
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return nil, fmt.Errorf("line %d: unterminated extras in %q", number, body)
		}
		extras, err := parseExtras(number, rest[1:end])
		if err != nil {
			return nil, err
		}
		decl.Extras = extras
		rest = strings.TrimSpace(rest[end+1:])
	}

	spec, err := version.ParseSpecifier(rest)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", number, err)
	}
	decl.Spec = spec

	return decl, nil
}

// parseExtras splits and validates a bracketed extras list.
func parseExtras(number int, s string) ([]string, error) {
	var extras []string
	for _, extra := range strings.Split(s, ",") {
		extra = strings.ToLower(strings.TrimSpace(extra))
		if extra == "" {
			return nil, fmt.Errorf("line %d: empty extras entry", number)
		}
		if !nameRE.MatchString(extra) || nameRE.FindString(extra) != extra {
			return nil, fmt.Errorf("line %d: invalid extras entry %q", number, extra)
		}
		extras = append(extras, extra)
	}
	return extras, nil
}

// splitComment separates a trailing comment from the line body. A "#" starts
// a comment at the beginning of the line or after whitespace.
func splitComment(s string) (body, comment string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t') {
			return s[:i], strings.TrimSpace(strings.TrimPrefix(s[i:], "#"))
		}
	}
	return s, ""
}
