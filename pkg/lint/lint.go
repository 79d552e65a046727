// Package lint checks dependency manifests for structural problems.
//
// Each problem is reported as a [Finding] with a machine-readable code and a
// severity. The built-in rules cover the properties a manifest must hold:
// every requirement line parses, and no package is pinned to two different
// versions. Everything else (duplicates without conflict, unpinned
// dependencies, pre-release pins) is advisory.
package lint

import (
	"fmt"
	"sort"

	"github.com/reqsmith/reqsmith/pkg/manifest"
	"github.com/reqsmith/reqsmith/pkg/version"
)

// Code identifies a lint rule.
type Code string

// Lint rule codes.
const (
	// CodeParseError flags a line that should declare a dependency but
	// does not parse into a (name, optional constraint) pair.
	CodeParseError Code = "parse-error"

	// CodeDuplicatePinConflict flags two declarations of the same package
	// with different exact pins.
	CodeDuplicatePinConflict Code = "duplicate-pin-conflict"

	// CodeDuplicate flags a package declared more than once without
	// conflicting pins.
	CodeDuplicate Code = "duplicate"

	// CodeUnpinned flags a declaration without an exact pin. Unconstrained
	// declarations are legal ("always latest"); this is advisory.
	CodeUnpinned Code = "unpinned"

	// CodePrereleasePin flags an exact pin to a pre-release or dev release.
	CodePrereleasePin Code = "prerelease-pin"

	// CodeInvalidVersion flags an exact pin whose version string does not
	// parse. Only arbitrary-equality pins ("name===...") can carry one;
	// everything else fails at parse time.
	CodeInvalidVersion Code = "invalid-version"
)

// Severity grades a finding.
type Severity string

// Severity levels, ordered error > warning > info.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// defaultSeverity maps each rule to its default grade.
var defaultSeverity = map[Code]Severity{
	CodeParseError:           SeverityError,
	CodeDuplicatePinConflict: SeverityError,
	CodeDuplicate:            SeverityWarning,
	CodeUnpinned:             SeverityInfo,
	CodePrereleasePin:        SeverityInfo,
	CodeInvalidVersion:       SeverityWarning,
}

// Finding is a single lint result.
type Finding struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line"`           // 1-based source line
	Name     string   `json:"name,omitempty"` // normalized package name, if any
	Message  string   `json:"message"`
}

// Options configures a lint run.
type Options struct {
	// Severity overrides the default severity per rule. A rule mapped to
	// the empty string is disabled entirely.
	Severity map[Code]Severity
}

// Check runs all rules over the document and returns findings ordered by
// source line.
func Check(doc *manifest.Document, opts Options) []Finding {
	r := runner{opts: opts}

	r.parseErrors(doc)
	r.duplicates(doc)
	r.pins(doc)

	sort.SliceStable(r.findings, func(i, j int) bool {
		return r.findings[i].Line < r.findings[j].Line
	})
	return r.findings
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

type runner struct {
	opts     Options
	findings []Finding
}

// add records a finding unless the rule is disabled.
func (r *runner) add(code Code, line int, name, format string, args ...any) {
	sev, ok := r.severity(code)
	if !ok {
		return
	}
	r.findings = append(r.findings, Finding{
		Code:     code,
		Severity: sev,
		Line:     line,
		Name:     name,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *runner) severity(code Code) (Severity, bool) {
	if r.opts.Severity != nil {
		if sev, ok := r.opts.Severity[code]; ok {
			return sev, sev != ""
		}
	}
	return defaultSeverity[code], true
}

// parseErrors reports lines that fail to parse as declarations.
func (r *runner) parseErrors(doc *manifest.Document) {
	for _, line := range doc.Invalid() {
		r.add(CodeParseError, line.Number, "", "%v", line.Err)
	}
}

// duplicates reports packages declared more than once, distinguishing
// conflicting exact pins from benign repetition.
func (r *runner) duplicates(doc *manifest.Document) {
	byName := make(map[string][]*manifest.Declaration)
	var order []string
	for _, decl := range doc.Declarations() {
		name := decl.NormalizedName()
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = append(byName[name], decl)
	}

	for _, name := range order {
		decls := byName[name]
		if len(decls) < 2 {
			continue
		}
		if first, second, ok := pinConflict(decls); ok {
			r.add(CodeDuplicatePinConflict, second.Line, name,
				"%s pinned to conflicting versions (line %d pins %s)",
				name, first.Line, mustPin(first))
			continue
		}
		r.add(CodeDuplicate, decls[1].Line, name,
			"%s already declared on line %d", name, decls[0].Line)
	}
}

// pinConflict finds the first pair of declarations with different exact pins.
func pinConflict(decls []*manifest.Declaration) (first, second *manifest.Declaration, ok bool) {
	var pinned []*manifest.Declaration
	for _, d := range decls {
		if _, isPin := d.Pinned(); isPin {
			pinned = append(pinned, d)
		}
	}
	for i := 1; i < len(pinned); i++ {
		if !samePin(pinned[0], pinned[i]) {
			return pinned[0], pinned[i], true
		}
	}
	return nil, nil, false
}

// samePin compares two exact pins under version equality, falling back to
// string comparison when a pin is not a parseable version.
func samePin(a, b *manifest.Declaration) bool {
	ap := mustPin(a)
	bp := mustPin(b)
	av, aerr := version.Parse(ap)
	bv, berr := version.Parse(bp)
	if aerr != nil || berr != nil {
		return ap == bp
	}
	return av.Equal(bv)
}

func mustPin(d *manifest.Declaration) string {
	pin, _ := d.Pinned()
	return pin
}

// pins reports unpinned declarations, pre-release pins, and pins whose
// version string does not parse.
func (r *runner) pins(doc *manifest.Document) {
	for _, decl := range doc.Declarations() {
		pin, ok := decl.Pinned()
		if !ok {
			r.add(CodeUnpinned, decl.Line, decl.NormalizedName(),
				"%s is not pinned to an exact version", decl.NormalizedName())
			continue
		}
		v, err := version.Parse(pin)
		if err != nil {
			r.add(CodeInvalidVersion, decl.Line, decl.NormalizedName(),
				"%s is pinned to %q, which is not a valid version", decl.NormalizedName(), pin)
			continue
		}
		if v.IsPrerelease() {
			r.add(CodePrereleasePin, decl.Line, decl.NormalizedName(),
				"%s is pinned to pre-release %s", decl.NormalizedName(), pin)
		}
	}
}
