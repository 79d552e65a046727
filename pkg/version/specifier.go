package version

import (
	"fmt"
	"strings"
)

// Op is a version comparison operator.
type Op string

// Comparison operators, in the requirements dialect's spelling.
const (
	OpEq         Op = "=="
	OpNe         Op = "!="
	OpGe         Op = ">="
	OpLe         Op = "<="
	OpGt         Op = ">"
	OpLt         Op = "<"
	OpCompatible Op = "~="
	OpArbitrary  Op = "==="
)

// opOrder lists operators longest-first so "===" is not read as "==" + "=".
var opOrder = []Op{OpArbitrary, OpCompatible, OpEq, OpNe, OpGe, OpLe, OpGt, OpLt}

// Clause is a single comparison, e.g. ">=1.2" or "==1.2.*".
type Clause struct {
	Op       Op
	Operand  string // operand as written, wildcard suffix included
	version  *Version
	wildcard bool // operand ended in ".*" (only legal with == and !=)
}

// Specifier is a comma-separated conjunction of clauses, e.g. ">=1.2,<2.0".
// An empty Specifier matches every version ("always latest").
type Specifier []Clause

// ParseSpecifier parses a specifier string. Whitespace around clauses and
// operators is ignored. An empty string yields an empty (match-all)
// specifier.
func ParseSpecifier(s string) (Specifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var spec Specifier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty clause in specifier %q", s)
		}
		clause, err := parseClause(part)
		if err != nil {
			return nil, err
		}
		spec = append(spec, clause)
	}
	return spec, nil
}

func parseClause(s string) (Clause, error) {
	var op Op
	for _, candidate := range opOrder {
		if strings.HasPrefix(s, string(candidate)) {
			op = candidate
			break
		}
	}
	if op == "" {
		return Clause{}, fmt.Errorf("clause %q has no comparison operator", s)
	}

	operand := strings.TrimSpace(strings.TrimPrefix(s, string(op)))
	if operand == "" {
		return Clause{}, fmt.Errorf("clause %q has no version operand", s)
	}

	c := Clause{Op: op, Operand: operand}

	if op == OpArbitrary {
		// === compares the literal string; no version parsing.
		return c, nil
	}

	base := operand
	if strings.HasSuffix(operand, ".*") {
		if op != OpEq && op != OpNe {
			return Clause{}, fmt.Errorf("wildcard operand %q requires == or !=", s)
		}
		c.wildcard = true
		base = strings.TrimSuffix(operand, ".*")
	}

	v, err := Parse(base)
	if err != nil {
		return Clause{}, err
	}
	if op == OpCompatible && len(v.Release) < 2 {
		return Clause{}, fmt.Errorf("~= requires at least two release segments in %q", s)
	}
	c.version = v
	return c, nil
}

// String reassembles the specifier in its written form.
func (s Specifier) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = string(c.Op) + c.Operand
	}
	return strings.Join(parts, ",")
}

// ExactPin returns the pinned version when the specifier fixes exactly one
// release: a single "==" clause without a wildcard, or a single "===" clause.
func (s Specifier) ExactPin() (string, bool) {
	if len(s) != 1 {
		return "", false
	}
	c := s[0]
	if c.Op == OpArbitrary {
		return c.Operand, true
	}
	if c.Op == OpEq && !c.wildcard {
		return c.Operand, true
	}
	return "", false
}

// Match reports whether v satisfies every clause of the specifier.
func (s Specifier) Match(v *Version) bool {
	for _, c := range s {
		if !c.match(v) {
			return false
		}
	}
	return true
}

func (c Clause) match(v *Version) bool {
	switch c.Op {
	case OpArbitrary:
		return strings.EqualFold(strings.TrimSpace(v.String()), c.Operand)
	case OpEq:
		if c.wildcard {
			return c.prefixMatch(v)
		}
		return v.Equal(c.version)
	case OpNe:
		if c.wildcard {
			return !c.prefixMatch(v)
		}
		return !v.Equal(c.version)
	case OpGe:
		return Compare(v, c.version) >= 0
	case OpLe:
		return Compare(v, c.version) <= 0
	case OpGt:
		return Compare(v, c.version) > 0
	case OpLt:
		return Compare(v, c.version) < 0
	case OpCompatible:
		// ~= X.Y.Z means >= X.Y.Z and == X.Y.*
		if Compare(v, c.version) < 0 {
			return false
		}
		prefix := &Version{
			Epoch:   c.version.Epoch,
			Release: c.version.Release[:len(c.version.Release)-1],
			Post:    -1,
			Dev:     -1,
		}
		return clausePrefixMatch(prefix, v)
	default:
		return false
	}
}

// prefixMatch implements the ".*" wildcard: the candidate's epoch and leading
// release segments must equal the operand's.
func (c Clause) prefixMatch(v *Version) bool {
	return clausePrefixMatch(c.version, v)
}

func clausePrefixMatch(prefix, v *Version) bool {
	if v.Epoch != prefix.Epoch {
		return false
	}
	for i, r := range prefix.Release {
		vr := 0
		if i < len(v.Release) {
			vr = v.Release[i]
		}
		if vr != r {
			return false
		}
	}
	return true
}

// FormatPin renders an exact pin for a version string, used when writing
// canonical manifests.
func FormatPin(v string) string {
	return string(OpEq) + strings.TrimSpace(v)
}
