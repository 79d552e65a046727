// Package version implements the Python packaging version scheme (PEP 440)
// to the extent needed for requirements manifests: parsing, a total order,
// and specifier matching including exact pins and prefix wildcards.
//
// Supported forms include epochs ("1!2.0"), release segments ("1.2.3"),
// pre-releases ("1.0a1", "1.0rc2"), post-releases ("1.0.post1"), dev
// releases ("1.0.dev3"), and local version labels ("1.0+cpu"). Spelling
// variants are normalized during parsing ("1.0-alpha.1" parses the same as
// "1.0a1").
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionRE matches a normalized-or-legal PEP 440 version string.
// Applied after lowercasing and trimming.
var versionRE = regexp.MustCompile(`^v?` +
	`(?:(\d+)!)?` + // epoch
	`(\d+(?:\.\d+)*)` + // release segments
	`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d*))?` + // pre-release
	`(?:(?:-(\d+))|(?:[-_.]?(post|rev|r)[-_.]?(\d*)))?` + // post-release
	`(?:[-_.]?(dev)[-_.]?(\d*))?` + // dev release
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`) // local label

// prePhase is a normalized pre-release phase: "a", "b", or "rc".
type prePhase string

// pre holds a pre-release qualifier.
type pre struct {
	Phase prePhase
	Num   int
}

// Version is a parsed PEP 440 version.
// The zero value is not valid; use Parse.
type Version struct {
	Epoch   int
	Release []int
	Pre     *pre
	Post    int // -1 if absent
	Dev     int // -1 if absent
	Local   string

	original string
}

// Parse parses a version string. It accepts the spelling variants PEP 440
// normalizes (case, separator choice, phase aliases) and returns an error
// for anything else.
func Parse(s string) (*Version, error) {
	original := s
	s = strings.ToLower(strings.TrimSpace(s))
	m := versionRE.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid version %q", original)
	}

	v := &Version{Post: -1, Dev: -1, original: original}

	if m[1] != "" {
		v.Epoch, _ = strconv.Atoi(m[1])
	}
	for _, part := range strings.Split(m[2], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q", original)
		}
		v.Release = append(v.Release, n)
	}
	if m[3] != "" {
		v.Pre = &pre{Phase: normalizePhase(m[3]), Num: atoiDefault(m[4])}
	}
	switch {
	case m[5] != "": // implicit post: "1.0-1"
		v.Post = atoiDefault(m[5])
	case m[6] != "":
		v.Post = atoiDefault(m[7])
	}
	if m[8] != "" {
		v.Dev = atoiDefault(m[9])
	}
	v.Local = m[10]

	return v, nil
}

// MustParse parses a version string and panics on error. For tests and
// package-level constants.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as originally written.
func (v *Version) String() string { return v.original }

// Canonical returns the normalized PEP 440 spelling.
func (v *Version) Canonical() string {
	var b strings.Builder
	if v.Epoch > 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}
	for i, r := range v.Release {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(r))
	}
	if v.Pre != nil {
		fmt.Fprintf(&b, "%s%d", v.Pre.Phase, v.Pre.Num)
	}
	if v.Post >= 0 {
		fmt.Fprintf(&b, ".post%d", v.Post)
	}
	if v.Dev >= 0 {
		fmt.Fprintf(&b, ".dev%d", v.Dev)
	}
	if v.Local != "" {
		b.WriteByte('+')
		b.WriteString(v.Local)
	}
	return b.String()
}

// IsPrerelease reports whether the version is a pre-release or dev release.
func (v *Version) IsPrerelease() bool {
	return v.Pre != nil || v.Dev >= 0
}

// Compare returns -1, 0, or +1 ordering a against b per PEP 440.
// Local version labels break ties lexicographically, which is close enough
// to PEP 440's per-segment rule for the labels seen in practice.
func Compare(a, b *Version) int {
	if c := cmpInt(a.Epoch, b.Epoch); c != 0 {
		return c
	}
	if c := cmpRelease(a.Release, b.Release); c != 0 {
		return c
	}
	ap, apn := a.preKey()
	bp, bpn := b.preKey()
	if c := cmpInt(ap, bp); c != 0 {
		return c
	}
	if c := cmpInt(apn, bpn); c != 0 {
		return c
	}
	if c := cmpInt(a.Post, b.Post); c != 0 {
		return c
	}
	if c := cmpInt(a.devKey(), b.devKey()); c != 0 {
		return c
	}
	return strings.Compare(a.Local, b.Local)
}

// Equal reports whether a and b are the same version under PEP 440
// equality, ignoring local labels (so "1.0" equals "1.0.0" and "1.0+cpu").
func (v *Version) Equal(o *Version) bool {
	stripped := *v
	stripped.Local = ""
	so := *o
	so.Local = ""
	return Compare(&stripped, &so) == 0
}

// preKey ranks the pre-release segment so that dev-only releases sort before
// pre-releases, which sort before the final release.
func (v *Version) preKey() (rank, num int) {
	if v.Pre != nil {
		switch v.Pre.Phase {
		case "a":
			rank = 1
		case "b":
			rank = 2
		default: // rc
			rank = 3
		}
		return rank, v.Pre.Num
	}
	if v.Dev >= 0 && v.Post < 0 {
		return 0, 0
	}
	return 4, 0
}

// devKey ranks absent dev segments after any dev number.
func (v *Version) devKey() int {
	if v.Dev < 0 {
		return int(^uint(0) >> 1)
	}
	return v.Dev
}

// cmpRelease compares release segments with zero padding, so 1.0 == 1.0.0.
func cmpRelease(a, b []int) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if c := cmpInt(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// normalizePhase maps pre-release aliases to their canonical phase.
func normalizePhase(phase string) prePhase {
	switch phase {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default: // c, rc, pre, preview
		return "rc"
	}
}

// atoiDefault parses a possibly empty number, defaulting to 0.
func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
