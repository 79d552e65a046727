package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite_RoundTrip(t *testing.T) {
	input := `# documentation tooling
mkdocs==1.3.0            # Main documentation generator.
pymdown-extensions==9.4

# runtime
jax[cpu]
-r extra.txt
broken==line==
`
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := WriteString(doc); got != input {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", got, input)
	}
}

func TestWrite_RoundTripFile(t *testing.T) {
	path := filepath.Join("testdata", "docs-requirements.txt")
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := WriteString(doc); got != string(want) {
		t.Error("file round trip mismatch")
	}
}

func TestWrite_NoTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	input := "mkdocs==1.2.3" // no trailing newline
	if err := os.WriteFile(path, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := WriteString(doc); got != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

func TestFormat_Canonical(t *testing.T) {
	input := "mkdocs == 1.3.0   # Main documentation generator.\n" +
		"jax[ cpu ]\t\n" +
		"# section comment   \n" +
		"requests >= 2.28.0 , < 3\n"
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	want := "mkdocs==1.3.0  # Main documentation generator.\n" +
		"jax[cpu]\n" +
		"# section comment\n" +
		"requests>=2.28.0,<3\n"
	if got := FormatString(doc); got != want {
		t.Errorf("Format:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormat_PreservesInvalidLines(t *testing.T) {
	input := "mkdocs==\n"
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatString(doc); got != input {
		t.Errorf("Format should pass invalid lines through: got %q", got)
	}
}

func TestFormat_Marker(t *testing.T) {
	input := `backports.zoneinfo==0.2.1;python_version < "3.9"` + "\n"
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := `backports.zoneinfo==0.2.1 ; python_version < "3.9"` + "\n"
	if got := FormatString(doc); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
