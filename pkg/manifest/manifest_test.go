package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_Classification(t *testing.T) {
	input := `# header comment
mkdocs==1.2.3

-r extra.txt
git+https://github.com/user/repo.git
https://example.com/pkg.tar.gz
jax[cpu]
==3.4 broken
`
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantKinds := []LineKind{
		KindComment,
		KindDeclaration,
		KindBlank,
		KindOption,
		KindURL,
		KindURL,
		KindDeclaration,
		KindInvalid,
	}
	if len(doc.Lines) != len(wantKinds) {
		t.Fatalf("line count = %d, want %d", len(doc.Lines), len(wantKinds))
	}
	for i, want := range wantKinds {
		if got := doc.Lines[i].Kind; got != want {
			t.Errorf("line %d kind = %s, want %s", i+1, got, want)
		}
	}
}

func TestParse_SpecExamples(t *testing.T) {
	t.Run("exact pin", func(t *testing.T) {
		doc, err := Parse(strings.NewReader("mkdocs==1.2.3\n"))
		if err != nil {
			t.Fatal(err)
		}
		decls := doc.Declarations()
		if len(decls) != 1 {
			t.Fatalf("declarations = %d, want 1", len(decls))
		}
		d := decls[0]
		if d.Name != "mkdocs" {
			t.Errorf("Name = %q, want mkdocs", d.Name)
		}
		if pin, ok := d.Pinned(); !ok || pin != "1.2.3" {
			t.Errorf("Pinned() = (%q, %v), want (1.2.3, true)", pin, ok)
		}
	})

	t.Run("extras unconstrained", func(t *testing.T) {
		doc, err := Parse(strings.NewReader("jax[cpu]\n"))
		if err != nil {
			t.Fatal(err)
		}
		d := doc.Declarations()[0]
		if d.Name != "jax" {
			t.Errorf("Name = %q, want jax", d.Name)
		}
		if len(d.Extras) != 1 || d.Extras[0] != "cpu" {
			t.Errorf("Extras = %v, want [cpu]", d.Extras)
		}
		if _, ok := d.Pinned(); ok {
			t.Error("unconstrained declaration should not report a pin")
		}
		if len(d.Spec) != 0 {
			t.Errorf("Spec = %v, want empty", d.Spec)
		}
	})

	t.Run("comment only", func(t *testing.T) {
		doc, err := Parse(strings.NewReader("# comment only\n"))
		if err != nil {
			t.Fatal(err)
		}
		if got := len(doc.Declarations()); got != 0 {
			t.Errorf("declarations = %d, want 0", got)
		}
	})
}

func TestParse_TrailingComment(t *testing.T) {
	doc, err := Parse(strings.NewReader("mkdocs==1.3.0            # Main documentation generator.\n"))
	if err != nil {
		t.Fatal(err)
	}
	d := doc.Declarations()[0]
	if d.Comment != "Main documentation generator." {
		t.Errorf("Comment = %q", d.Comment)
	}
	if pin, ok := d.Pinned(); !ok || pin != "1.3.0" {
		t.Errorf("Pinned() = (%q, %v)", pin, ok)
	}
}

func TestParse_EnvironmentMarker(t *testing.T) {
	doc, err := Parse(strings.NewReader(`backports.zoneinfo==0.2.1 ; python_version < "3.9"` + "\n"))
	if err != nil {
		t.Fatal(err)
	}
	d := doc.Declarations()[0]
	if d.Name != "backports.zoneinfo" {
		t.Errorf("Name = %q", d.Name)
	}
	if d.Marker != `python_version < "3.9"` {
		t.Errorf("Marker = %q", d.Marker)
	}
	if pin, ok := d.Pinned(); !ok || pin != "0.2.1" {
		t.Errorf("Pinned() = (%q, %v)", pin, ok)
	}
}

func TestParse_RangeSpecifier(t *testing.T) {
	doc, err := Parse(strings.NewReader("requests>=2.28.0,<3\n"))
	if err != nil {
		t.Fatal(err)
	}
	d := doc.Declarations()[0]
	if _, ok := d.Pinned(); ok {
		t.Error("range specifier should not report an exact pin")
	}
	if len(d.Spec) != 2 {
		t.Errorf("Spec clauses = %d, want 2", len(d.Spec))
	}
}

func TestParse_InvalidLines(t *testing.T) {
	tests := []string{
		"mkdocs==",
		"==1.2.3",
		"jax[cpu",
		"jax[]",
		"mkdocs==not a version",
		"name with spaces==1.0",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(input + "\n"))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			bad := doc.Invalid()
			if len(bad) != 1 {
				t.Fatalf("invalid lines = %d, want 1", len(bad))
			}
			if bad[0].Err == nil {
				t.Error("invalid line should carry its parse error")
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mkdocs", "mkdocs"},
		{"Pymdown_Extensions", "pymdown-extensions"},
		{"mkdocs_include_exclude_files", "mkdocs-include-exclude-files"},
		{"backports.zoneinfo", "backports-zoneinfo"},
		{"a--b__c..d", "a-b-c-d"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDocument_Find(t *testing.T) {
	input := "MkDocs==1.2.3\nmkdocs==1.3.0\njinja2==3.0.3\n"
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	if got := len(doc.Find("mkdocs")); got != 2 {
		t.Errorf("Find(mkdocs) = %d declarations, want 2", got)
	}
	if got := len(doc.Find("Jinja2")); got != 1 {
		t.Errorf("Find(Jinja2) = %d declarations, want 1", got)
	}
	if got := len(doc.Find("absent")); got != 0 {
		t.Errorf("Find(absent) = %d declarations, want 0", got)
	}
}

func TestParseFile_DocsFixture(t *testing.T) {
	doc, err := ParseFile(filepath.Join("testdata", "docs-requirements.txt"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	decls := doc.Declarations()
	if len(decls) != 9 {
		t.Fatalf("declarations = %d, want 9", len(decls))
	}
	if len(doc.Invalid()) != 0 {
		t.Errorf("invalid lines = %d, want 0", len(doc.Invalid()))
	}

	// Every documentation tool is exactly pinned; jax is unconstrained.
	pinned := 0
	for _, d := range decls {
		if _, ok := d.Pinned(); ok {
			pinned++
		}
	}
	if pinned != 8 {
		t.Errorf("pinned declarations = %d, want 8", pinned)
	}

	jax := doc.Find("jax")
	if len(jax) != 1 || len(jax[0].Extras) != 1 || jax[0].Extras[0] != "cpu" {
		t.Errorf("jax declaration not parsed as expected: %+v", jax)
	}
}

func TestParseFile_NotFound(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "absent.txt")); !os.IsNotExist(err) {
		t.Errorf("err = %v, want IsNotExist", err)
	}
}
