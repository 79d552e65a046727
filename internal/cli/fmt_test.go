package cli

import (
	"os"
	"testing"
)

func TestRunFmtWrite(t *testing.T) {
	path := writeManifest(t, "# docs\nmkdocs == 1.6.1   # build\nMkDocs_Material[imaging]==9.6.7\n")

	if err := runFmt([]string{path}, fmtOpts{write: true}); err != nil {
		t.Fatalf("runFmt: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "# docs\nmkdocs==1.6.1  # build\nMkDocs_Material[imaging]==9.6.7\n"
	if string(got) != want {
		t.Errorf("formatted file = %q, want %q", got, want)
	}
}

func TestRunFmtWriteIdempotent(t *testing.T) {
	content := "mkdocs==1.6.1\n"
	path := writeManifest(t, content)

	for i := 0; i < 2; i++ {
		if err := runFmt([]string{path}, fmtOpts{write: true}); err != nil {
			t.Fatalf("runFmt pass %d: %v", i, err)
		}
	}

	got, _ := os.ReadFile(path)
	if string(got) != content {
		t.Errorf("file changed on already-canonical input: %q", got)
	}
}

func TestRunFmtCheck(t *testing.T) {
	dirty := writeManifest(t, "mkdocs ==1.6.1\n")
	if err := runFmt([]string{dirty}, fmtOpts{check: true}); err == nil {
		t.Error("check should fail on an unformatted file")
	}

	clean := writeManifest(t, "mkdocs==1.6.1\n")
	if err := runFmt([]string{clean}, fmtOpts{check: true}); err != nil {
		t.Errorf("check failed on a canonical file: %v", err)
	}
}

func TestRunFmtPreservesNonDeclarations(t *testing.T) {
	content := "-r common.txt\n# pinned for docs builds\n\nhttps://example.com/pkg.whl\nbad==line==\n"
	path := writeManifest(t, content)

	if err := runFmt([]string{path}, fmtOpts{write: true}); err != nil {
		t.Fatalf("runFmt: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != content {
		t.Errorf("non-declaration lines changed:\n got %q\nwant %q", got, content)
	}
}
