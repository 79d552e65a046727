package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestCLI() (*CLI, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, log.InfoLevel), &buf
}

func TestRootCommand(t *testing.T) {
	c, _ := newTestCLI()
	root := c.RootCommand()

	if root.Use != "reqsmith" {
		t.Errorf("Use = %q, want reqsmith", root.Use)
	}

	want := []string{"check", "verify", "fmt", "list", "cache", "serve", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cacheDir = %q", dir)
	}
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckCommand(t *testing.T) {
	c, _ := newTestCLI()
	path := writeManifest(t, "mkdocs==1.6.1\n")

	root := c.RootCommand()
	root.SetArgs([]string{"check", path})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err != nil {
		t.Errorf("check on a clean manifest failed: %v", err)
	}
}

func TestCheckCommandConflict(t *testing.T) {
	c, _ := newTestCLI()
	path := writeManifest(t, "mkdocs==1.6.1\nmkdocs==1.6.0\n")

	root := c.RootCommand()
	root.SetArgs([]string{"check", path})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Error("check should fail on conflicting duplicate pins")
	}
}

func TestCheckCommandMissingFile(t *testing.T) {
	c, _ := newTestCLI()

	root := c.RootCommand()
	root.SetArgs([]string{"check", filepath.Join(t.TempDir(), "absent.txt")})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Error("check should fail on a missing file")
	}
}
