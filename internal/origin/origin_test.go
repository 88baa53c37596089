package origin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/patchflow/regen/internal/fsops"
	"github.com/patchflow/regen/internal/glob"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDirRunner_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "refs", "head"), "rev42\n")
	r := NewDirRunner(root, t.TempDir(), fsops.NewRealFS())

	got, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "rev42" {
		t.Errorf("Resolve(\"\") = %q, want %q", got, "rev42")
	}

	got, err = r.Resolve("explicit")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "explicit" {
		t.Errorf("Resolve(explicit) = %q, want %q", got, "explicit")
	}
}

func TestDirRunner_SupportsHistory(t *testing.T) {
	root := t.TempDir()
	r := NewDirRunner(root, t.TempDir(), fsops.NewRealFS())
	if r.SupportsHistory() {
		t.Error("no state directory means no history support")
	}

	if err := os.MkdirAll(filepath.Join(root, "state"), 0755); err != nil {
		t.Fatal(err)
	}
	if !r.SupportsHistory() {
		t.Error("a state directory means history support")
	}
}

func TestDirRunner_LastImportedRevision(t *testing.T) {
	root := t.TempDir()
	r := NewDirRunner(root, t.TempDir(), fsops.NewRealFS())

	got, err := r.LastImportedRevision()
	if err != nil {
		t.Fatalf("LastImportedRevision failed: %v", err)
	}
	if got != "" {
		t.Errorf("no record should read as empty, got %q", got)
	}

	writeFile(t, filepath.Join(root, "state", "last-imported"), "rev7\n")
	got, err = r.LastImportedRevision()
	if err != nil {
		t.Fatalf("LastImportedRevision failed: %v", err)
	}
	if got != "rev7" {
		t.Errorf("LastImportedRevision = %q, want %q", got, "rev7")
	}
}

func TestDirRunner_ImportAndTransform(t *testing.T) {
	root := t.TempDir()
	workdir := t.TempDir()
	writeFile(t, filepath.Join(root, "revisions", "rev1", "a.txt"), "a\n")
	writeFile(t, filepath.Join(root, "revisions", "rev1", "skip.log"), "x\n")
	r := NewDirRunner(root, workdir, fsops.NewRealFS())
	r.Files = glob.New("**/*.txt")

	out, err := r.ImportAndTransform("rev0", "rev1", nil)
	if err != nil {
		t.Fatalf("ImportAndTransform failed: %v", err)
	}
	if out != filepath.Join(workdir, "import") {
		t.Errorf("output directory = %q", out)
	}
	if _, err := os.Stat(filepath.Join(out, "a.txt")); err != nil {
		t.Errorf("a.txt should be imported: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "skip.log")); !os.IsNotExist(err) {
		t.Error("skip.log must be filtered out")
	}

	// A second run replaces the previous output rather than layering on it.
	writeFile(t, filepath.Join(root, "revisions", "rev2", "b.txt"), "b\n")
	out, err = r.ImportAndTransform("rev1", "rev2", nil)
	if err != nil {
		t.Fatalf("ImportAndTransform failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "a.txt")); !os.IsNotExist(err) {
		t.Error("stale files from the previous import must be cleared")
	}

	if _, err := r.ImportAndTransform("rev2", "missing", nil); err == nil {
		t.Error("expected an error for a missing origin revision")
	}
}
