package destination

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/patchflow/regen/internal/fsops"
	"github.com/patchflow/regen/internal/glob"
	"github.com/patchflow/regen/internal/hash"
)

func newTestDest(t *testing.T) *DirDestination {
	t.Helper()
	return NewDirDestination(t.TempDir(), fsops.NewRealFS(), hash.NewXXH3Hasher())
}

func TestDirDestination_ReaderCopiesWithSelector(t *testing.T) {
	dest := newTestDest(t)
	err := dest.SeedRevision("rev1", map[string]string{
		"src/x.txt":              "content\n",
		"AUTOPATCHES/x.txt.diff": "patch\n",
	})
	if err != nil {
		t.Fatalf("SeedRevision failed: %v", err)
	}

	reader, err := dest.NewReader("rev1")
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	out := t.TempDir()
	sel := glob.Difference(glob.All(), glob.New("AUTOPATCHES/**"))
	if err := reader.CopyFilesToDirectory(sel, out); err != nil {
		t.Fatalf("CopyFilesToDirectory failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(out, "src", "x.txt")); err != nil {
		t.Error("expected content file to be copied")
	}
	if _, err := os.Stat(filepath.Join(out, "AUTOPATCHES")); err == nil {
		t.Error("excluded directory should not be copied")
	}
}

func TestDirDestination_NewReaderUnknownRevision(t *testing.T) {
	dest := newTestDest(t)
	if _, err := dest.NewReader("missing"); err == nil {
		t.Error("expected error for unknown revision")
	}
}

func TestDirDestination_InferRefs(t *testing.T) {
	dest := newTestDest(t)

	if got, err := dest.InferTarget(); err != nil || got != "" {
		t.Errorf("InferTarget with no ref = %q, %v; want empty, nil", got, err)
	}

	if err := dest.SetRef("target", "rev7"); err != nil {
		t.Fatalf("SetRef failed: %v", err)
	}
	if err := dest.SetRef("baseline", "rev6"); err != nil {
		t.Fatalf("SetRef failed: %v", err)
	}

	if got, _ := dest.InferTarget(); got != "rev7" {
		t.Errorf("InferTarget = %q, want rev7", got)
	}
	if got, _ := dest.InferBaseline(); got != "rev6" {
		t.Errorf("InferBaseline = %q, want rev6", got)
	}
}

func TestDirDestination_UpdateChange(t *testing.T) {
	dest := newTestDest(t)

	tree := t.TempDir()
	if err := os.WriteFile(filepath.Join(tree, "x.txt"), []byte("pushed\n"), 0644); err != nil {
		t.Fatalf("failed to write tree file: %v", err)
	}

	if err := dest.UpdateChange("default", tree, nil, "rev7"); err != nil {
		t.Fatalf("UpdateChange failed: %v", err)
	}

	pushed := filepath.Join(dest.root, "changes", "rev7", "x.txt")
	data, err := os.ReadFile(pushed)
	if err != nil {
		t.Fatalf("pushed file missing: %v", err)
	}
	if string(data) != "pushed\n" {
		t.Errorf("pushed content = %q, want %q", data, "pushed\n")
	}

	if _, err := os.ReadFile(filepath.Join(dest.root, "changes", "rev7.json")); err != nil {
		t.Error("expected change metadata to be written")
	}
}
