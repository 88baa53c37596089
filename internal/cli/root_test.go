package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/patchflow/regen/internal/destination"
	"github.com/patchflow/regen/internal/diffutil"
	"github.com/patchflow/regen/internal/fsops"
	"github.com/patchflow/regen/internal/hash"
)

func TestRootCommand_Help(t *testing.T) {
	t.Cleanup(func() {
		// rootCmd is shared between tests; cobra leaves the parsed --help
		// flag set after Execute, which would short-circuit later runs.
		if f := rootCmd.Flags().Lookup("help"); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	})
	rootCmd.SetArgs([]string{"--help"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if output == "" {
		t.Error("expected help output, got empty string")
	}
	if !strings.Contains(output, "regen") {
		t.Error("expected help to contain 'regen'")
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	rootCmd.SetArgs([]string{"--version"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(buf.String(), "1.2.3") {
		t.Errorf("expected version output to contain version, got %q", buf.String())
	}
}

func TestSetVersion_EmptyKeepsCurrent(t *testing.T) {
	SetVersion("2.0.0")
	SetVersion("")
	if rootCmd.Version != "2.0.0" {
		t.Errorf("empty version must not overwrite, got %q", rootCmd.Version)
	}
}

func TestRunCommand_RequiresDestination(t *testing.T) {
	runDestination = ""
	rootCmd.SetArgs([]string{"run", "--workdir", t.TempDir()})
	var buf bytes.Buffer
	rootCmd.SetErr(&buf)

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error when --destination is missing")
	}
	if !strings.Contains(err.Error(), "--destination") {
		t.Errorf("error should name the missing flag, got %v", err)
	}
}

func TestRunCommand_EndToEnd(t *testing.T) {
	fs := fsops.NewRealFS()
	destRoot := t.TempDir()
	dest := destination.NewDirDestination(destRoot, fs, hash.NewXXH3Hasher())

	storedPatch := diffutil.Unified("x.txt", "x.txt", []byte("pristine\n"), []byte("old\n"), diffutil.Options{})
	err := dest.SeedRevision("base", map[string]string{
		"x.txt":                   "old\n",
		"AUTOPATCHES/x.txt.patch": storedPatch,
	})
	if err != nil {
		t.Fatalf("SeedRevision failed: %v", err)
	}
	if err := dest.SeedRevision("head", map[string]string{"x.txt": "new\n"}); err != nil {
		t.Fatalf("SeedRevision failed: %v", err)
	}

	rootCmd.SetArgs([]string{
		"run",
		"--workdir", t.TempDir(),
		"--destination", destRoot,
		"--target", "head",
		"--baseline", "base",
		"--autopatch-dir", "AUTOPATCHES",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	patchPath := filepath.Join(destRoot, "changes", "head", "AUTOPATCHES", "x.txt.patch")
	data, err := os.ReadFile(patchPath)
	if err != nil {
		t.Fatalf("expected a pushed patch file: %v", err)
	}
	if !strings.Contains(string(data), "+new\n") {
		t.Errorf("pushed patch should encode the new content:\n%s", data)
	}
}
