package gitx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckNotInsideGitDir_OutsideRepo(t *testing.T) {
	dir := t.TempDir()
	if err := CheckNotInsideGitDir(dir); err != nil {
		t.Errorf("expected no error outside a git repo, got: %v", err)
	}
}

func TestCheckNotInsideGitDir_InsideRepo(t *testing.T) {
	repo := t.TempDir()
	if err := os.Mkdir(filepath.Join(repo, ".git"), 0755); err != nil {
		t.Fatalf("failed to create .git dir: %v", err)
	}
	staging := filepath.Join(repo, "workdir", "previous")
	if err := os.MkdirAll(staging, 0755); err != nil {
		t.Fatalf("failed to create staging dir: %v", err)
	}

	err := CheckNotInsideGitDir(staging)
	var gitErr *InsideGitDirError
	if !errors.As(err, &gitErr) {
		t.Fatalf("expected InsideGitDirError, got: %v", err)
	}
	if gitErr.GitDir != repo {
		t.Errorf("GitDir = %q, want %q", gitErr.GitDir, repo)
	}
	if gitErr.Path != staging {
		t.Errorf("Path = %q, want %q", gitErr.Path, staging)
	}
}

func TestCheckNotInsideGitDir_GitFile(t *testing.T) {
	// Worktrees use a regular .git file instead of a directory.
	repo := t.TempDir()
	if err := os.WriteFile(filepath.Join(repo, ".git"), []byte("gitdir: elsewhere\n"), 0644); err != nil {
		t.Fatalf("failed to create .git file: %v", err)
	}

	var gitErr *InsideGitDirError
	if err := CheckNotInsideGitDir(repo); !errors.As(err, &gitErr) {
		t.Fatalf("expected InsideGitDirError for .git file, got: %v", err)
	}
}
