// Package gitx detects enclosing git working copies.
//
// Patch generation and reversal refuse to operate on staging trees that live
// inside a git working copy: patch tooling run there could pick up repository
// state that does not belong to the staging content.
package gitx

import (
	"fmt"
	"os"
	"path/filepath"
)

// InsideGitDirError reports that a staging path lies inside a git working copy.
type InsideGitDirError struct {
	// Path is the offending staging path.
	Path string

	// GitDir is the root of the enclosing git working copy.
	GitDir string
}

func (e *InsideGitDirError) Error() string {
	return fmt.Sprintf("path %s is inside git repository %s", e.Path, e.GitDir)
}

// FindEnclosingRepo walks up from path looking for a .git entry and returns
// the repository root, or "" when path is not inside a git working copy.
func FindEnclosingRepo(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	for {
		gitDir := filepath.Join(current, ".git")
		if info, err := os.Stat(gitDir); err == nil {
			// .git can be a directory or a file (for worktrees/submodules)
			if info.IsDir() || info.Mode().IsRegular() {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

// CheckNotInsideGitDir returns an *InsideGitDirError when path is inside a
// git working copy.
func CheckNotInsideGitDir(path string) error {
	root, err := FindEnclosingRepo(path)
	if err != nil {
		return err
	}
	if root != "" {
		return &InsideGitDirError{Path: path, GitDir: root}
	}
	return nil
}
