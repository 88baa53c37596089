// Package origin defines the migration pipeline contract used to rebuild a
// baseline by replaying the import-and-transform workflow, plus a
// directory-backed runner for local use.
package origin

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/patchflow/regen/internal/destination"
	"github.com/patchflow/regen/internal/fsops"
	"github.com/patchflow/regen/internal/glob"
)

// ReaderSupplier lazily opens destination read access for pipelines that
// consult destination state during a replay.
type ReaderSupplier func() (destination.Reader, error)

// Runner replays the import-and-transform pipeline of a migration workflow.
type Runner interface {
	// Resolve resolves a source reference to a revision id. An empty
	// reference resolves the origin's default (head) revision.
	Resolve(sourceRef string) (string, error)

	// SupportsHistory reports whether the origin can answer revision
	// history queries.
	SupportsHistory() bool

	// LastImportedRevision returns the last revision imported through this
	// workflow, or "" when none is recorded.
	LastImportedRevision() (string, error)

	// ImportAndTransform replays the pipeline for the delta between
	// lastRevision and currentRevision and returns the path of the
	// populated output tree.
	ImportAndTransform(lastRevision, currentRevision string, reader ReaderSupplier) (string, error)
}

// DirRunner is a directory-backed Runner. Its layout under the root:
//
//	revisions/<id>/       source content of each revision
//	refs/head             revision id Resolve falls back to
//	state/last-imported   revision id of the last completed import
//
// Its transform step is a selector-filtered copy of the current revision into
// the configured output directory.
type DirRunner struct {
	root    string
	workdir string
	fs      fsops.FS

	// Files restricts which origin files are imported. Nil imports all.
	Files *glob.Selector
}

// NewDirRunner creates a DirRunner reading from root and materializing
// imports under workdir.
func NewDirRunner(root, workdir string, fs fsops.FS) *DirRunner {
	return &DirRunner{root: root, workdir: workdir, fs: fs}
}

// Resolve resolves sourceRef, or the head ref when sourceRef is empty.
func (r *DirRunner) Resolve(sourceRef string) (string, error) {
	if sourceRef != "" {
		return sourceRef, nil
	}
	data, err := r.fs.ReadFile(filepath.Join(r.root, "refs", "head"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve origin head: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SupportsHistory reports whether a state directory is present.
func (r *DirRunner) SupportsHistory() bool {
	exists, err := r.fs.Exists(filepath.Join(r.root, "state"))
	return err == nil && exists
}

// LastImportedRevision reads the recorded last import, or "" when absent.
func (r *DirRunner) LastImportedRevision() (string, error) {
	path := filepath.Join(r.root, "state", "last-imported")
	exists, err := r.fs.Exists(path)
	if err != nil {
		return "", fmt.Errorf("failed to check last import record: %w", err)
	}
	if !exists {
		return "", nil
	}
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read last import record: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ImportAndTransform materializes currentRevision into the import output
// directory and returns its path.
func (r *DirRunner) ImportAndTransform(lastRevision, currentRevision string, reader ReaderSupplier) (string, error) {
	src := filepath.Join(r.root, "revisions", currentRevision)
	exists, err := r.fs.Exists(src)
	if err != nil {
		return "", fmt.Errorf("failed to check origin revision %s: %w", currentRevision, err)
	}
	if !exists {
		return "", fmt.Errorf("origin revision %s not found", currentRevision)
	}

	out := filepath.Join(r.workdir, "import")
	if exists, err := r.fs.Exists(out); err != nil {
		return "", fmt.Errorf("failed to check import directory: %w", err)
	} else if exists {
		if err := r.fs.RemoveAll(out); err != nil {
			return "", fmt.Errorf("failed to clear import directory: %w", err)
		}
	}
	if err := r.fs.CopyTree(src, out, r.Files); err != nil {
		return "", fmt.Errorf("failed to import revision %s: %w", currentRevision, err)
	}
	return out, nil
}

var _ Runner = (*DirRunner)(nil)
