package destination

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/patchflow/regen/internal/fsops"
	"github.com/patchflow/regen/internal/glob"
	"github.com/patchflow/regen/internal/hash"
)

// DirDestination is a directory-backed destination. Its layout under the
// root:
//
//	revisions/<id>/   content of each revision
//	refs/target       revision id inferred as the regeneration target
//	refs/baseline     revision id inferred as the regeneration baseline
//	changes/<id>/     trees pushed by UpdateChange
//
// It always exposes the patch-regeneration capability.
type DirDestination struct {
	root   string
	fs     fsops.FS
	hasher hash.Hasher
}

// NewDirDestination creates a DirDestination rooted at root.
func NewDirDestination(root string, fs fsops.FS, hasher hash.Hasher) *DirDestination {
	return &DirDestination{root: root, fs: fs, hasher: hasher}
}

// PatchRegenerator returns the regeneration capability handle.
func (d *DirDestination) PatchRegenerator() (PatchRegenerator, bool) {
	return d, true
}

// Hasher returns the destination's content hash function.
func (d *DirDestination) Hasher() hash.Hasher {
	return d.hasher
}

// NewReader returns read access to the given revision.
func (d *DirDestination) NewReader(revision string) (Reader, error) {
	dir := d.revisionDir(revision)
	exists, err := d.fs.Exists(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check revision %s: %w", revision, err)
	}
	if !exists {
		return nil, fmt.Errorf("revision %s not found in destination %s", revision, d.root)
	}
	return &dirReader{dir: dir, fs: d.fs}, nil
}

// InferTarget reads the destination's target ref.
func (d *DirDestination) InferTarget() (string, error) {
	return d.readRef("target")
}

// InferBaseline reads the destination's baseline ref.
func (d *DirDestination) InferBaseline() (string, error) {
	return d.readRef("baseline")
}

// UpdateChange materializes the pushed tree under changes/<target> along
// with a change metadata file.
func (d *DirDestination) UpdateChange(name, treePath string, sel *glob.Selector, target string) error {
	changeDir := filepath.Join(d.root, "changes", target)

	// Replace any previous push for this target.
	if exists, err := d.fs.Exists(changeDir); err != nil {
		return fmt.Errorf("failed to check change directory: %w", err)
	} else if exists {
		if err := d.fs.RemoveAll(changeDir); err != nil {
			return fmt.Errorf("failed to remove previous change: %w", err)
		}
	}

	if err := d.fs.CopyTree(treePath, changeDir, sel); err != nil {
		return fmt.Errorf("failed to materialize change: %w", err)
	}

	meta := struct {
		Workflow string `json:"workflow"`
		Target   string `json:"target"`
	}{Workflow: name, Target: target}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize change metadata: %w", err)
	}
	metaPath := filepath.Join(d.root, "changes", target+".json")
	if err := d.fs.AtomicWrite(metaPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write change metadata: %w", err)
	}
	return nil
}

func (d *DirDestination) revisionDir(revision string) string {
	return filepath.Join(d.root, "revisions", revision)
}

// readRef returns the trimmed content of a ref file, or "" when absent.
func (d *DirDestination) readRef(name string) (string, error) {
	path := filepath.Join(d.root, "refs", name)
	exists, err := d.fs.Exists(path)
	if err != nil {
		return "", fmt.Errorf("failed to check ref %s: %w", name, err)
	}
	if !exists {
		return "", nil
	}
	data, err := d.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read ref %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// dirReader reads one revision directory.
type dirReader struct {
	dir string
	fs  fsops.FS
}

// CopyFilesToDirectory copies selector-matched files into dir.
func (r *dirReader) CopyFilesToDirectory(sel *glob.Selector, dir string) error {
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return r.fs.CopyTree(r.dir, dir, sel)
}

// SeedRevision writes files into a revision directory. Paths are
// slash-separated and relative to the revision root. Intended for tests and
// local setup.
func (d *DirDestination) SeedRevision(revision string, files map[string]string) error {
	for rel, content := range files {
		path := filepath.Join(d.revisionDir(revision), filepath.FromSlash(rel))
		if err := d.fs.AtomicWrite(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// SetRef points a ref at a revision id. Intended for tests and local setup.
func (d *DirDestination) SetRef(name, revision string) error {
	return d.fs.AtomicWrite(filepath.Join(d.root, "refs", name), []byte(revision+"\n"), 0644)
}

var _ Destination = (*DirDestination)(nil)
var _ PatchRegenerator = (*DirDestination)(nil)
