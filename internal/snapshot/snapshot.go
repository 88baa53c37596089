// Package snapshot implements the content-addressed snapshot patch.
//
// A Snapshot encodes the delta between two whole trees as a single
// serializable artifact: the content hash of every covered file in the
// patched (next) tree plus a unified diff per changed file. Reversing a
// Snapshot against a tree at the patched state materializes the tree's
// pre-patch state, verifying the tree against the recorded hashes first.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/patchflow/regen/internal/diffutil"
	"github.com/patchflow/regen/internal/fsops"
	"github.com/patchflow/regen/internal/gitx"
	"github.com/patchflow/regen/internal/glob"
	"github.com/patchflow/regen/internal/hash"
)

// Version is the current serialization format version.
const Version = 1

// Snapshot is a content-addressed representation of a tree delta.
type Snapshot struct {
	// FormatVersion guards the serialization format.
	FormatVersion int `json:"version"`

	// Hash names the algorithm used for the file hashes.
	Hash string `json:"hash"`

	// Files maps each covered file to the hash of its patched content.
	Files map[string]string `json:"files"`

	// Diffs maps each changed file to the unified diff that turns its
	// pre-patch content into its patched content. A file present in Diffs
	// but absent from Files was deleted by the patch.
	Diffs map[string]string `json:"diffs,omitempty"`
}

// Generate computes a Snapshot describing the delta from prevTree to
// nextTree, restricted to files matched by sel.
func Generate(fs fsops.FS, prevTree, nextTree string, hasher hash.Hasher, sel *glob.Selector) (*Snapshot, error) {
	for _, dir := range []string{prevTree, nextTree} {
		if err := gitx.CheckNotInsideGitDir(dir); err != nil {
			return nil, err
		}
	}

	s := &Snapshot{
		FormatVersion: Version,
		Hash:          hasher.Name(),
		Files:         map[string]string{},
		Diffs:         map[string]string{},
	}

	rels, err := unionFiles(fs, prevTree, nextTree, sel)
	if err != nil {
		return nil, err
	}

	for _, rel := range rels {
		a, aExists, err := readIfExists(fs, filepath.Join(prevTree, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		b, bExists, err := readIfExists(fs, filepath.Join(nextTree, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}

		if bExists {
			s.Files[rel] = hasher.HashBytes(b)
		}

		fromName, toName := rel, rel
		if !aExists {
			fromName = "/dev/null"
		}
		if !bExists {
			toName = "/dev/null"
		}
		if diff := diffutil.Unified(fromName, toName, a, b, diffutil.Options{}); diff != "" {
			s.Diffs[rel] = diff
		}
	}

	return s, nil
}

// FromBytes deserializes a Snapshot.
func FromBytes(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot patch: %w", err)
	}
	if s.FormatVersion != Version {
		return nil, fmt.Errorf("unsupported snapshot patch version %d", s.FormatVersion)
	}
	return &s, nil
}

// ToBytes serializes the Snapshot.
func (s *Snapshot) ToBytes() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot patch: %w", err)
	}
	return append(data, '\n'), nil
}

// Reverse applies the snapshot backwards against tree, which must be at the
// patched state, recovering the pre-patch state in place. Files whose current
// content does not match the recorded hash fail the reversal.
func (s *Snapshot) Reverse(fs fsops.FS, tree string, hasher hash.Hasher) error {
	if err := gitx.CheckNotInsideGitDir(tree); err != nil {
		return err
	}
	if hasher.Name() != s.Hash {
		return fmt.Errorf("snapshot patch uses hash %q but destination uses %q", s.Hash, hasher.Name())
	}

	// Verify the whole tree against the recorded hashes before mutating
	// anything: drift in any covered file, diffed or not, fails the reversal.
	checks := make([]string, 0, len(s.Files))
	for rel := range s.Files {
		checks = append(checks, rel)
	}
	sort.Strings(checks)
	for _, rel := range checks {
		current, exists, err := readIfExists(fs, filepath.Join(tree, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("snapshot patch covers %s but the file is missing", rel)
		}
		if got := hasher.HashBytes(current); got != s.Files[rel] {
			return fmt.Errorf("content of %s does not match snapshot patch (hash %s, want %s)", rel, got, s.Files[rel])
		}
	}

	rels := make([]string, 0, len(s.Diffs))
	for rel := range s.Diffs {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		target := filepath.Join(tree, filepath.FromSlash(rel))
		current, exists, err := readIfExists(fs, target)
		if err != nil {
			return err
		}

		if _, ok := s.Files[rel]; !ok && exists {
			return fmt.Errorf("snapshot patch deleted %s but the file is present", rel)
		}

		patch, err := diffutil.Parse(s.Diffs[rel])
		if err != nil {
			return fmt.Errorf("failed to parse snapshot diff for %s: %w", rel, err)
		}
		restored, err := patch.Apply(current, true)
		if err != nil {
			return fmt.Errorf("failed to reverse snapshot diff for %s: %w", rel, err)
		}

		if patch.OldName == "/dev/null" {
			// The patch created this file; reversing removes it.
			if err := fs.Remove(target); err != nil {
				return fmt.Errorf("failed to remove %s: %w", rel, err)
			}
			continue
		}
		if err := fs.AtomicWrite(target, restored, 0644); err != nil {
			return fmt.Errorf("failed to restore %s: %w", rel, err)
		}
	}

	return nil
}

// unionFiles returns the sorted union of selected files in both trees.
func unionFiles(fs fsops.FS, prevTree, nextTree string, sel *glob.Selector) ([]string, error) {
	set := map[string]struct{}{}
	collect := func(root string) error {
		return fs.WalkFiles(root, func(relPath string, info os.FileInfo) error {
			if sel.Matches(relPath) {
				set[relPath] = struct{}{}
			}
			return nil
		})
	}
	if err := collect(prevTree); err != nil {
		return nil, fmt.Errorf("failed to walk previous tree: %w", err)
	}
	if err := collect(nextTree); err != nil {
		return nil, fmt.Errorf("failed to walk next tree: %w", err)
	}

	rels := make([]string, 0, len(set))
	for rel := range set {
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	return rels, nil
}

func readIfExists(fs fsops.FS, path string) ([]byte, bool, error) {
	exists, err := fs.Exists(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !exists {
		return nil, false, nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, true, nil
}
