package autopatch

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/patchflow/regen/internal/diffutil"
	"github.com/patchflow/regen/internal/fsops"
	"github.com/patchflow/regen/internal/gitx"
)

// Reporter receives per-file progress during patch generation. Nil discards
// it.
type Reporter interface {
	Infof(format string, args ...any)
}

// GeneratePatchFiles diffs prevTree against nextTree and writes one patch
// file per changed file into the configured patch directory under outputRoot.
// Unchanged files produce no patch file.
func GeneratePatchFiles(fs fsops.FS, prevTree, nextTree string, cfg Config, rep Reporter, outputRoot string) error {
	for _, dir := range []string{prevTree, nextTree, outputRoot} {
		if err := gitx.CheckNotInsideGitDir(dir); err != nil {
			return err
		}
	}

	rels, err := unionFiles(fs, prevTree, nextTree, cfg)
	if err != nil {
		return err
	}

	for _, rel := range rels {
		a, aExists, err := readIfExists(fs, filepath.Join(prevTree, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		b, bExists, err := readIfExists(fs, filepath.Join(nextTree, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		if aExists && bExists && bytes.Equal(a, b) {
			continue
		}

		fromName, toName := rel, rel
		if !aExists {
			fromName = "/dev/null"
		}
		if !bExists {
			toName = "/dev/null"
		}

		body := diffutil.Unified(fromName, toName, a, b, diffutil.Options{Strip: cfg.Strip})
		if body == "" {
			continue
		}

		content := body
		if cfg.Header != "" {
			header := cfg.Header
			if !strings.HasSuffix(header, "\n") {
				header += "\n"
			}
			content = header + body
		}

		patchRel := cfg.patchPath(rel)
		target := filepath.Join(outputRoot, filepath.FromSlash(patchRel))
		if err := fs.AtomicWrite(target, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write patch file %s: %w", patchRel, err)
		}
		if rep != nil {
			rep.Infof("generated patch file %s", patchRel)
		}
	}

	return nil
}

// ReversePatchFiles reverse-applies every patch file under patchDir onto
// targetTree, recovering the tree's pre-patch state. Patch files are located
// by the given suffix; the file each patch belongs to follows from the patch
// file's own path, mirroring how patchPath placed it: its path under
// patchDir with the suffix trimmed, re-rooted under prefix. Header names are
// not trusted for this, since a tree may legitimately contain paths that
// look like git's a/ and b/ conventions.
func ReversePatchFiles(fs fsops.FS, targetTree, patchDir, prefix, suffix string) error {
	if err := gitx.CheckNotInsideGitDir(targetTree); err != nil {
		return err
	}

	return fs.WalkFiles(patchDir, func(relPath string, info os.FileInfo) error {
		if suffix != "" && !strings.HasSuffix(relPath, suffix) {
			return nil
		}

		data, err := fs.ReadFile(filepath.Join(patchDir, filepath.FromSlash(relPath)))
		if err != nil {
			return fmt.Errorf("failed to read patch file %s: %w", relPath, err)
		}

		patch, err := diffutil.Parse(string(data))
		if err != nil {
			return fmt.Errorf("failed to parse patch file %s: %w", relPath, err)
		}

		fileRel := path.Join(prefix, strings.TrimSuffix(relPath, suffix))
		target := filepath.Join(targetTree, filepath.FromSlash(fileRel))

		current, _, err := readIfExists(fs, target)
		if err != nil {
			return err
		}

		restored, err := patch.Apply(current, true)
		if err != nil {
			return fmt.Errorf("failed to reverse patch %s against %s: %w", relPath, fileRel, err)
		}

		if patch.OldName == "/dev/null" {
			// The patch created this file; reversing removes it.
			return fs.Remove(target)
		}
		return fs.AtomicWrite(target, restored, 0644)
	})
}

// unionFiles returns the sorted union of covered files in both trees.
func unionFiles(fs fsops.FS, prevTree, nextTree string, cfg Config) ([]string, error) {
	set := map[string]struct{}{}
	collect := func(root string) error {
		return fs.WalkFiles(root, func(relPath string, info os.FileInfo) error {
			if cfg.covers(relPath) {
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
