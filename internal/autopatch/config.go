// Package autopatch generates and reverses per-file patch artifacts.
//
// A per-file patch set is a directory of individual unified diff files, one
// per changed file, stored under a configured directory inside the
// destination tree. Each patch file is independently reversible against the
// tree it describes.
package autopatch

import (
	"path"
	"strings"

	"github.com/patchflow/regen/internal/glob"
)

// Config holds the per-file patch settings of a workflow. It is an immutable
// value, optional at the request level; per-file-patch reconstruction
// requires it.
type Config struct {
	// Directory is the patch directory name, e.g. "AUTOPATCHES".
	Directory string

	// Prefix is the tree path prefix under which both the patched files and
	// the patch directory live. Empty means the tree root.
	Prefix string

	// Header is text prepended verbatim to every generated patch file.
	Header string

	// Suffix is the patch file name suffix, e.g. ".patch".
	Suffix string

	// Strip removes file names and line numbers from generated patches,
	// making them location independent but not reversible.
	Strip bool

	// Glob selects which content files get patch files. Nil selects all
	// files under Prefix.
	Glob *glob.Selector
}

// DirectorySelector returns a selector matching everything inside the
// configured patch directory.
func (c Config) DirectorySelector() *glob.Selector {
	return glob.New(path.Join(c.Prefix, c.Directory) + "/**")
}

// patchDir returns the tree-relative path of the patch directory.
func (c Config) patchDir() string {
	return path.Join(c.Prefix, c.Directory)
}

// covers reports whether the given tree-relative file gets a patch file.
// Files inside the patch directory itself never do.
func (c Config) covers(relPath string) bool {
	if c.Prefix != "" && !strings.HasPrefix(relPath, c.Prefix+"/") {
		return false
	}
	if strings.HasPrefix(relPath, c.patchDir()+"/") {
		return false
	}
	return c.Glob.Matches(relPath)
}

// patchPath returns the tree-relative path of the patch file for relPath.
func (c Config) patchPath(relPath string) string {
	under := relPath
	if c.Prefix != "" {
		under = strings.TrimPrefix(relPath, c.Prefix+"/")
	}
	return path.Join(c.patchDir(), under) + c.Suffix
}
