// Package destination defines the destination-side collaborator contracts
// consumed during patch regeneration, plus a directory-backed implementation
// for local use.
//
// A destination's ability to regenerate patch artifacts is modeled as an
// optional capability: callers query PatchRegenerator once and operate only
// on the returned handle, never on the destination type itself.
package destination

import (
	"github.com/patchflow/regen/internal/glob"
	"github.com/patchflow/regen/internal/hash"
)

// Reader provides read access to destination content at a fixed revision.
type Reader interface {
	// CopyFilesToDirectory copies the revision's files matched by sel into
	// dir, keeping their relative layout.
	CopyFilesToDirectory(sel *glob.Selector, dir string) error
}

// PatchRegenerator is the capability handle of destinations that support
// regenerating patch artifacts.
type PatchRegenerator interface {
	// InferTarget returns the destination's notion of the revision to
	// regenerate for, or "" when it cannot be inferred.
	InferTarget() (string, error)

	// InferBaseline returns the destination's notion of the last known-good
	// baseline revision, or "" when it cannot be inferred.
	InferBaseline() (string, error)

	// UpdateChange pushes the fully regenerated tree as a new change for
	// the given workflow and target revision, restricted to sel.
	UpdateChange(name, treePath string, sel *glob.Selector, target string) error
}

// Destination abstracts the destination repository.
type Destination interface {
	// PatchRegenerator returns the regeneration capability handle, or
	// ok=false when this destination does not support regeneration.
	PatchRegenerator() (PatchRegenerator, bool)

	// NewReader returns read access to the destination at a revision.
	NewReader(revision string) (Reader, error)

	// Hasher returns the destination's content hash function.
	Hasher() hash.Hasher
}
