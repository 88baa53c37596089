package regen

import (
	"fmt"
	"path/filepath"

	"github.com/patchflow/regen/internal/fsops"
)

// Fixed staging subdirectory names under the request workdir. Concurrent
// invocations sharing a workdir are unsafe for this reason; callers serialize
// or supply distinct workdirs.
const (
	previousDirName     = "previous"
	nextDirName         = "next"
	patchHoldingDirName = "patchHolding"
)

// staging holds the three fixed-role working directories of one invocation:
// the reconstructed pre-image, the target content plus regenerated artifacts,
// and scratch space for artifacts being reversed.
type staging struct {
	previous     string
	next         string
	patchHolding string
}

// newStaging creates the staging directories under workdir, idempotently.
// Teardown is the caller's responsibility; directory lifetime is bound to the
// workdir.
func newStaging(fs fsops.FS, workdir string) (*staging, error) {
	st := &staging{
		previous:     filepath.Join(workdir, previousDirName),
		next:         filepath.Join(workdir, nextDirName),
		patchHolding: filepath.Join(workdir, patchHoldingDirName),
	}
	for _, dir := range []string{st.previous, st.next, st.patchHolding} {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create staging directory %s: %w", dir, err)
		}
	}
	return st, nil
}
