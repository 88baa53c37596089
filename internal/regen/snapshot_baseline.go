package regen

import (
	"fmt"
	"path/filepath"

	"github.com/patchflow/regen/internal/glob"
	"github.com/patchflow/regen/internal/snapshot"
)

// prepareSnapshotBaseline reconstructs "previous" by copying destination
// content at the baseline revision and reversing the stored snapshot patch
// against it, and populates "next" with the content at the target revision.
//
// A missing snapshot-patch file at the baseline is not an error: it means no
// patch had ever been applied there, so "previous" is the baseline's raw
// content.
func (e *Engine) prepareSnapshotBaseline(req *Request, st *staging, baseline, target string) error {
	contentSel := req.contentSelector()
	snapshotSel := glob.Single(req.SnapshotPath)

	prevReader, err := e.dest.NewReader(baseline)
	if err != nil {
		return err
	}
	if err := prevReader.CopyFilesToDirectory(contentSel, st.previous); err != nil {
		return fmt.Errorf("failed to copy baseline content: %w", err)
	}

	nextReader, err := e.dest.NewReader(target)
	if err != nil {
		return err
	}
	if err := nextReader.CopyFilesToDirectory(contentSel, st.next); err != nil {
		return fmt.Errorf("failed to copy target content: %w", err)
	}

	if err := prevReader.CopyFilesToDirectory(snapshotSel, st.patchHolding); err != nil {
		return fmt.Errorf("failed to copy the stored snapshot patch: %w", err)
	}

	holdingPath := filepath.Join(st.patchHolding, filepath.FromSlash(req.SnapshotPath))
	exists, err := e.fs.Exists(holdingPath)
	if err != nil {
		return fmt.Errorf("failed to check for a stored snapshot patch: %w", err)
	}
	if !exists {
		e.rep.Warnf("snapshot-patch mode is enabled but revision %s carries no snapshot patch file; assuming no patch was ever applied", baseline)
		return nil
	}

	data, err := e.fs.ReadFile(holdingPath)
	if err != nil {
		return fmt.Errorf("failed to read the stored snapshot patch: %w", err)
	}
	snap, err := snapshot.FromBytes(data)
	if err != nil {
		return err
	}
	if err := snap.Reverse(e.fs, st.previous, e.dest.Hasher()); err != nil {
		return wrapInsideGitDir(err, "reverse the snapshot patch")
	}
	return nil
}
