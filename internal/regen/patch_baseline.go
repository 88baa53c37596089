package regen

import (
	"fmt"
	"path/filepath"

	"github.com/patchflow/regen/internal/autopatch"
)

// preparePatchBaseline reconstructs "previous" by copying destination content
// at the baseline revision and reversing the baseline's stored per-file patch
// files against it, and populates "next" with the content at the target
// revision. The resolver guarantees a non-nil autopatch configuration before
// this strategy is entered.
func (e *Engine) preparePatchBaseline(req *Request, st *staging, baseline, target string) error {
	cfg := req.AutoPatch
	contentSel := req.contentSelector()
	patchSel := cfg.DirectorySelector()

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

	if err := prevReader.CopyFilesToDirectory(patchSel, st.patchHolding); err != nil {
		return fmt.Errorf("failed to copy the stored patch files: %w", err)
	}

	holdingDir := filepath.Join(st.patchHolding, filepath.FromSlash(cfg.Prefix), cfg.Directory)
	if err := autopatch.ReversePatchFiles(e.fs, st.previous, holdingDir, cfg.Prefix, cfg.Suffix); err != nil {
		return wrapInsideGitDir(err, "reverse the stored patch files")
	}
	return nil
}
