// Package regen implements patch-artifact regeneration for a migration
// workflow's destination.
//
// After a migration produces a new version of a destination tree, the
// artifacts describing the local delta (per-file patch files and/or a
// content-addressed snapshot patch) are stale. Regenerate reconstructs a
// "previous" and a "next" tree in staging directories, selecting one of three
// baseline-reconstruction strategies, recomputes the artifacts describing
// their delta, and pushes the regenerated artifacts back to the destination.
package regen

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/patchflow/regen/internal/autopatch"
	"github.com/patchflow/regen/internal/destination"
	"github.com/patchflow/regen/internal/fsops"
	"github.com/patchflow/regen/internal/gitx"
	"github.com/patchflow/regen/internal/origin"
	"github.com/patchflow/regen/internal/snapshot"
)

// Reporter receives non-fatal diagnostics from the engine.
type Reporter interface {
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
}

// nopReporter discards all diagnostics.
type nopReporter struct{}

func (nopReporter) Warnf(string, ...any) {}
func (nopReporter) Infof(string, ...any) {}

// Engine orchestrates patch-artifact regeneration. It is the only public
// operation surface of this package's caller-facing API.
type Engine struct {
	dest   destination.Destination
	origin origin.Runner
	fs     fsops.FS
	rep    Reporter
}

// New creates an Engine. origin may be nil when the import-baseline strategy
// is never selected; rep may be nil to discard diagnostics.
func New(dest destination.Destination, orig origin.Runner, fs fsops.FS, rep Reporter) *Engine {
	if rep == nil {
		rep = nopReporter{}
	}
	return &Engine{dest: dest, origin: orig, fs: fs, rep: rep}
}

// Regenerate runs one regeneration. Any failure aborts before the destination
// push, so the push never happens against an incompletely regenerated tree.
// Staging directories may remain on disk after an aborted run; cleaning them
// up is the caller's responsibility.
func (e *Engine) Regenerate(ctx context.Context, req *Request) error {
	if req.Workdir == "" {
		return validationf("a working directory is required; supply with --workdir")
	}
	if req.UseSinglePatch && req.SnapshotPath == "" {
		return validationf("snapshot-patch mode needs the artifact path inside the tree; supply with --snapshot-path")
	}

	regenerator, ok := e.dest.PatchRegenerator()
	if !ok {
		return validationf("this destination does not support regenerating patch files")
	}

	st, err := newStaging(e.fs, req.Workdir)
	if err != nil {
		return err
	}

	target, err := e.resolveTarget(req, regenerator)
	if err != nil {
		return err
	}

	strategy := selectStrategy(
		req.ForceImportBaseline,
		req.UseSinglePatch,
		req.AutoPatch != nil,
		req.AutoPatch != nil && req.AutoPatch.Strip,
	)
	e.rep.Infof("reconstructing baseline with the %s strategy", strategy)

	previousPath := st.previous
	switch strategy {
	case StrategyImportBaseline:
		previousPath, err = e.prepareImportBaseline(req, st, target)
		if err != nil {
			return err
		}
	case StrategySnapshotBaseline:
		baseline, err := e.resolveBaseline(req, regenerator)
		if err != nil {
			return err
		}
		if err := e.prepareSnapshotBaseline(req, st, baseline, target); err != nil {
			return err
		}
	case StrategyPatchBaseline:
		if req.AutoPatch == nil {
			return validationf("an autopatch configuration is required to regenerate from patch files; supply with --autopatch-dir")
		}
		baseline, err := e.resolveBaseline(req, regenerator)
		if err != nil {
			return err
		}
		if err := e.preparePatchBaseline(req, st, baseline, target); err != nil {
			return err
		}
	}

	var snapshotBytes []byte
	if req.UseSinglePatch {
		snap, err := snapshot.Generate(e.fs, previousPath, st.next, e.dest.Hasher(), req.contentSelector())
		if err != nil {
			return wrapInsideGitDir(err, "generate the snapshot patch")
		}
		snapshotBytes, err = snap.ToBytes()
		if err != nil {
			return err
		}
	}

	if req.AutoPatch != nil {
		var progress autopatch.Reporter
		if req.Verbose {
			progress = e.rep
		}
		err := autopatch.GeneratePatchFiles(e.fs, previousPath, st.next, *req.AutoPatch, progress, st.next)
		if err != nil {
			return wrapInsideGitDir(err, "generate patch files")
		}
	}

	if snapshotBytes != nil {
		path := filepath.Join(st.next, filepath.FromSlash(req.SnapshotPath))
		if err := e.fs.AtomicWrite(path, snapshotBytes, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot patch: %w", err)
		}
	}

	if err := regenerator.UpdateChange(req.Workflow, st.next, req.DestinationFiles, target); err != nil {
		return fmt.Errorf("failed to push regenerated artifacts: %w", err)
	}
	return nil
}

// resolveTarget returns the explicit target revision or the destination's
// inferred one.
func (e *Engine) resolveTarget(req *Request, pr destination.PatchRegenerator) (string, error) {
	if req.Target != "" {
		return req.Target, nil
	}
	target, err := pr.InferTarget()
	if err != nil {
		return "", fmt.Errorf("failed to infer target revision: %w", err)
	}
	if target == "" {
		return "", validationf("target revision was neither supplied nor able to be inferred; supply with --target")
	}
	return target, nil
}

// resolveBaseline returns the explicit baseline revision or the destination's
// inferred one.
func (e *Engine) resolveBaseline(req *Request, pr destination.PatchRegenerator) (string, error) {
	if req.Baseline != "" {
		return req.Baseline, nil
	}
	baseline, err := pr.InferBaseline()
	if err != nil {
		return "", fmt.Errorf("failed to infer baseline revision: %w", err)
	}
	if baseline == "" {
		return "", validationf("baseline revision was neither supplied nor able to be inferred; supply with --baseline")
	}
	return baseline, nil
}

// wrapInsideGitDir re-wraps git working copy conflicts with the offending
// staging path and the conflicting repository path.
func wrapInsideGitDir(err error, action string) error {
	var gitErr *gitx.InsideGitDirError
	if errors.As(err, &gitErr) {
		return fmt.Errorf("could not %s because directory %s is inside git repository %s: %w",
			action, gitErr.Path, gitErr.GitDir, err)
	}
	return err
}
