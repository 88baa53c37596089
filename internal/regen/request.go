package regen

import (
	"github.com/patchflow/regen/internal/autopatch"
	"github.com/patchflow/regen/internal/glob"
)

// Request describes one patch-artifact regeneration run. It is constructed
// once from resolved configuration and is immutable for the duration of the
// invocation.
type Request struct {
	// Workdir is the root under which the staging trees are created.
	Workdir string

	// Workflow is the workflow name passed to the destination push.
	Workflow string

	// Target is the explicit target revision. Empty means infer from the
	// destination.
	Target string

	// Baseline is the explicit baseline revision. Empty means infer from
	// the destination. Unused by the import-baseline strategy.
	Baseline string

	// SourceRef optionally overrides the origin reference resolved by the
	// import-baseline strategy.
	SourceRef string

	// ForceImportBaseline forces the import-baseline strategy regardless of
	// the other flags.
	ForceImportBaseline bool

	// ImportSameVersion re-imports the last imported revision instead of
	// the newly resolved one.
	ImportSameVersion bool

	// UseSinglePatch enables snapshot-patch mode.
	UseSinglePatch bool

	// SnapshotPath is the tree-relative path of the snapshot-patch file.
	// Required when UseSinglePatch is set.
	SnapshotPath string

	// DestinationFiles selects the destination content covered by this
	// workflow. Nil covers all files.
	DestinationFiles *glob.Selector

	// AutoPatch is the per-file patch configuration. Nil disables per-file
	// patches.
	AutoPatch *autopatch.Config

	// Verbose enables per-file progress output during patch generation.
	Verbose bool
}

// contentSelector returns the request's destination files with all
// patch-artifact paths subtracted, so content copies never include patch
// metadata.
func (r *Request) contentSelector() *glob.Selector {
	sel := r.DestinationFiles
	if sel == nil {
		sel = glob.All()
	}
	if r.AutoPatch != nil {
		sel = glob.Difference(sel, r.AutoPatch.DirectorySelector())
	}
	if r.UseSinglePatch && r.SnapshotPath != "" {
		sel = glob.Difference(sel, glob.Single(r.SnapshotPath))
	}
	return sel
}
