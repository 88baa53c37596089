package regen

// Strategy identifies how the previous tree is reconstructed. Exactly one
// strategy executes per request; selection happens once and is fixed for the
// invocation.
type Strategy int

const (
	// StrategyImportBaseline replays the import pipeline up to the last
	// imported origin revision.
	StrategyImportBaseline Strategy = iota

	// StrategySnapshotBaseline copies the baseline revision and reverses
	// the stored snapshot patch.
	StrategySnapshotBaseline

	// StrategyPatchBaseline copies the baseline revision and reverses the
	// stored per-file patch files.
	StrategyPatchBaseline
)

func (s Strategy) String() string {
	switch s {
	case StrategyImportBaseline:
		return "import-baseline"
	case StrategySnapshotBaseline:
		return "snapshot-baseline"
	case StrategyPatchBaseline:
		return "patch-baseline"
	default:
		return "unknown"
	}
}

// selectStrategy is the baseline decision table. Per-file patches that carry
// no positional information (stripped line numbers, or no autopatch config at
// all) cannot be reliably reversed, so reconstruction replays the import
// pipeline instead.
func selectStrategy(forceImport, singlePatch, hasAutoPatch, stripped bool) Strategy {
	noLineNumbers := !hasAutoPatch || stripped
	if forceImport || (!singlePatch && noLineNumbers) {
		return StrategyImportBaseline
	}
	if singlePatch {
		return StrategySnapshotBaseline
	}
	return StrategyPatchBaseline
}
