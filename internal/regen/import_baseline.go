package regen

import (
	"fmt"

	"github.com/patchflow/regen/internal/destination"
)

// prepareImportBaseline reconstructs "previous" by replaying the import
// pipeline up to the last imported origin revision, and populates "next" with
// the destination's content at the target revision. It returns the path of
// the populated previous tree (the pipeline's output directory).
//
// History support is a precondition: without it no last-imported revision is
// defined, and the strategy refuses to run rather than operate on an
// undefined revision.
func (e *Engine) prepareImportBaseline(req *Request, st *staging, target string) (string, error) {
	if e.origin == nil {
		return "", validationf("the import-baseline strategy needs an origin pipeline; supply with --origin")
	}
	if !e.origin.SupportsHistory() {
		return "", validationf("the origin does not support revision history, so the last imported revision cannot be determined; supply --baseline and disable --import-baseline to reconstruct from stored patches instead")
	}

	lastRev, err := e.origin.LastImportedRevision()
	if err != nil {
		return "", fmt.Errorf("failed to determine the last imported revision: %w", err)
	}
	if lastRev == "" {
		return "", validationf("no revision has been imported through this workflow yet, so there is no import baseline to replay")
	}

	current, err := e.origin.Resolve(req.SourceRef)
	if err != nil {
		return "", fmt.Errorf("failed to resolve origin revision: %w", err)
	}
	if req.ImportSameVersion {
		current = lastRev
	}

	readerSupplier := func() (destination.Reader, error) {
		return e.dest.NewReader(lastRev)
	}
	importPath, err := e.origin.ImportAndTransform(lastRev, current, readerSupplier)
	if err != nil {
		return "", fmt.Errorf("failed to replay the import pipeline: %w", err)
	}

	nextReader, err := e.dest.NewReader(target)
	if err != nil {
		return "", err
	}
	if err := nextReader.CopyFilesToDirectory(req.contentSelector(), st.next); err != nil {
		return "", fmt.Errorf("failed to copy target content: %w", err)
	}

	return importPath, nil
}
