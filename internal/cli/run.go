package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patchflow/regen/internal/autopatch"
	"github.com/patchflow/regen/internal/destination"
	"github.com/patchflow/regen/internal/fsops"
	"github.com/patchflow/regen/internal/glob"
	"github.com/patchflow/regen/internal/hash"
	"github.com/patchflow/regen/internal/origin"
	"github.com/patchflow/regen/internal/regen"
)

var (
	runWorkdir           string
	runWorkflow          string
	runDestination       string
	runOrigin            string
	runTarget            string
	runBaseline          string
	runSourceRef         string
	runImportBaseline    bool
	runImportSameVersion bool
	runSinglePatch       bool
	runSnapshotPath      string
	runDestinationFiles  []string
	runAutopatchDir      string
	runAutopatchPrefix   string
	runAutopatchHeader   string
	runAutopatchSuffix   string
	runAutopatchStrip    bool
	runAutopatchGlob     []string
	runVerbose           bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Regenerate patch artifacts and push them to the destination",
	Long: `Run one regeneration against the configured destination.

A baseline-reconstruction strategy is selected automatically: stored patch
files are reversed when they carry line numbers, the stored snapshot patch is
reversed in single-patch mode, and the import pipeline is replayed when
neither artifact can locate its context (or when --import-baseline forces
it).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runDestination == "" {
			return fmt.Errorf("a destination root is required; supply with --destination")
		}

		fs := fsops.NewRealFS()
		hasher := hash.NewXXH3Hasher()
		dest := destination.NewDirDestination(runDestination, fs, hasher)

		var runner origin.Runner
		if runOrigin != "" {
			runner = origin.NewDirRunner(runOrigin, runWorkdir, fs)
		}

		req := &regen.Request{
			Workdir:             runWorkdir,
			Workflow:            runWorkflow,
			Target:              runTarget,
			Baseline:            runBaseline,
			SourceRef:           runSourceRef,
			ForceImportBaseline: runImportBaseline,
			ImportSameVersion:   runImportSameVersion,
			UseSinglePatch:      runSinglePatch,
			SnapshotPath:        runSnapshotPath,
			Verbose:             runVerbose,
		}
		if len(runDestinationFiles) > 0 {
			req.DestinationFiles = glob.New(runDestinationFiles...)
		}
		if runAutopatchDir != "" {
			req.AutoPatch = &autopatch.Config{
				Directory: runAutopatchDir,
				Prefix:    runAutopatchPrefix,
				Header:    runAutopatchHeader,
				Suffix:    runAutopatchSuffix,
				Strip:     runAutopatchStrip,
			}
			if len(runAutopatchGlob) > 0 {
				req.AutoPatch.Glob = glob.New(runAutopatchGlob...)
			}
		}

		eng := regen.New(dest, runner, fs, &consoleReporter{verbose: runVerbose})
		if err := eng.Regenerate(context.Background(), req); err != nil {
			return err
		}

		PrintSuccess("Regenerated patch artifacts")
		if runTarget != "" {
			PrintLabelValue("Target", runTarget)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runWorkdir, "workdir", "w", "", "Working directory for staging trees")
	runCmd.Flags().StringVar(&runWorkflow, "workflow", "default", "Workflow name to attach to the pushed change")
	runCmd.Flags().StringVar(&runDestination, "destination", "", "Destination root directory")
	runCmd.Flags().StringVar(&runOrigin, "origin", "", "Origin root directory (needed for the import baseline)")
	runCmd.Flags().StringVar(&runTarget, "target", "", "Target revision holding the current patched state (inferred when omitted)")
	runCmd.Flags().StringVar(&runBaseline, "baseline", "", "Baseline revision holding the stored artifacts (inferred when omitted)")
	runCmd.Flags().StringVar(&runSourceRef, "source-ref", "", "Origin reference to import from (origin head when omitted)")
	runCmd.Flags().BoolVar(&runImportBaseline, "import-baseline", false, "Force reconstructing the baseline by replaying the import pipeline")
	runCmd.Flags().BoolVar(&runImportSameVersion, "import-same-version", false, "Replay the import at the last imported revision instead of a new one")
	runCmd.Flags().BoolVar(&runSinglePatch, "single-patch", false, "Regenerate a single snapshot patch instead of relying on per-file patches only")
	runCmd.Flags().StringVar(&runSnapshotPath, "snapshot-path", "", "Tree-relative path of the snapshot patch artifact")
	runCmd.Flags().StringSliceVar(&runDestinationFiles, "destination-files", nil, "Glob patterns selecting the destination files to push (all when omitted)")
	runCmd.Flags().StringVar(&runAutopatchDir, "autopatch-dir", "", "Directory holding per-file patch files (enables per-file patch regeneration)")
	runCmd.Flags().StringVar(&runAutopatchPrefix, "autopatch-prefix", "", "Tree prefix the patch directory lives under")
	runCmd.Flags().StringVar(&runAutopatchHeader, "autopatch-header", "", "Header text prepended to every generated patch file")
	runCmd.Flags().StringVar(&runAutopatchSuffix, "autopatch-suffix", ".patch", "File name suffix for generated patch files")
	runCmd.Flags().BoolVar(&runAutopatchStrip, "autopatch-strip", false, "Strip file names and line numbers from generated patch files")
	runCmd.Flags().StringSliceVar(&runAutopatchGlob, "autopatch-glob", nil, "Glob patterns selecting the files to generate patches for")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print per-file progress and strategy selection")
}
