package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the root command for regen.
var rootCmd = &cobra.Command{
	Use:     "regen",
	Version: "dev",
	Short:   "Regenerate patch artifacts for a migration destination",
	Long: `regen rebuilds the patch artifacts that describe local modifications on top
of imported code in a migration destination.

It reconstructs the previous and next versions of the destination tree in a
staging area, recomputes the per-file patch files and/or the snapshot patch
between them, and pushes the regenerated artifacts to the destination.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the regen CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
