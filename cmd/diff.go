package cmd

import (
	"github.com/spf13/cobra"

	"pcmark.dev/pkg/pcmark/internal/domain"
)

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [files...]",
		Short: "Preview the instrumentation as a unified diff",
		Long: `Render the instrumented form of the given project files, or of every file
that defines components when none are given, and print a unified diff
against the source. The output tree is not touched.

File paths are relative to the input directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflowFor(cmd)
			if err != nil {
				return err
			}

			return wf.Diff(cmd.Context(), domain.DiffArgs{
				ScanArgs: scanArgs(nil),
				Files:    parsePaths(args),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
