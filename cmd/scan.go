package cmd

import (
	"github.com/spf13/cobra"
)

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [input]",
		Short: "Scan a project and write the structure document",
		Long: `Walk the input project, classify the components defined in every eligible
file and write the result to the structure document (structure.json by
default). No output tree is produced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflowFor(cmd)
			if err != nil {
				return err
			}

			return wf.Scan(cmd.Context(), scanArgs(args))
		},
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
