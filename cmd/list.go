package cmd

import (
	"github.com/spf13/cobra"

	"pcmark.dev/pkg/pcmark/internal/domain"
)

const listLongDescription = `Scan the input project and print every detected component with its file,
kind, export status and wrapper. Nothing is written to disk.`

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [input]",
		Short: "List detected components",
		Long:  listLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflowFor(cmd)
			if err != nil {
				return err
			}

			return wf.List(cmd.Context(), domain.ListArgs{ScanArgs: scanArgs(args)})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
