package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pcmark.dev/pkg/pcmark/internal/domain"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

const runLongDescription = `Scan the input project, write the structure document and emit an
instrumented copy of every file into the output directory.

Files that define components are annotated and formatted; everything else is
copied byte for byte. When no output directory is configured the input path
with a "_new" suffix is used.`

var runFailFastFlag bool
var runReuseStructureFlag bool

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Instrument a project into the output directory",
		Long:  runLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflowFor(cmd)
			if err != nil {
				return err
			}

			scan := scanArgs(args)

			return wf.Run(cmd.Context(), domain.RunArgs{
				ScanArgs:       scan,
				Output:         m.Path(outputFor(string(scan.Input), viper.GetString(outputConfigKey))),
				ReuseStructure: runReuseStructureFlag,
				FailFast:       viper.GetBool(runFailFastConfigKey),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(outputFlagName, "o", viper.GetString(outputConfigKey), "output directory (default <input>_new)")
	bindFlagToConfig(cmd.Flags().Lookup(outputFlagName), outputConfigKey)

	cmd.Flags().BoolVar(&runFailFastFlag, failFastFlagName, viper.GetBool(runFailFastConfigKey), "stop scheduling files after the first failure")
	bindFlagToConfig(cmd.Flags().Lookup(failFastFlagName), runFailFastConfigKey)

	cmd.Flags().BoolVar(&runReuseStructureFlag, reuseStructureFlagName, false, "emit from an existing structure document instead of rescanning")
}
