// Package cmd provides the root command and CLI setup for pcmark.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	"pcmark.dev/pkg/pcmark/internal/controller"
	"pcmark.dev/pkg/pcmark/internal/domain"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var jsxAdapter adapter.JSXFileAdapter
var structureStore adapter.StructureStore

// workflow is built on first use from the resolved configuration unless a
// test installed one.
var workflow domain.Workflow

var verboseFlag bool
var logFileFlag string

func init() {
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	jsxAdapter = adapter.NewLocalJSXFileAdapter()
	structureStore = adapter.NewJSONStructureStore(fsAdapter)
}

const rootLongDescription = `pcmark copies a React project into a mirrored output tree and annotates
its markup: every element gets a unique pc_el_id attribute and the first
element rendered by each component carries pc_comp_name and pc_comp_ref_id,
so a runtime tree walker can map rendered nodes back to source components.

Configuration is read from pcmark.yaml, PCMARK_* environment variables
(a .env file is honored) and flags, in increasing order of precedence.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pcmark",
		Short:         "Annotate React components for runtime inspection",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP(inputFlagName, "i", viper.GetString(inputConfigKey), "project directory to scan")
	bindFlagToConfig(flags.Lookup(inputFlagName), inputConfigKey)

	flags.String(structureFlagName, viper.GetString(structureConfigKey), "path of the structure document")
	bindFlagToConfig(flags.Lookup(structureFlagName), structureConfigKey)

	flags.StringArrayP(excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude paths matching a glob (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.StringSlice(extensionsFlagName, viper.GetStringSlice(extensionsConfigKey), "file extensions to analyze")
	bindFlagToConfig(flags.Lookup(extensionsFlagName), extensionsConfigKey)

	flags.IntP(runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of parallel workers (0 uses every CPU)")
	bindFlagToConfig(flags.Lookup(runParallelFlagName), runParallelConfigKey)

	flags.String(formatConfigFlagName, viper.GetString(formatConfigKey), "formatter rc file (.prettierrc)")
	bindFlagToConfig(flags.Lookup(formatConfigFlagName), formatConfigKey)

	flags.String(formatCommandFlagName, viper.GetString(formatCommandKey), "external formatter command; empty uses the built-in normalizer")
	bindFlagToConfig(flags.Lookup(formatCommandFlagName), formatCommandKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
	flags.StringVar(&logFileFlag, logFileFlagName, "", "log file path (default from log.filename)")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// workflowFor returns the installed workflow or assembles one from the
// current configuration.
func workflowFor(cmd *cobra.Command) (domain.Workflow, error) {
	if workflow != nil {
		return workflow, nil
	}

	classifier, err := domain.NewClassifier(jsxAdapter, viper.GetInt(analysisCacheConfigKey))
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	formatter := adapter.NewLocalFormatterAdapter(viper.GetString(formatCommandKey), formatTimeout())
	instrumenter := domain.NewInstrumenter(jsxAdapter, domain.NewElementID)
	ui := controller.NewUI(cmd, controller.IsTerminal(cmd.OutOrStdout()))

	return domain.NewWorkflow(
		fsAdapter,
		structureStore,
		ui,
		domain.NewInventoryBuilder(fsAdapter, classifier),
		domain.NewEmitter(fsAdapter, formatter, instrumenter, m.Path(viper.GetString(formatConfigKey))),
	), nil
}

// scanArgs resolves the shared scan settings. A positional argument
// overrides the configured input directory.
func scanArgs(args []string) domain.ScanArgs {
	input := viper.GetString(inputConfigKey)
	if len(args) > 0 {
		input = args[0]
	}

	return domain.ScanArgs{
		Input:      m.Path(input),
		Structure:  m.Path(viper.GetString(structureConfigKey)),
		Extensions: viper.GetStringSlice(extensionsConfigKey),
		Exclude:    viper.GetStringSlice(excludeConfigKey),
		Parallel:   viper.GetInt(runParallelConfigKey),
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
