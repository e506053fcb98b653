// Package cmd provides the root command and CLI setup for overdub.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"overdub.dev/pkg/overdub/internal/adapter"
	"overdub.dev/pkg/overdub/internal/controller"
	"overdub.dev/pkg/overdub/internal/domain"
	m "overdub.dev/pkg/overdub/internal/model"
)

var goFront adapter.GoFrontAdapter
var programStore adapter.ProgramStore
var reportStore adapter.ReportStore
var orchestrator domain.Orchestrator
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

var logFileFlag string
var logVerboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	goFront = adapter.NewLocalGoFront()
	programStore = adapter.NewLocalProgramStore(goFront)
	reportStore = adapter.NewLocalReportStore()
	orchestrator = domain.NewOrchestrator()
	workflow = domain.NewWorkflow(
		programStore,
		reportStore,
		ui,
		orchestrator,
	)
}

const pathPatternsHelp = `Program files may be YAML block-graph definitions (.yaml) or restricted
Go source files (.go). Paths may name files or directories; directories
are scanned recursively.`

const rootLongDescription = `Overdub rewrites small block-structured programs so that every function
entry, block entry and call site reports to an observer. Observers can
record coverage, log call traces or swap out callees to test whether the
declared test cases notice.

` + pathPatternsHelp

const listLongDescription = `List program files with their block, call-site and test-case counts.

` + pathPatternsHelp

const mutateLongDescription = `Run mutation testing for the given paths: every call site is retargeted
to each compatible alternate callee in turn and the program's declared
test cases decide whether the mutant is killed.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overdub",
		Short: "Call-site instrumentation and mutation harness",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, logVerboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for mutation reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, "log", viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("log"), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&logVerboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("verbose"), logVerboseKey)
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
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
