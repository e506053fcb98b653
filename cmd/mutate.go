package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"overdub.dev/pkg/overdub/internal/domain"
	m "overdub.dev/pkg/overdub/internal/model"
)

var mutateParallelFlag int
var mutateControllerFlag string

// mutateCmd represents the mutate command.
var mutateCmd = newMutateCmd()

func newMutateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutate [paths...]",
		Short: "Run mutation testing",
		Long:  mutateLongDescription,
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.Mutate(context.Background(), domain.MutateArgs{
				Paths:      parsePaths(args),
				Exclude:    viper.GetStringSlice(excludeConfigKey),
				Threads:    viper.GetInt(runParallelConfigKey),
				Controller: viper.GetString(runControllerConfigKey),
				Reports:    m.Path(viper.GetString(outputFlagName)),
			})
		},
	}

	configureMutateFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(mutateCmd)
}

func configureMutateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&mutateParallelFlag, parallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of parallel workers for mutation testing")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), runParallelConfigKey)

	cmd.Flags().StringVarP(&mutateControllerFlag, controllerFlagName, "c", viper.GetString(runControllerConfigKey), "mutation controller kind (map or array)")
	bindFlagToConfig(cmd.Flags().Lookup(controllerFlagName), runControllerConfigKey)
}
