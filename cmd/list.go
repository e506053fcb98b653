package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"overdub.dev/pkg/overdub/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List programs with block, call-site and test counts",
		Long:  listLongDescription,
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.List(context.Background(), domain.ListArgs{
				Paths:   parsePaths(args),
				Exclude: viper.GetStringSlice(excludeConfigKey),
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
