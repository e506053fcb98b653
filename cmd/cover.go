package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"overdub.dev/pkg/overdub/internal/domain"
	m "overdub.dev/pkg/overdub/internal/model"
)

var coverProgramFlag string

// coverCmd represents the cover command.
var coverCmd = newCoverCmd()

func newCoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cover <file>",
		Short: "Show block coverage for a program's test cases",
		Long: `Instrument one program, drive it through its declared test cases under a
coverage observer and print per-block execution counts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.Cover(context.Background(), domain.CoverArgs{
				Path:    m.Path(args[0]),
				Program: coverProgramFlag,
			})
		},
	}

	cmd.Flags().StringVar(&coverProgramFlag, programFlagName, "", "program name when the file holds more than one")

	return cmd
}

func init() {
	rootCmd.AddCommand(coverCmd)
}
