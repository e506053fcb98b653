package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"overdub.dev/pkg/overdub/internal/domain"
	m "overdub.dev/pkg/overdub/internal/model"
)

var instrumentDiffFlag bool
var instrumentProgramFlag string

// instrumentCmd represents the instrument command.
var instrumentCmd = newInstrumentCmd()

func newInstrumentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instrument <file>",
		Short: "Show the instrumented form of a program",
		Long: `Rewrite one program so its function entry, block entries and call sites
report to an observer, and print the resulting listing. With --diff the
listing is shown as a unified diff against the original.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.Instrument(context.Background(), domain.InstrumentArgs{
				Path:    m.Path(args[0]),
				Program: instrumentProgramFlag,
				Diff:    instrumentDiffFlag,
			})
		},
	}

	cmd.Flags().BoolVar(&instrumentDiffFlag, diffFlagName, false, "show a unified diff against the original listing")
	cmd.Flags().StringVar(&instrumentProgramFlag, programFlagName, "", "program name when the file holds more than one")

	return cmd
}

func init() {
	rootCmd.AddCommand(instrumentCmd)
}
