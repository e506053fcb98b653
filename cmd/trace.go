package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"overdub.dev/pkg/overdub/internal/domain"
	m "overdub.dev/pkg/overdub/internal/model"
)

var traceProgramFlag string

// traceCmd represents the trace command.
var traceCmd = newTraceCmd()

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <file> [args...]",
		Short: "Invoke a program and print its call trace",
		Long: `Instrument one program, invoke it with the given arguments under a call
trace observer and print the recorded events. Arguments are parsed as
integers or booleans.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			values, err := parseValues(args[1:])
			if err != nil {
				return err
			}

			return workflow.Trace(context.Background(), domain.TraceArgs{
				Path:    m.Path(args[0]),
				Program: traceProgramFlag,
				Args:    values,
			})
		},
	}

	cmd.Flags().StringVar(&traceProgramFlag, programFlagName, "", "program name when the file holds more than one")

	return cmd
}

func init() {
	rootCmd.AddCommand(traceCmd)
}

// parseValues converts command-line strings into invocation arguments.
func parseValues(args []string) ([]m.Value, error) {
	values := make([]m.Value, 0, len(args))

	for _, arg := range args {
		if n, err := strconv.ParseInt(arg, 10, 64); err == nil {
			values = append(values, n)
			continue
		}

		if b, err := strconv.ParseBool(arg); err == nil {
			values = append(values, b)
			continue
		}

		return nil, fmt.Errorf("argument %q is neither an integer nor a boolean", arg)
	}

	return values, nil
}
