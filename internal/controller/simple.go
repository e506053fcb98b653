package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "overdub.dev/pkg/overdub/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayPrograms prints a table of loaded programs.
func (s *SimpleUI) DisplayPrograms(ctx context.Context, infos []m.ProgramInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buffer bytes.Buffer

	table := newTable(&buffer, []string{"Program", "Source", "Blocks", "Call Sites", "Tests"})

	totalSites := 0

	for _, info := range infos {
		table.Append([]string{
			info.Name,
			string(info.Source),
			fmt.Sprintf("%d", info.Blocks),
			fmt.Sprintf("%d", info.CallSites),
			fmt.Sprintf("%d", info.Tests),
		})

		totalSites += info.CallSites
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Programs %d", len(infos)),
		"", "",
		fmt.Sprintf("%d", totalSites),
		"",
	})
	table.Render()

	s.printf("\n%s", buffer.String())

	return nil
}

// DisplayListing prints a rendered program listing.
func (s *SimpleUI) DisplayListing(ctx context.Context, listing string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", listing)

	return nil
}

// DisplayTrace prints the call trace log in append order.
func (s *SimpleUI) DisplayTrace(ctx context.Context, events []m.TraceEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buffer bytes.Buffer

	table := newTable(&buffer, []string{"#", "Kind", "Site", "Callee", "Args", "Result"})

	for i, event := range events {
		switch event.Kind {
		case m.TraceEntry:
			table.Append([]string{
				fmt.Sprintf("%d", i+1),
				string(event.Kind),
				"",
				event.Fn,
				fmt.Sprintf("blocks=%d", event.BlockCount),
				"",
			})
		case m.TraceCall:
			table.Append([]string{
				fmt.Sprintf("%d", i+1),
				string(event.Kind),
				fmt.Sprintf("%d", event.Site),
				event.Callee,
				formatValues(event.Args),
				fmt.Sprintf("%v", event.Result),
			})
		}
	}

	table.Render()

	s.printf("\n%s", buffer.String())

	return nil
}

// DisplayCoverage prints per-block execution counters and the ratio.
func (s *SimpleUI) DisplayCoverage(ctx context.Context, program string, counts []uint64, ratio float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buffer bytes.Buffer

	table := newTable(&buffer, []string{"Block", "Executions"})

	for i, n := range counts {
		table.Append([]string{fmt.Sprintf("b%d", i+1), fmt.Sprintf("%d", n)})
	}

	table.SetFooter([]string{"Coverage", fmt.Sprintf("%.2f%%", ratio*100)})
	table.Render()

	s.printf("\nProgram %s:\n%s", program, buffer.String())

	return nil
}

// DisplayMutationPlan shows how many mutants will run on how many workers.
func (s *SimpleUI) DisplayMutationPlan(ctx context.Context, mutants int, threads int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Running %d mutant(s) with %d worker(s)\n", mutants, threads)
}

// DisplayStartingMutant shows info about the mutant being tested.
func (s *SimpleUI) DisplayStartingMutant(ctx context.Context, mutant m.Mutant) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Testing mutant %s\n", mutant.ID)
}

// DisplayCompletedMutant shows the outcome of one mutant.
func (s *SimpleUI) DisplayCompletedMutant(ctx context.Context, result m.SiteResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Mutant %s -> %s\n", result.Mutant.ID, result.Status)

	if result.Status == m.Survived && result.Detail != "" {
		s.printf("  %s\n", result.Detail)
	}
}

// DisplayReports prints saved mutation reports with a final score row.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buffer bytes.Buffer

	table := newTable(&buffer, []string{"Program", "Mutant", "Status", "Detail"})

	for _, report := range reports {
		for _, result := range report.Results {
			table.Append([]string{
				report.Program,
				result.Mutant.ID,
				result.Status.String(),
				result.Detail,
			})
		}
	}

	table.Render()

	s.printf("\n%s", buffer.String())

	return nil
}

// DisplayScore prints the final mutation score.
func (s *SimpleUI) DisplayScore(ctx context.Context, score float64) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Mutation score: %.2f%%\n", score*100)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func newTable(buffer *bytes.Buffer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(buffer)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")

	return table
}

func formatValues(values []m.Value) string {
	var buffer bytes.Buffer

	for i, v := range values {
		if i > 0 {
			buffer.WriteString(", ")
		}

		fmt.Fprintf(&buffer, "%v", v)
	}

	return buffer.String()
}
