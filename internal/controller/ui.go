// Package controller provides output surfaces for displaying listings,
// traces, coverage and mutation results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	m "overdub.dev/pkg/overdub/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	// ModeBatch renders results once computation is done.
	ModeBatch StartMode = iota
	// ModeMutate renders live progress while mutants are being tested.
	ModeMutate
)

// StartOption is a functional option for the Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithMutateMode sets the UI to live mutation-progress mode.
func WithMutateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeMutate
	}
}

// UI defines the interface for displaying engine output. Implementations
// can use different output methods (simple text, TUI).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayPrograms(ctx context.Context, infos []m.ProgramInfo) error
	DisplayListing(ctx context.Context, listing string) error
	DisplayTrace(ctx context.Context, events []m.TraceEvent) error
	DisplayCoverage(ctx context.Context, program string, counts []uint64, ratio float64) error
	DisplayMutationPlan(ctx context.Context, mutants int, threads int)
	DisplayStartingMutant(ctx context.Context, mutant m.Mutant)
	DisplayCompletedMutant(ctx context.Context, result m.SiteResult)
	DisplayReports(ctx context.Context, reports []m.RunReport) error
	DisplayScore(ctx context.Context, score float64)
}

// NewUI selects the UI implementation: the TUI when the output is a
// terminal, the simple printer otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a character device.
func IsTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}
