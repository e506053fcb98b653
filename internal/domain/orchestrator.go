package domain

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"overdub.dev/pkg/overdub/internal/domain/observers"
	m "overdub.dev/pkg/overdub/internal/model"
)

// Orchestrator judges single mutants: it configures the substitution on
// a controller, drives the unit's test cases through the instrumented
// invoker and decides whether the mutant was killed.
type Orchestrator interface {
	TestMutant(ctx context.Context, run MutantRun) (m.SiteResult, error)
}

// MutantRun carries everything needed to judge one mutant. The
// controller must be owned exclusively by the caller for the duration of
// the run; observers have no internal synchronization.
type MutantRun struct {
	Mutant     m.Mutant
	Invoker    Invoker
	Controller observers.Controller
	Table      m.FuncTable
	Tests      []m.TestCase
}

type orchestrator struct{}

// NewOrchestrator constructs the default Orchestrator.
func NewOrchestrator() Orchestrator {
	return &orchestrator{}
}

// TestMutant applies the mutant, runs every test case and clears the
// mutant again. A test failure of any kind counts as killed: an error
// out of a substituted callee is the intended detection signal, not an
// infrastructure fault.
func (o *orchestrator) TestMutant(ctx context.Context, run MutantRun) (m.SiteResult, error) {
	if run.Invoker == nil || run.Controller == nil {
		return m.SiteResult{}, fmt.Errorf("mutant %s: missing invoker or controller", run.Mutant.ID)
	}

	if len(run.Tests) == 0 {
		// No test cases means nothing can detect the mutant.
		return m.SiteResult{Mutant: run.Mutant, Status: m.Survived, Detail: "no test cases declared"}, nil
	}

	alt, ok := run.Table.Resolve(run.Mutant.Alternate)
	if !ok {
		return m.SiteResult{Mutant: run.Mutant, Status: m.Skipped, Detail: fmt.Sprintf("alternate %q not in table", run.Mutant.Alternate)}, nil
	}

	if err := run.Controller.Set(run.Mutant.Site, run.Mutant.Callee, alt); err != nil {
		return m.SiteResult{}, fmt.Errorf("mutant %s: %w", run.Mutant.ID, err)
	}

	defer func() {
		if err := run.Controller.Clear(run.Mutant.Site, run.Mutant.Callee); err != nil {
			slog.Error("failed to clear mutation", "mutant", run.Mutant.ID, "error", err)
		}
	}()

	for i, test := range run.Tests {
		got, err := run.Invoker(ctx, run.Controller, test.Args...)
		if err != nil {
			return m.SiteResult{
				Mutant: run.Mutant,
				Status: m.Killed,
				Detail: fmt.Sprintf("test %d errored: %v", i+1, err),
			}, nil
		}

		if !reflect.DeepEqual(got, test.Want) {
			return m.SiteResult{
				Mutant: run.Mutant,
				Status: m.Killed,
				Detail: fmt.Sprintf("test %d: got %v, want %v", i+1, got, test.Want),
			}, nil
		}
	}

	return m.SiteResult{Mutant: run.Mutant, Status: m.Survived}, nil
}
