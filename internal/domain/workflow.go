package domain

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"
	"overdub.dev/pkg/overdub/internal/adapter"
	"overdub.dev/pkg/overdub/internal/controller"
	"overdub.dev/pkg/overdub/internal/domain/observers"
	m "overdub.dev/pkg/overdub/internal/model"
)

// Controller selection for mutation runs.
const (
	ControllerMap   = "map"
	ControllerArray = "array"
)

// ListArgs contains the arguments for listing programs.
type ListArgs struct {
	Paths   []m.Path
	Exclude []string
}

// InstrumentArgs contains the arguments for rendering an instrumented
// program.
type InstrumentArgs struct {
	Path    m.Path
	Program string
	Diff    bool
}

// TraceArgs contains the arguments for a traced invocation.
type TraceArgs struct {
	Path    m.Path
	Program string
	Args    []m.Value
}

// CoverArgs contains the arguments for a coverage run.
type CoverArgs struct {
	Path    m.Path
	Program string
}

// MutateArgs contains the arguments for a mutation run.
type MutateArgs struct {
	Paths      []m.Path
	Exclude    []string
	Threads    int
	Controller string
	Reports    m.Path
}

// ViewArgs contains the arguments for viewing saved reports.
type ViewArgs struct {
	Reports m.Path
}

// Workflow is the use-case surface behind the CLI commands.
type Workflow interface {
	List(ctx context.Context, args ListArgs) error
	Instrument(ctx context.Context, args InstrumentArgs) error
	Trace(ctx context.Context, args TraceArgs) error
	Cover(ctx context.Context, args CoverArgs) error
	Mutate(ctx context.Context, args MutateArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.ProgramStore
	adapter.ReportStore
	controller.UI
	Orchestrator
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	store adapter.ProgramStore,
	reportStore adapter.ReportStore,
	ui controller.UI,
	orchestrator Orchestrator,
) Workflow {
	return &workflow{
		ProgramStore: store,
		ReportStore:  reportStore,
		UI:           ui,
		Orchestrator: orchestrator,
	}
}

// List scans for program files and displays block, call-site and test
// counts for each.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	units, err := w.Scan(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return fmt.Errorf("scan programs: %w", err)
	}

	infos := make([]m.ProgramInfo, 0, len(units))

	for _, unit := range units {
		_, sites, err := EnumerateCallSites(unit.Program)
		if err != nil {
			return fmt.Errorf("program %q: %w", unit.Program.Name, err)
		}

		infos = append(infos, m.ProgramInfo{
			Name:      unit.Program.Name,
			Source:    unit.Program.Source,
			Blocks:    len(unit.Program.Blocks),
			CallSites: len(sites),
			Tests:     len(unit.Tests),
		})
	}

	return w.DisplayPrograms(ctx, infos)
}

// Instrument renders the rewritten form of one program, optionally as a
// unified diff against the original.
func (w *workflow) Instrument(ctx context.Context, args InstrumentArgs) error {
	unit, err := w.loadUnit(ctx, args.Path, args.Program)
	if err != nil {
		return err
	}

	instrumented, err := Instrument(unit.Program)
	if err != nil {
		return fmt.Errorf("instrument %q: %w", unit.Program.Name, err)
	}

	if !args.Diff {
		return w.DisplayListing(ctx, adapter.FormatProgram(instrumented))
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(adapter.FormatProgram(unit.Program)),
		B:        difflib.SplitLines(adapter.FormatProgram(instrumented)),
		FromFile: unit.Program.Name + " (original)",
		ToFile:   unit.Program.Name + " (instrumented)",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("diff %q: %w", unit.Program.Name, err)
	}

	return w.DisplayListing(ctx, diff)
}

// Trace runs one program under a call trace observer and displays the
// resulting log.
func (w *workflow) Trace(ctx context.Context, args TraceArgs) error {
	unit, err := w.loadUnit(ctx, args.Path, args.Program)
	if err != nil {
		return err
	}

	instrumented, err := Instrument(unit.Program)
	if err != nil {
		return fmt.Errorf("instrument %q: %w", unit.Program.Name, err)
	}

	invoke, err := Materialize(instrumented, Builtins())
	if err != nil {
		return fmt.Errorf("materialize %q: %w", unit.Program.Name, err)
	}

	trace := observers.NewCallTrace()

	result, err := invoke(ctx, trace, args.Args...)
	if err != nil {
		return fmt.Errorf("invoke %q: %w", unit.Program.Name, err)
	}

	if err := w.DisplayTrace(ctx, trace.Events()); err != nil {
		return err
	}

	return w.DisplayListing(ctx, fmt.Sprintf("result: %v\n", result))
}

// Cover drives the program's declared test cases under a coverage
// observer and displays per-block counters.
func (w *workflow) Cover(ctx context.Context, args CoverArgs) error {
	unit, err := w.loadUnit(ctx, args.Path, args.Program)
	if err != nil {
		return err
	}

	if len(unit.Tests) == 0 {
		return fmt.Errorf("program %q declares no test cases to drive coverage", unit.Program.Name)
	}

	instrumented, err := Instrument(unit.Program)
	if err != nil {
		return fmt.Errorf("instrument %q: %w", unit.Program.Name, err)
	}

	invoke, err := Materialize(instrumented, Builtins())
	if err != nil {
		return fmt.Errorf("materialize %q: %w", unit.Program.Name, err)
	}

	coverage := observers.NewCoverage(len(instrumented.Blocks))

	for i, test := range unit.Tests {
		if _, err := invoke(ctx, coverage, test.Args...); err != nil {
			return fmt.Errorf("test %d of %q: %w", i+1, unit.Program.Name, err)
		}
	}

	return w.DisplayCoverage(ctx, unit.Program.Name, coverage.Counts(), coverage.Ratio())
}

// unitPlan is one program prepared for a mutation run.
type unitPlan struct {
	unit    m.Unit
	sites   []m.SiteInfo
	mutants []m.Mutant
	invoke  Invoker
	table   m.FuncTable
}

// Mutate runs the full mutation pipeline: plan mutants for every
// program, test them in parallel, save the reports and display the
// score.
func (w *workflow) Mutate(ctx context.Context, args MutateArgs) error {
	units, err := w.Scan(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return fmt.Errorf("scan programs: %w", err)
	}

	plans, total, err := w.planUnits(units)
	if err != nil {
		return err
	}

	threads := args.Threads
	if threads < 1 {
		threads = 1
	}

	if err := w.Start(ctx, controller.WithMutateMode()); err != nil {
		return err
	}

	w.DisplayMutationPlan(ctx, total, threads)

	reports := make([]m.RunReport, 0, len(plans))

	for _, plan := range plans {
		report, err := w.runPlan(ctx, plan, threads, args.Controller)
		if err != nil {
			w.Close(ctx)
			return err
		}

		reports = append(reports, report)
	}

	score := MutationScore(reports)

	if args.Reports != "" {
		if err := w.SaveReports(ctx, args.Reports, reports); err != nil {
			w.Close(ctx)
			return fmt.Errorf("save reports: %w", err)
		}
	}

	w.DisplayScore(ctx, score)
	w.Wait(ctx)
	w.Close(ctx)

	slog.Info("mutation run finished", "programs", len(plans), "mutants", total, "score", score)

	return nil
}

// View re-renders previously saved reports.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.LoadReports(ctx, args.Reports)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	if err := w.DisplayReports(ctx, reports); err != nil {
		return err
	}

	w.DisplayScore(ctx, MutationScore(reports))

	return nil
}

func (w *workflow) loadUnit(ctx context.Context, path m.Path, name string) (m.Unit, error) {
	units, err := w.Load(ctx, path)
	if err != nil {
		return m.Unit{}, fmt.Errorf("load %s: %w", path, err)
	}

	if name == "" {
		if len(units) > 1 {
			return m.Unit{}, fmt.Errorf("%s holds %d programs, select one with --program", path, len(units))
		}

		return units[0], nil
	}

	for _, unit := range units {
		if unit.Program.Name == name {
			return unit, nil
		}
	}

	return m.Unit{}, fmt.Errorf("%s: no program named %q", path, name)
}

func (w *workflow) planUnits(units []m.Unit) ([]unitPlan, int, error) {
	plans := make([]unitPlan, 0, len(units))
	total := 0

	for _, unit := range units {
		_, sites, err := EnumerateCallSites(unit.Program)
		if err != nil {
			return nil, 0, fmt.Errorf("program %q: %w", unit.Program.Name, err)
		}

		instrumented, err := Instrument(unit.Program)
		if err != nil {
			return nil, 0, fmt.Errorf("instrument %q: %w", unit.Program.Name, err)
		}

		table := Builtins()

		invoke, err := Materialize(instrumented, table)
		if err != nil {
			return nil, 0, fmt.Errorf("materialize %q: %w", unit.Program.Name, err)
		}

		mutants := PlanMutants(sites)
		total += len(mutants)

		plans = append(plans, unitPlan{
			unit:    unit,
			sites:   sites,
			mutants: mutants,
			invoke:  invoke,
			table:   table,
		})
	}

	return plans, total, nil
}

func (w *workflow) runPlan(ctx context.Context, plan unitPlan, threads int, controllerKind string) (m.RunReport, error) {
	report := m.RunReport{
		Program: plan.unit.Program.Name,
		Source:  plan.unit.Program.Source,
		Blocks:  len(plan.unit.Program.Blocks),
		Sites:   len(plan.sites),
		Results: make([]m.SiteResult, len(plan.mutants)),
	}

	if err := w.verifyBaseline(ctx, plan); err != nil {
		// A failing baseline means no mutant verdict is trustworthy.
		for i, mutant := range plan.mutants {
			report.Results[i] = m.SiteResult{Mutant: mutant, Status: m.Error, Detail: err.Error()}
		}

		slog.Error("baseline failed", "program", plan.unit.Program.Name, "error", err)

		return report, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, mutant := range plan.mutants {
		group.Go(func() error {
			ctrl, err := newController(controllerKind, len(plan.sites))
			if err != nil {
				return err
			}

			w.DisplayStartingMutant(groupCtx, mutant)

			result, err := w.TestMutant(groupCtx, MutantRun{
				Mutant:     mutant,
				Invoker:    plan.invoke,
				Controller: ctrl,
				Table:      plan.table,
				Tests:      plan.unit.Tests,
			})
			if err != nil {
				return err
			}

			report.Results[i] = result
			w.DisplayCompletedMutant(groupCtx, result)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return m.RunReport{}, err
	}

	return report, nil
}

// verifyBaseline runs the test cases against the unmutated program. Each
// invocation gets its own headless observer.
func (w *workflow) verifyBaseline(ctx context.Context, plan unitPlan) error {
	if len(plan.unit.Tests) == 0 {
		return nil
	}

	for i, test := range plan.unit.Tests {
		got, err := plan.invoke(ctx, observers.Nop{}, test.Args...)
		if err != nil {
			return fmt.Errorf("baseline test %d: %w", i+1, err)
		}

		if !reflect.DeepEqual(got, test.Want) {
			return fmt.Errorf("baseline test %d: got %v, want %v", i+1, got, test.Want)
		}
	}

	return nil
}

func newController(kind string, sites int) (observers.Controller, error) {
	switch kind {
	case ControllerArray:
		return observers.NewArrayController(sites), nil
	case ControllerMap, "":
		return observers.NewMapController(), nil
	}

	return nil, fmt.Errorf("unknown controller kind %q", kind)
}
