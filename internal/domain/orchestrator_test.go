package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"overdub.dev/pkg/overdub/internal/domain/observers"
	m "overdub.dev/pkg/overdub/internal/model"
)

func classifyRun(t *testing.T, mutant m.Mutant, tests []m.TestCase) MutantRun {
	t.Helper()

	instrumented, err := Instrument(classifyProgram())
	require.NoError(t, err)

	table := Builtins()

	invoke, err := Materialize(instrumented, table)
	require.NoError(t, err)

	return MutantRun{
		Mutant:     mutant,
		Invoker:    invoke,
		Controller: observers.NewMapController(),
		Table:      table,
		Tests:      tests,
	}
}

func TestOrchestrator_KilledByResultMismatch(t *testing.T) {
	run := classifyRun(t,
		m.Mutant{ID: "2:lt->gt", Site: 2, Callee: "lt", Alternate: "gt"},
		classifyTests(),
	)

	result, err := NewOrchestrator().TestMutant(context.Background(), run)
	require.NoError(t, err)
	require.Equal(t, m.Killed, result.Status)
	require.Contains(t, result.Detail, "got -1, want 5")
}

func TestOrchestrator_KilledByCalleeError(t *testing.T) {
	// add(-1, 0) becomes div(-1, 0): the division-by-zero error is the
	// detection signal.
	run := classifyRun(t,
		m.Mutant{ID: "3:add->div", Site: 3, Callee: "add", Alternate: "div"},
		[]m.TestCase{{Args: []m.Value{int64(-1), int64(0)}, Want: int64(-1)}},
	)

	result, err := NewOrchestrator().TestMutant(context.Background(), run)
	require.NoError(t, err)
	require.Equal(t, m.Killed, result.Status)
	require.Contains(t, result.Detail, "errored")
}

func TestOrchestrator_SurvivesEquivalentMutant(t *testing.T) {
	// On (2, 3) both lt and ne take the then arm.
	run := classifyRun(t,
		m.Mutant{ID: "2:lt->ne", Site: 2, Callee: "lt", Alternate: "ne"},
		[]m.TestCase{{Args: []m.Value{int64(2), int64(3)}, Want: int64(5)}},
	)

	result, err := NewOrchestrator().TestMutant(context.Background(), run)
	require.NoError(t, err)
	require.Equal(t, m.Survived, result.Status)
}

func TestOrchestrator_NoTestsMeansSurvived(t *testing.T) {
	run := classifyRun(t,
		m.Mutant{ID: "2:lt->gt", Site: 2, Callee: "lt", Alternate: "gt"},
		nil,
	)

	result, err := NewOrchestrator().TestMutant(context.Background(), run)
	require.NoError(t, err)
	require.Equal(t, m.Survived, result.Status)
	require.Equal(t, "no test cases declared", result.Detail)
}

func TestOrchestrator_UnresolvableAlternateIsSkipped(t *testing.T) {
	run := classifyRun(t,
		m.Mutant{ID: "2:lt->xor", Site: 2, Callee: "lt", Alternate: "xor"},
		classifyTests(),
	)

	result, err := NewOrchestrator().TestMutant(context.Background(), run)
	require.NoError(t, err)
	require.Equal(t, m.Skipped, result.Status)
}

func TestOrchestrator_ControllerClearedAfterRun(t *testing.T) {
	run := classifyRun(t,
		m.Mutant{ID: "2:lt->gt", Site: 2, Callee: "lt", Alternate: "gt"},
		classifyTests(),
	)

	_, err := NewOrchestrator().TestMutant(context.Background(), run)
	require.NoError(t, err)
	require.False(t, run.Controller.IsMutated(2, "lt"))
}

func TestOrchestrator_MissingInvoker(t *testing.T) {
	_, err := NewOrchestrator().TestMutant(context.Background(), MutantRun{
		Mutant: m.Mutant{ID: "broken"},
	})
	require.Error(t, err)
}
