package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"overdub.dev/pkg/overdub/internal/domain/observers"
	m "overdub.dev/pkg/overdub/internal/model"
)

func materializeClassify(t *testing.T) (Invoker, m.FuncTable) {
	t.Helper()

	instrumented, err := Instrument(classifyProgram())
	require.NoError(t, err)

	table := Builtins()

	invoke, err := Materialize(instrumented, table)
	require.NoError(t, err)

	return invoke, table
}

func TestInvoke_Transparency(t *testing.T) {
	table := Builtins()

	plain, err := Materialize(classifyProgram(), table)
	require.NoError(t, err)

	invoke, _ := materializeClassify(t)
	ctx := context.Background()

	for _, test := range classifyTests() {
		want, err := plain(ctx, nil, test.Args...)
		require.NoError(t, err)
		require.Equal(t, test.Want, want)

		got, err := invoke(ctx, observers.Nop{}, test.Args...)
		require.NoError(t, err)
		require.Equal(t, want, got)

		// A nil observer runs headless with identical results.
		got, err = invoke(ctx, nil, test.Args...)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestInvoke_MutateComparisonFlipsBranch(t *testing.T) {
	invoke, table := materializeClassify(t)
	ctx := context.Background()

	controller := observers.NewMapController()
	gt, ok := table.Resolve("gt")
	require.True(t, ok)
	require.NoError(t, controller.Set(2, "lt", gt))

	// 2 > 3 is false, so the else arm computes 2 - 3.
	got, err := invoke(ctx, controller, int64(2), int64(3))
	require.NoError(t, err)
	require.Equal(t, int64(-1), got)
}

func TestInvoke_MutateArithmeticInTakenArm(t *testing.T) {
	invoke, table := materializeClassify(t)
	ctx := context.Background()

	controller := observers.NewMapController()
	mul, ok := table.Resolve("mul")
	require.True(t, ok)
	require.NoError(t, controller.Set(3, "add", mul))

	got, err := invoke(ctx, controller, int64(2), int64(3))
	require.NoError(t, err)
	require.Equal(t, int64(6), got)
}

func TestInvoke_ClearRestoresOriginalBehavior(t *testing.T) {
	invoke, table := materializeClassify(t)
	ctx := context.Background()

	controller := observers.NewMapController()
	mul, _ := table.Resolve("mul")
	require.NoError(t, controller.Set(3, "add", mul))
	require.True(t, controller.IsMutated(3, "add"))

	require.NoError(t, controller.Clear(3, "add"))
	require.False(t, controller.IsMutated(3, "add"))

	got, err := invoke(ctx, controller, int64(2), int64(3))
	require.NoError(t, err)
	require.Equal(t, int64(5), got)
}

func TestInvoke_ControllerEquivalence(t *testing.T) {
	invoke, table := materializeClassify(t)
	ctx := context.Background()
	gt, _ := table.Resolve("gt")

	mapped := observers.NewMapController()
	require.NoError(t, mapped.Set(2, "lt", gt))

	indexed := observers.NewArrayController(4)
	require.NoError(t, indexed.Set(2, "lt", gt))

	fromMap, err := invoke(ctx, mapped, int64(2), int64(3))
	require.NoError(t, err)

	fromArray, err := invoke(ctx, indexed, int64(2), int64(3))
	require.NoError(t, err)

	require.Equal(t, fromMap, fromArray)
	require.Equal(t, int64(-1), fromArray)
}

func TestInvoke_PostHookSeesPreCallArguments(t *testing.T) {
	// n = add(n, 1) overwrites its own operand; the trace must still
	// carry the pre-call value.
	program := &m.Program{
		Name:   "bump",
		Params: []string{"n"},
		Blocks: []*m.Block{
			{Stmts: []m.Statement{
				&m.Call{Dest: "n", Callee: "add", Args: []m.Operand{m.Ref("n"), m.Lit(int64(1))}},
				&m.Return{Src: m.Ref("n")},
			}},
		},
	}

	instrumented, err := Instrument(program)
	require.NoError(t, err)

	invoke, err := Materialize(instrumented, Builtins())
	require.NoError(t, err)

	trace := observers.NewCallTrace()

	got, err := invoke(context.Background(), trace, int64(5))
	require.NoError(t, err)
	require.Equal(t, int64(6), got)

	events := trace.Events()
	require.Len(t, events, 2)
	require.Equal(t, []m.Value{int64(5), int64(1)}, events[1].Args)
	require.Equal(t, int64(6), events[1].Result)
}

func TestInvoke_PostHookSeesDiscardedResult(t *testing.T) {
	// The call drops its result; the trace must still carry the value
	// the call produced.
	program := &m.Program{
		Name:   "discard",
		Params: []string{"x", "y"},
		Blocks: []*m.Block{
			{Stmts: []m.Statement{
				&m.Call{Callee: "add", Args: []m.Operand{m.Ref("x"), m.Ref("y")}},
				&m.Return{Src: m.Ref("x")},
			}},
		},
	}

	instrumented, err := Instrument(program)
	require.NoError(t, err)

	invoke, err := Materialize(instrumented, Builtins())
	require.NoError(t, err)

	trace := observers.NewCallTrace()

	got, err := invoke(context.Background(), trace, int64(2), int64(3))
	require.NoError(t, err)
	require.Equal(t, int64(2), got)

	events := trace.Events()
	require.Len(t, events, 2)
	require.Equal(t, int64(5), events[1].Result)
}

func TestInvoke_LoopReentersBlocks(t *testing.T) {
	instrumented, err := Instrument(countdownProgram())
	require.NoError(t, err)

	invoke, err := Materialize(instrumented, Builtins())
	require.NoError(t, err)

	coverage := observers.NewCoverage(len(instrumented.Blocks))

	got, err := invoke(context.Background(), coverage, int64(3))
	require.NoError(t, err)
	require.Equal(t, int64(6), got)

	// Block 2 runs once per loop test, block 3 once per iteration.
	require.Equal(t, []uint64{1, 4, 3, 1}, coverage.Counts())
}

func TestInvoke_ArgumentCountMismatch(t *testing.T) {
	invoke, _ := materializeClassify(t)

	_, err := invoke(context.Background(), nil, int64(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "takes 2 arguments")
}

func TestInvoke_CancelledContext(t *testing.T) {
	invoke, _ := materializeClassify(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := invoke(ctx, nil, int64(2), int64(3))
	require.ErrorIs(t, err, context.Canceled)
}

func TestMaterialize_UnknownCallee(t *testing.T) {
	table := Builtins()
	delete(table, "sub")

	_, err := Materialize(classifyProgram(), table)
	require.ErrorIs(t, err, ErrUnknownCallee)
}

func TestInvoke_UndefinedVariable(t *testing.T) {
	program := &m.Program{
		Name: "loose",
		Blocks: []*m.Block{
			{Stmts: []m.Statement{&m.Return{Src: m.Ref("ghost")}}},
		},
	}

	invoke, err := Materialize(program, Builtins())
	require.NoError(t, err)

	_, err = invoke(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined variable")
}
