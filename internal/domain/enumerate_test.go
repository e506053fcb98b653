package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	m "overdub.dev/pkg/overdub/internal/model"
)

func TestEnumerateCallSites_DenseIDsInTraversalOrder(t *testing.T) {
	program := classifyProgram()

	ids, sites, err := EnumerateCallSites(program)
	require.NoError(t, err)

	require.Equal(t, []m.SiteInfo{
		{ID: 1, Block: 1, Callee: "delay"},
		{ID: 2, Block: 1, Callee: "lt"},
		{ID: 3, Block: 2, Callee: "add"},
		{ID: 4, Block: 3, Callee: "sub"},
	}, sites)

	require.Len(t, ids, 4)
	require.Equal(t, m.CallSiteID(2), ids[program.Blocks[0].Stmts[1].(*m.Call)])
}

func TestEnumerateCallSites_RepeatedEnumerationIsStable(t *testing.T) {
	program := classifyProgram()

	first, _, err := EnumerateCallSites(program)
	require.NoError(t, err)

	second, _, err := EnumerateCallSites(program)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEnumerateCallSites_NonCallsConsumeNoIDs(t *testing.T) {
	_, sites, err := EnumerateCallSites(countdownProgram())
	require.NoError(t, err)

	// Assign, jumps, branch and return sit between the calls without
	// leaving gaps in the id sequence.
	require.Len(t, sites, 4)
	for i, site := range sites {
		require.Equal(t, m.CallSiteID(i+1), site.ID)
	}
}

func TestEnumerateCallSites_EmptyProgram(t *testing.T) {
	_, _, err := EnumerateCallSites(&m.Program{Name: "empty"})
	require.ErrorIs(t, err, ErrEmptyProgram)

	_, _, err = EnumerateCallSites(nil)
	require.ErrorIs(t, err, ErrEmptyProgram)
}

func TestEnumerateCallSites_RejectsInstrumentedInput(t *testing.T) {
	program := &m.Program{
		Name: "hooked",
		Blocks: []*m.Block{
			{Stmts: []m.Statement{
				&m.EnterBlock{Index: 1},
				&m.Return{Src: m.Lit(int64(0))},
			}},
		},
	}

	_, _, err := EnumerateCallSites(program)
	require.ErrorIs(t, err, ErrAlreadyInstrumented)
}

func TestEnumerateCallSites_RejectsEmptyCallee(t *testing.T) {
	program := &m.Program{
		Name: "bad",
		Blocks: []*m.Block{
			{Stmts: []m.Statement{
				&m.Call{Dest: "r"},
				&m.Return{Src: m.Ref("r")},
			}},
		},
	}

	_, _, err := EnumerateCallSites(program)
	require.ErrorIs(t, err, ErrUnsupportedStatement)
}
