package domain

import (
	m "overdub.dev/pkg/overdub/internal/model"
)

// classifyProgram builds the two-way branch used across the engine
// tests: stall, compare the inputs, then combine them one way or the
// other.
//
//	b1: delay(); c = lt(x, y); branch c ? b2 : b3
//	b2: r = add(x, y); return r
//	b3: r = sub(x, y); return r
func classifyProgram() *m.Program {
	return &m.Program{
		Name:   "classify",
		Params: []string{"x", "y"},
		Blocks: []*m.Block{
			{Stmts: []m.Statement{
				&m.Call{Callee: "delay"},
				&m.Call{Dest: "c", Callee: "lt", Args: []m.Operand{m.Ref("x"), m.Ref("y")}},
				&m.Branch{Cond: m.Ref("c"), Then: 2, Else: 3},
			}},
			{Stmts: []m.Statement{
				&m.Call{Dest: "r", Callee: "add", Args: []m.Operand{m.Ref("x"), m.Ref("y")}},
				&m.Return{Src: m.Ref("r")},
			}},
			{Stmts: []m.Statement{
				&m.Call{Dest: "r", Callee: "sub", Args: []m.Operand{m.Ref("x"), m.Ref("y")}},
				&m.Return{Src: m.Ref("r")},
			}},
		},
	}
}

// countdownProgram sums n + (n-1) + ... + 1 with a loop over blocks 2
// and 3.
func countdownProgram() *m.Program {
	return &m.Program{
		Name:   "countdown",
		Params: []string{"n"},
		Blocks: []*m.Block{
			{Stmts: []m.Statement{
				&m.Assign{Dest: "sum", Src: m.Lit(int64(0))},
				&m.Jump{Target: 2},
			}},
			{Stmts: []m.Statement{
				&m.Call{Dest: "c", Callee: "gt", Args: []m.Operand{m.Ref("n"), m.Lit(int64(0))}},
				&m.Branch{Cond: m.Ref("c"), Then: 3, Else: 4},
			}},
			{Stmts: []m.Statement{
				&m.Call{Dest: "sum", Callee: "add", Args: []m.Operand{m.Ref("sum"), m.Ref("n")}},
				&m.Call{Dest: "n", Callee: "sub", Args: []m.Operand{m.Ref("n"), m.Lit(int64(1))}},
				&m.Jump{Target: 2},
			}},
			{Stmts: []m.Statement{
				&m.Return{Src: m.Ref("sum")},
			}},
		},
	}
}

func classifyTests() []m.TestCase {
	return []m.TestCase{
		{Args: []m.Value{int64(2), int64(3)}, Want: int64(5)},
		{Args: []m.Value{int64(5), int64(1)}, Want: int64(4)},
	}
}
