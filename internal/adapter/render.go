package adapter

import (
	"fmt"
	"strings"

	m "overdub.dev/pkg/overdub/internal/model"
)

// FormatProgram renders p as a block-indexed listing. The listing is
// stable for identical programs, which makes it diffable.
func FormatProgram(p *m.Program) string {
	var b strings.Builder

	label := "func"
	if p.Instrumented {
		label = "instrumented func"
	}

	fmt.Fprintf(&b, "%s %s(%s)\n", label, p.Name, strings.Join(p.Params, ", "))

	for bi, block := range p.Blocks {
		fmt.Fprintf(&b, "b%d:\n", bi+1)

		for _, stmt := range block.Stmts {
			fmt.Fprintf(&b, "\t%s\n", formatStatement(stmt))
		}
	}

	return b.String()
}

func formatStatement(stmt m.Statement) string {
	switch s := stmt.(type) {
	case *m.Call:
		return withDest(s.Dest, fmt.Sprintf("call %s(%s)", s.Callee, formatOperands(s.Args)))
	case *m.Assign:
		return fmt.Sprintf("%s = %s", s.Dest, formatOperand(s.Src))
	case *m.Branch:
		return fmt.Sprintf("branch %s ? b%d : b%d", formatOperand(s.Cond), s.Then, s.Else)
	case *m.Jump:
		return fmt.Sprintf("jump b%d", s.Target)
	case *m.Return:
		return fmt.Sprintf("return %s", formatOperand(s.Src))
	case *m.EnterFunc:
		return fmt.Sprintf("enterfunc %q blocks=%d", s.Name, s.BlockCount)
	case *m.EnterBlock:
		return fmt.Sprintf("enterblock %d", s.Index)
	case *m.PreHook:
		return fmt.Sprintf("prehook[%d] %s(%s)", s.Site, s.Callee, formatOperands(s.Args))
	case *m.HookedCall:
		return withDest(s.Dest, fmt.Sprintf("intercept[%d] %s(%s)", s.Site, s.Callee, formatOperands(s.Args)))
	case *m.PostHook:
		result := s.Result
		if result == "" {
			result = "_"
		}

		return fmt.Sprintf("posthook[%d] %s -> %s", s.Site, s.Callee, result)
	}

	return fmt.Sprintf("?%T", stmt)
}

func withDest(dest, rhs string) string {
	if dest == "" || dest == "_" {
		return rhs
	}

	return fmt.Sprintf("%s = %s", dest, rhs)
}

func formatOperands(operands []m.Operand) string {
	parts := make([]string, 0, len(operands))

	for _, o := range operands {
		parts = append(parts, formatOperand(o))
	}

	return strings.Join(parts, ", ")
}

func formatOperand(o m.Operand) string {
	if o.IsRef() {
		return o.Var
	}

	return fmt.Sprintf("%v", o.Lit)
}
