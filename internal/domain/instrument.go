package domain

import (
	"fmt"

	m "overdub.dev/pkg/overdub/internal/model"
)

// Instrument rewrites p into a new instrumented program. The input is
// never modified; the pass builds fresh blocks rather than inserting
// into the sequences it iterates.
//
// The rewritten program carries, in this order:
//   - EnterFunc(name, blockCount) as the very first statement of the
//     entry block;
//   - EnterBlock(i) ahead of every statement originally in block i;
//   - for each Call with assigned id k, the triple
//     PreHook(k) / HookedCall(k) / PostHook(k) in place of the call.
//
// Block indexes are unchanged, so every control-flow edge of the
// original survives, and HookedCall writes the same destination as the
// call it replaces, so dataflow is preserved for any observer whose
// hooks are no-ops.
func Instrument(p *m.Program) (*m.Program, error) {
	if p == nil || len(p.Blocks) == 0 {
		return nil, ErrEmptyProgram
	}

	if p.Instrumented {
		return nil, ErrAlreadyInstrumented
	}

	if err := ValidateProgram(p); err != nil {
		return nil, err
	}

	ids, _, err := EnumerateCallSites(p)
	if err != nil {
		return nil, err
	}

	blocks := make([]*m.Block, 0, len(p.Blocks))

	for bi, block := range p.Blocks {
		out := make([]m.Statement, 0, len(block.Stmts)+2)

		if bi == 0 {
			out = append(out, &m.EnterFunc{Name: p.Name, BlockCount: len(p.Blocks)})
		}

		out = append(out, &m.EnterBlock{Index: bi + 1})

		for _, stmt := range block.Stmts {
			switch s := stmt.(type) {
			case *m.Call:
				k := ids[s]
				out = append(out,
					&m.PreHook{Site: k, Callee: s.Callee, Args: s.Args},
					&m.HookedCall{Site: k, Dest: s.Dest, Callee: s.Callee, Args: s.Args},
					&m.PostHook{Site: k, Result: s.Dest, Callee: s.Callee, Args: s.Args},
				)
			case *m.Assign:
				out = append(out, &m.Assign{Dest: s.Dest, Src: s.Src})
			case *m.Branch:
				out = append(out, &m.Branch{Cond: s.Cond, Then: s.Then, Else: s.Else})
			case *m.Jump:
				out = append(out, &m.Jump{Target: s.Target})
			case *m.Return:
				out = append(out, &m.Return{Src: s.Src})
			default:
				return nil, fmt.Errorf("block %d: %T: %w", bi+1, stmt, ErrUnsupportedStatement)
			}
		}

		blocks = append(blocks, &m.Block{Stmts: out})
	}

	params := make([]string, len(p.Params))
	copy(params, p.Params)

	return &m.Program{
		Name:         p.Name,
		Params:       params,
		Blocks:       blocks,
		Instrumented: true,
		Source:       p.Source,
	}, nil
}

// ValidateProgram checks the structural invariants the engine relies on:
// every block is non-empty, ends with exactly one terminator, contains
// no terminator elsewhere, and every branch or jump target is a valid
// 1-based block index. Violations are configuration errors reported
// before any rewrite or invocation.
func ValidateProgram(p *m.Program) error {
	if p == nil || len(p.Blocks) == 0 {
		return ErrEmptyProgram
	}

	n := len(p.Blocks)

	for bi, block := range p.Blocks {
		if block == nil || len(block.Stmts) == 0 {
			return fmt.Errorf("block %d is empty: %w", bi+1, ErrUnsupportedStatement)
		}

		for si, stmt := range block.Stmts {
			last := si == len(block.Stmts)-1

			if m.IsTerminator(stmt) != last {
				if last {
					return fmt.Errorf("block %d does not end with a terminator: %w", bi+1, ErrUnsupportedStatement)
				}

				return fmt.Errorf("block %d statement %d: terminator before end of block: %w", bi+1, si+1, ErrUnsupportedStatement)
			}

			switch s := stmt.(type) {
			case *m.Branch:
				if s.Then < 1 || s.Then > n || s.Else < 1 || s.Else > n {
					return fmt.Errorf("block %d: branch target out of range [1..%d]: %w", bi+1, n, ErrUnsupportedStatement)
				}
			case *m.Jump:
				if s.Target < 1 || s.Target > n {
					return fmt.Errorf("block %d: jump target out of range [1..%d]: %w", bi+1, n, ErrUnsupportedStatement)
				}
			}
		}
	}

	return nil
}
