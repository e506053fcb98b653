// Package domain contains the instrumentation engine: call-site
// enumeration, the rewrite pass, the invoker and the mutation testing
// workflow built on them.
package domain

import (
	"errors"
	"fmt"

	m "overdub.dev/pkg/overdub/internal/model"
)

var (
	// ErrEmptyProgram is returned for a program with no blocks.
	ErrEmptyProgram = errors.New("program has no blocks")
	// ErrAlreadyInstrumented is returned when a pass input already
	// carries hook statements.
	ErrAlreadyInstrumented = errors.New("program is already instrumented")
	// ErrUnsupportedStatement is returned for statement shapes the
	// engine does not model.
	ErrUnsupportedStatement = errors.New("unsupported statement")
)

// EnumerateCallSites traverses p exactly once, in block order and
// within-block statement order, and assigns the next unused id starting
// at 1 to every Call statement. Non-call statements do not consume ids.
// It returns the statement-to-id mapping and, in id order, a summary of
// every site. The traversal is deterministic, so enumerating twice
// yields identical ids for identical programs.
func EnumerateCallSites(p *m.Program) (map[*m.Call]m.CallSiteID, []m.SiteInfo, error) {
	if p == nil || len(p.Blocks) == 0 {
		return nil, nil, ErrEmptyProgram
	}

	ids := make(map[*m.Call]m.CallSiteID)
	sites := make([]m.SiteInfo, 0)
	next := m.CallSiteID(1)

	for bi, block := range p.Blocks {
		if block == nil {
			return nil, nil, fmt.Errorf("block %d is nil: %w", bi+1, ErrUnsupportedStatement)
		}

		for si, stmt := range block.Stmts {
			switch s := stmt.(type) {
			case *m.Call:
				if s.Callee == "" {
					return nil, nil, fmt.Errorf("block %d statement %d: call with empty callee: %w", bi+1, si+1, ErrUnsupportedStatement)
				}

				ids[s] = next
				sites = append(sites, m.SiteInfo{ID: next, Block: bi + 1, Callee: s.Callee})
				next++
			case *m.Assign, *m.Branch, *m.Jump, *m.Return:
				// Not a call site.
			case nil:
				return nil, nil, fmt.Errorf("block %d statement %d is nil: %w", bi+1, si+1, ErrUnsupportedStatement)
			default:
				if m.IsHook(stmt) {
					return nil, nil, ErrAlreadyInstrumented
				}

				return nil, nil, fmt.Errorf("block %d statement %d: %T: %w", bi+1, si+1, stmt, ErrUnsupportedStatement)
			}
		}
	}

	return ids, sites, nil
}
