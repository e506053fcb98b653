package domain

import (
	"context"
	"errors"
	"fmt"

	"overdub.dev/pkg/overdub/internal/domain/observers"
	m "overdub.dev/pkg/overdub/internal/model"
)

// Invoker is the materialized form of a Program. The leading context is
// a reserved slot, checked once on entry and otherwise unused; it must
// not be confused with the observer argument that follows it. A nil
// observer runs the program headless.
type Invoker func(ctx context.Context, obs observers.Observer, args ...m.Value) (m.Value, error)

// ErrUnknownCallee is returned by Materialize when a callee name does
// not resolve against the supplied table.
var ErrUnknownCallee = errors.New("unknown callee")

// Materialize turns p into an invocable unit. Callees are resolved
// against table once, up front; resolution failures are configuration
// errors, not runtime faults. The returned Invoker is safe for
// concurrent use as long as each invocation gets its own observer.
func Materialize(p *m.Program, table m.FuncTable) (Invoker, error) {
	if err := ValidateProgram(p); err != nil {
		return nil, err
	}

	funcs, err := resolveCallees(p, table)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, obs observers.Observer, args ...m.Value) (m.Value, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(args) != len(p.Params) {
			return nil, fmt.Errorf("program %q takes %d arguments, got %d", p.Name, len(p.Params), len(args))
		}

		if obs == nil {
			obs = observers.Nop{}
		}

		run := &execution{program: p, funcs: funcs, obs: obs, vars: make(map[string]m.Value, len(args))}
		for i, name := range p.Params {
			run.vars[name] = args[i]
		}

		return run.exec()
	}, nil
}

func resolveCallees(p *m.Program, table m.FuncTable) (map[string]m.Func, error) {
	funcs := make(map[string]m.Func)

	for bi, block := range p.Blocks {
		for _, stmt := range block.Stmts {
			name := ""

			switch s := stmt.(type) {
			case *m.Call:
				name = s.Callee
			case *m.HookedCall:
				name = s.Callee
			case *m.PreHook:
				name = s.Callee
			case *m.PostHook:
				name = s.Callee
			}

			if name == "" {
				continue
			}

			f, ok := table.Resolve(name)
			if !ok {
				return nil, fmt.Errorf("block %d: %q: %w", bi+1, name, ErrUnknownCallee)
			}

			funcs[name] = f
		}
	}

	return funcs, nil
}

// execution is the state of one invocation. It is single-threaded: the
// hooks run inline on the invoking goroutine in strict program order.
type execution struct {
	program *m.Program
	funcs   map[string]m.Func
	obs     observers.Observer
	vars    map[string]m.Value

	// hookArgs carries call arguments from PreHook through PostHook so
	// the post hook sees the pre-call values even when the call
	// overwrites one of its own operands. hookResults does the same for
	// call results, so PostHook reports the value InterceptCall produced
	// even when the call discards its destination.
	hookArgs    map[m.CallSiteID][]m.Value
	hookResults map[m.CallSiteID]m.Value
}

func (e *execution) exec() (m.Value, error) {
	block := 1

	for {
		next, result, done, err := e.execBlock(block)
		if err != nil {
			return nil, err
		}

		if done {
			return result, nil
		}

		block = next
	}
}

func (e *execution) execBlock(index int) (next int, result m.Value, done bool, err error) {
	for _, stmt := range e.program.Blocks[index-1].Stmts {
		switch s := stmt.(type) {
		case *m.EnterFunc:
			if err := e.obs.EnterFunction(s.Name, s.BlockCount); err != nil {
				return 0, nil, false, fmt.Errorf("enter function %q: %w", s.Name, err)
			}
		case *m.EnterBlock:
			e.obs.EnterBlock(s.Index)
		case *m.Call:
			if err := e.call(s.Dest, s.Callee, s.Args); err != nil {
				return 0, nil, false, err
			}
		case *m.PreHook:
			vals, err := e.evalArgs(s.Args)
			if err != nil {
				return 0, nil, false, err
			}

			if e.hookArgs == nil {
				e.hookArgs = make(map[m.CallSiteID][]m.Value)
			}

			e.hookArgs[s.Site] = vals
			e.obs.PreHook(s.Site, e.funcs[s.Callee], vals)
		case *m.HookedCall:
			vals, err := e.siteArgs(s.Site, s.Args)
			if err != nil {
				return 0, nil, false, err
			}

			r, err := e.obs.InterceptCall(s.Site, e.funcs[s.Callee], vals)
			if err != nil {
				return 0, nil, false, err
			}

			if e.hookResults == nil {
				e.hookResults = make(map[m.CallSiteID]m.Value)
			}

			e.hookResults[s.Site] = r
			e.store(s.Dest, r)
		case *m.PostHook:
			vals, err := e.siteArgs(s.Site, s.Args)
			if err != nil {
				return 0, nil, false, err
			}

			result := e.hookResults[s.Site]
			delete(e.hookResults, s.Site)
			delete(e.hookArgs, s.Site)
			e.obs.PostHook(s.Site, result, e.funcs[s.Callee], vals)
		case *m.Assign:
			v, err := e.eval(s.Src)
			if err != nil {
				return 0, nil, false, err
			}

			e.store(s.Dest, v)
		case *m.Branch:
			v, err := e.eval(s.Cond)
			if err != nil {
				return 0, nil, false, err
			}

			cond, ok := v.(bool)
			if !ok {
				return 0, nil, false, fmt.Errorf("branch condition is %T, want bool", v)
			}

			if cond {
				return s.Then, nil, false, nil
			}

			return s.Else, nil, false, nil
		case *m.Jump:
			return s.Target, nil, false, nil
		case *m.Return:
			v, err := e.eval(s.Src)
			if err != nil {
				return 0, nil, false, err
			}

			return 0, v, true, nil
		default:
			return 0, nil, false, fmt.Errorf("%T: %w", stmt, ErrUnsupportedStatement)
		}
	}

	return 0, nil, false, fmt.Errorf("block %d fell off its end without a terminator", index)
}

func (e *execution) call(dest, callee string, args []m.Operand) error {
	vals, err := e.evalArgs(args)
	if err != nil {
		return err
	}

	r, err := e.funcs[callee].Call(vals...)
	if err != nil {
		return err
	}

	e.store(dest, r)

	return nil
}

// siteArgs returns the argument values captured by the site's PreHook,
// falling back to fresh evaluation when no capture exists.
func (e *execution) siteArgs(site m.CallSiteID, args []m.Operand) ([]m.Value, error) {
	if vals, ok := e.hookArgs[site]; ok {
		return vals, nil
	}

	return e.evalArgs(args)
}

func (e *execution) evalArgs(args []m.Operand) ([]m.Value, error) {
	vals := make([]m.Value, len(args))

	for i, arg := range args {
		v, err := e.eval(arg)
		if err != nil {
			return nil, err
		}

		vals[i] = v
	}

	return vals, nil
}

func (e *execution) eval(o m.Operand) (m.Value, error) {
	if !o.IsRef() {
		return o.Lit, nil
	}

	v, ok := e.vars[o.Var]
	if !ok {
		return nil, fmt.Errorf("undefined variable %q", o.Var)
	}

	return v, nil
}

func (e *execution) store(dest string, v m.Value) {
	if dest == "" || dest == "_" {
		return
	}

	e.vars[dest] = v
}
