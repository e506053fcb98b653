package adapter

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"
	m "overdub.dev/pkg/overdub/internal/model"
)

// GoFrontAdapter lowers a restricted subset of Go into the IR: function
// declarations whose bodies consist of calls, single assignments,
// if/else with both arms returning, and a final return. Short-circuit
// evaluation of && and || is not preserved; both operands lower to
// eagerly evaluated calls. Anything outside the subset is a fail-fast
// configuration error naming the construct.
type GoFrontAdapter interface {
	LowerFile(ctx context.Context, path m.Path) ([]m.Unit, error)
	LowerSource(ctx context.Context, filename string, src []byte) ([]m.Unit, error)
}

type localGoFront struct{}

// NewLocalGoFront creates the default Go front end.
func NewLocalGoFront() GoFrontAdapter {
	return &localGoFront{}
}

// LowerFile parses and lowers every function declaration in the file.
func (g *localGoFront) LowerFile(ctx context.Context, path m.Path) ([]m.Unit, error) {
	return g.lower(ctx, string(path), nil)
}

// LowerSource lowers in-memory Go source; filename is used only for
// positions and unit provenance.
func (g *localGoFront) LowerSource(ctx context.Context, filename string, src []byte) ([]m.Unit, error) {
	return g.lower(ctx, filename, src)
}

func (g *localGoFront) lower(ctx context.Context, filename string, src []byte) ([]m.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fset := token.NewFileSet()

	// A nil []byte must be passed as an untyped nil, or ParseFile treats
	// it as empty source instead of reading the file from disk.
	var source any
	if src != nil {
		source = src
	}

	file, err := parser.ParseFile(fset, filename, source, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	var units []m.Unit

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}

		if err := rejectUnsupported(fset, fn); err != nil {
			return nil, err
		}

		program, err := lowerFunc(fset, fn)
		if err != nil {
			return nil, err
		}

		program.Source = m.Path(filename)
		units = append(units, m.Unit{Program: program})
	}

	if len(units) == 0 {
		return nil, fmt.Errorf("%s: no function declarations to lower", filename)
	}

	return units, nil
}

// rejectUnsupported walks the function once and fails on the first
// construct outside the lowered subset, before any block is built.
func rejectUnsupported(fset *token.FileSet, fn *ast.FuncDecl) error {
	var bad error

	astutil.Apply(fn.Body, func(c *astutil.Cursor) bool {
		if bad != nil {
			return false
		}

		switch n := c.Node().(type) {
		case *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt,
			*ast.SelectStmt, *ast.GoStmt, *ast.DeferStmt, *ast.FuncLit,
			*ast.SendStmt, *ast.LabeledStmt, *ast.IndexExpr, *ast.SelectorExpr,
			*ast.CompositeLit, *ast.StarExpr:
			bad = loweringError(fset, n.Pos(), fn, fmt.Sprintf("%T not supported", n))
			return false
		case *ast.CallExpr:
			if n.Ellipsis != token.NoPos {
				bad = loweringError(fset, n.Pos(), fn, "variadic call not supported")
				return false
			}
		case *ast.AssignStmt:
			if len(n.Lhs) != 1 || len(n.Rhs) != 1 {
				bad = loweringError(fset, n.Pos(), fn, "multi-value assignment not supported")
				return false
			}
		case *ast.ReturnStmt:
			if len(n.Results) != 1 {
				bad = loweringError(fset, n.Pos(), fn, "return must produce exactly one value")
				return false
			}
		}

		return true
	}, nil)

	return bad
}

func loweringError(fset *token.FileSet, pos token.Pos, fn *ast.FuncDecl, msg string) error {
	return fmt.Errorf("%s: func %s: %s", fset.Position(pos), fn.Name.Name, msg)
}

type lowerer struct {
	fset   *token.FileSet
	fn     *ast.FuncDecl
	blocks []*m.Block
	tmp    int
}

func lowerFunc(fset *token.FileSet, fn *ast.FuncDecl) (*m.Program, error) {
	l := &lowerer{fset: fset, fn: fn}

	params, err := paramNames(fset, fn)
	if err != nil {
		return nil, err
	}

	entry := l.newBlock()
	if err := l.lowerBody(entry, fn.Body.List); err != nil {
		return nil, err
	}

	return &m.Program{
		Name:   fn.Name.Name,
		Params: params,
		Blocks: l.blocks,
	}, nil
}

func paramNames(fset *token.FileSet, fn *ast.FuncDecl) ([]string, error) {
	var params []string

	if fn.Type.Params == nil {
		return params, nil
	}

	for _, field := range fn.Type.Params.List {
		if len(field.Names) == 0 {
			return nil, loweringError(fset, field.Pos(), fn, "unnamed parameter not supported")
		}

		for _, name := range field.Names {
			params = append(params, name.Name)
		}
	}

	return params, nil
}

func (l *lowerer) newBlock() int {
	l.blocks = append(l.blocks, &m.Block{})
	return len(l.blocks)
}

func (l *lowerer) emit(idx int, s m.Statement) {
	block := l.blocks[idx-1]
	block.Stmts = append(block.Stmts, s)
}

func (l *lowerer) temp() string {
	l.tmp++
	return fmt.Sprintf(".t%d", l.tmp)
}

// lowerBody lowers a statement list into the block at idx. The list
// must terminate: its last statement is a return or an if/else whose
// arms both terminate.
func (l *lowerer) lowerBody(idx int, stmts []ast.Stmt) error {
	for i, stmt := range stmts {
		last := i == len(stmts)-1

		switch s := stmt.(type) {
		case *ast.ExprStmt:
			call, ok := s.X.(*ast.CallExpr)
			if !ok {
				return loweringError(l.fset, s.Pos(), l.fn, "expression statement must be a call")
			}

			if err := l.lowerCall(idx, "", call); err != nil {
				return err
			}
		case *ast.AssignStmt:
			dest, ok := s.Lhs[0].(*ast.Ident)
			if !ok {
				return loweringError(l.fset, s.Pos(), l.fn, "assignment target must be an identifier")
			}

			op, err := l.lowerExpr(idx, s.Rhs[0])
			if err != nil {
				return err
			}

			l.emit(idx, &m.Assign{Dest: dest.Name, Src: op})
		case *ast.ReturnStmt:
			if !last {
				return loweringError(l.fset, s.Pos(), l.fn, "return before end of block")
			}

			op, err := l.lowerExpr(idx, s.Results[0])
			if err != nil {
				return err
			}

			l.emit(idx, &m.Return{Src: op})

			return nil
		case *ast.IfStmt:
			if !last {
				return loweringError(l.fset, s.Pos(), l.fn, "if must be the last statement of its block")
			}

			return l.lowerIf(idx, s)
		default:
			return loweringError(l.fset, stmt.Pos(), l.fn, fmt.Sprintf("%T not supported", stmt))
		}
	}

	return loweringError(l.fset, l.fn.Pos(), l.fn, "block does not end with return or if/else")
}

func (l *lowerer) lowerIf(idx int, s *ast.IfStmt) error {
	if s.Init != nil {
		return loweringError(l.fset, s.Pos(), l.fn, "if with init statement not supported")
	}

	if s.Else == nil {
		return loweringError(l.fset, s.Pos(), l.fn, "if without else not supported")
	}

	cond, err := l.lowerExpr(idx, s.Cond)
	if err != nil {
		return err
	}

	thenIdx := l.newBlock()
	elseIdx := l.newBlock()
	l.emit(idx, &m.Branch{Cond: cond, Then: thenIdx, Else: elseIdx})

	if err := l.lowerBody(thenIdx, s.Body.List); err != nil {
		return err
	}

	switch alt := s.Else.(type) {
	case *ast.BlockStmt:
		return l.lowerBody(elseIdx, alt.List)
	case *ast.IfStmt:
		return l.lowerBody(elseIdx, []ast.Stmt{alt})
	}

	return loweringError(l.fset, s.Else.Pos(), l.fn, "unsupported else form")
}

func (l *lowerer) lowerCall(idx int, dest string, call *ast.CallExpr) error {
	callee, ok := call.Fun.(*ast.Ident)
	if !ok {
		return loweringError(l.fset, call.Pos(), l.fn, "callee must be an identifier")
	}

	args := make([]m.Operand, 0, len(call.Args))

	for _, arg := range call.Args {
		op, err := l.lowerExpr(idx, arg)
		if err != nil {
			return err
		}

		args = append(args, op)
	}

	l.emit(idx, &m.Call{Dest: dest, Callee: callee.Name, Args: args})

	return nil
}

// lowerExpr reduces an expression to an operand, emitting call
// statements for every operator and call along the way. Operators lower
// to the builtin callees so every one of them becomes a mutable call
// site.
func (l *lowerer) lowerExpr(idx int, expr ast.Expr) (m.Operand, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		switch e.Name {
		case "true":
			return m.Lit(true), nil
		case "false":
			return m.Lit(false), nil
		}

		return m.Ref(e.Name), nil
	case *ast.BasicLit:
		if e.Kind != token.INT {
			return m.Operand{}, loweringError(l.fset, e.Pos(), l.fn, fmt.Sprintf("%s literal not supported", e.Kind))
		}

		n, err := strconv.ParseInt(e.Value, 0, 64)
		if err != nil {
			return m.Operand{}, loweringError(l.fset, e.Pos(), l.fn, err.Error())
		}

		return m.Lit(n), nil
	case *ast.ParenExpr:
		return l.lowerExpr(idx, e.X)
	case *ast.BinaryExpr:
		name, ok := binaryCallee(e.Op)
		if !ok {
			return m.Operand{}, loweringError(l.fset, e.Pos(), l.fn, fmt.Sprintf("operator %s not supported", e.Op))
		}

		a, err := l.lowerExpr(idx, e.X)
		if err != nil {
			return m.Operand{}, err
		}

		b, err := l.lowerExpr(idx, e.Y)
		if err != nil {
			return m.Operand{}, err
		}

		dest := l.temp()
		l.emit(idx, &m.Call{Dest: dest, Callee: name, Args: []m.Operand{a, b}})

		return m.Ref(dest), nil
	case *ast.UnaryExpr:
		name, ok := unaryCallee(e.Op)
		if !ok {
			return m.Operand{}, loweringError(l.fset, e.Pos(), l.fn, fmt.Sprintf("operator %s not supported", e.Op))
		}

		a, err := l.lowerExpr(idx, e.X)
		if err != nil {
			return m.Operand{}, err
		}

		dest := l.temp()
		l.emit(idx, &m.Call{Dest: dest, Callee: name, Args: []m.Operand{a}})

		return m.Ref(dest), nil
	case *ast.CallExpr:
		dest := l.temp()
		if err := l.lowerCall(idx, dest, e); err != nil {
			return m.Operand{}, err
		}

		return m.Ref(dest), nil
	}

	return m.Operand{}, loweringError(l.fset, expr.Pos(), l.fn, fmt.Sprintf("%T not supported", expr))
}

func binaryCallee(op token.Token) (string, bool) {
	switch op {
	case token.LSS:
		return "lt", true
	case token.LEQ:
		return "le", true
	case token.GTR:
		return "gt", true
	case token.GEQ:
		return "ge", true
	case token.EQL:
		return "eq", true
	case token.NEQ:
		return "ne", true
	case token.ADD:
		return "add", true
	case token.SUB:
		return "sub", true
	case token.MUL:
		return "mul", true
	case token.QUO:
		return "div", true
	case token.REM:
		return "mod", true
	case token.LAND:
		return "and", true
	case token.LOR:
		return "or", true
	}

	return "", false
}

func unaryCallee(op token.Token) (string, bool) {
	switch op {
	case token.SUB:
		return "neg", true
	case token.NOT:
		return "not", true
	}

	return "", false
}
