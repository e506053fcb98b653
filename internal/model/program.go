// Package model defines the intermediate representation and the shared
// data types for program instrumentation.
package model

// Path represents a file system path.
type Path string

// CallSiteID identifies a call statement within one Program. IDs are
// assigned densely starting at 1, in block order and then statement
// order, and stay stable for the lifetime of the Program. The id, not
// the statement position, is the join key between the rewritten code
// and any observer's per-site state.
type CallSiteID int

// Program is an ordered sequence of basic blocks lowered from a single
// function. Block indexes are 1-based; block 1 is the entry block.
type Program struct {
	Name   string
	Params []string
	Blocks []*Block

	// Instrumented marks the rewritten form. An instrumented Program
	// carries an implicit leading observer parameter, realized by the
	// invoker signature.
	Instrumented bool

	// Source is the origin file, empty for programs built in memory.
	Source Path
}

// Block is a maximal straight-line sequence of statements owned by its
// Program. A well-formed block ends with exactly one terminator
// (Branch, Jump or Return) and contains no terminator before that.
type Block struct {
	Stmts []Statement
}

// Operand is either a variable reference or a literal value. A non-empty
// Var takes precedence over Lit.
type Operand struct {
	Var string
	Lit Value
}

// Ref returns an operand referencing the named variable.
func Ref(name string) Operand { return Operand{Var: name} }

// Lit returns a literal operand.
func Lit(v Value) Operand { return Operand{Lit: v} }

// IsRef reports whether the operand is a variable reference.
func (o Operand) IsRef() bool { return o.Var != "" }

// Statement is the tagged statement variant of the IR. Concrete
// statements are pointer structs so a statement keeps its identity while
// the instrumentation pass shifts positions around it.
type Statement interface {
	stmtNode()
}

// Call invokes Callee with Args and stores the result in Dest. An empty
// Dest discards the result. Only Call statements participate in
// instrumentation.
type Call struct {
	Dest   string
	Callee string
	Args   []Operand
}

// Assign copies Src into Dest.
type Assign struct {
	Dest string
	Src  Operand
}

// Branch transfers control to block Then when Cond is true, otherwise to
// block Else. Targets are 1-based block indexes.
type Branch struct {
	Cond Operand
	Then int
	Else int
}

// Jump unconditionally transfers control to block Target.
type Jump struct {
	Target int
}

// Return ends execution of the program, producing Src as its result.
type Return struct {
	Src Operand
}

// The statements below never appear in ingested programs; the
// instrumentation pass inserts them, and only the pass may.

// EnterFunc notifies the observer that the function is being entered.
// It is the first statement of the entry block of an instrumented
// Program. BlockCount is the number of basic blocks, used for coverage
// sizing, not call identity.
type EnterFunc struct {
	Name       string
	BlockCount int
}

// EnterBlock notifies the observer that block Index is being entered.
// It precedes every statement originally in that block.
type EnterBlock struct {
	Index int
}

// PreHook notifies the observer that call site Site is about to execute.
type PreHook struct {
	Site   CallSiteID
	Callee string
	Args   []Operand
}

// HookedCall is the rewritten form of a Call: the observer's intercept
// hook decides what actually executes and its result is stored in Dest.
type HookedCall struct {
	Site   CallSiteID
	Dest   string
	Callee string
	Args   []Operand
}

// PostHook notifies the observer that call site Site has executed,
// passing the just-computed result read from the Result variable.
type PostHook struct {
	Site   CallSiteID
	Result string
	Callee string
	Args   []Operand
}

func (*Call) stmtNode()       {}
func (*Assign) stmtNode()     {}
func (*Branch) stmtNode()     {}
func (*Jump) stmtNode()       {}
func (*Return) stmtNode()     {}
func (*EnterFunc) stmtNode()  {}
func (*EnterBlock) stmtNode() {}
func (*PreHook) stmtNode()    {}
func (*HookedCall) stmtNode() {}
func (*PostHook) stmtNode()   {}

// IsTerminator reports whether s ends a basic block.
func IsTerminator(s Statement) bool {
	switch s.(type) {
	case *Branch, *Jump, *Return:
		return true
	}

	return false
}

// IsHook reports whether s was inserted by the instrumentation pass.
func IsHook(s Statement) bool {
	switch s.(type) {
	case *EnterFunc, *EnterBlock, *PreHook, *HookedCall, *PostHook:
		return true
	}

	return false
}
