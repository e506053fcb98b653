package model

// Value is a dynamically typed runtime value. The builtin function table
// operates on int64 and bool; front ends normalize numbers to int64 on
// ingestion.
type Value any

// Func is a named callable. The name is the callee identity used in
// mutation-table keys: two Funcs with the same name are the same callee
// as far as interception is concerned.
type Func struct {
	Name string
	Call func(args ...Value) (Value, error)
}

// FuncTable resolves callee names for materialization. Tables are plain
// values owned by the caller; there is no process-wide registry of
// functions.
type FuncTable map[string]Func

// Resolve looks up a callee by name.
func (t FuncTable) Resolve(name string) (Func, bool) {
	f, ok := t[name]
	return f, ok
}

// Register adds or replaces a callee.
func (t FuncTable) Register(f Func) {
	t[f.Name] = f
}
