package domain

import (
	"errors"
	"fmt"

	m "overdub.dev/pkg/overdub/internal/model"
)

// ErrDivisionByZero is returned by the div and mod builtins.
var ErrDivisionByZero = errors.New("division by zero")

// Builtins returns a fresh function table with the standard callees.
// Each call constructs a new table: tables are caller-owned values and
// callers that want shared state must share explicitly.
func Builtins() m.FuncTable {
	table := make(m.FuncTable)

	table.Register(m.Func{Name: "delay", Call: func(args ...m.Value) (m.Value, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("delay takes no arguments, got %d", len(args))
		}

		return nil, nil
	}})

	registerCompare(table, "lt", func(a, b int64) bool { return a < b })
	registerCompare(table, "le", func(a, b int64) bool { return a <= b })
	registerCompare(table, "gt", func(a, b int64) bool { return a > b })
	registerCompare(table, "ge", func(a, b int64) bool { return a >= b })
	registerCompare(table, "eq", func(a, b int64) bool { return a == b })
	registerCompare(table, "ne", func(a, b int64) bool { return a != b })

	registerArith(table, "add", func(a, b int64) (int64, error) { return a + b, nil })
	registerArith(table, "sub", func(a, b int64) (int64, error) { return a - b, nil })
	registerArith(table, "mul", func(a, b int64) (int64, error) { return a * b, nil })
	registerArith(table, "div", func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, ErrDivisionByZero
		}

		return a / b, nil
	})
	registerArith(table, "mod", func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, ErrDivisionByZero
		}

		return a % b, nil
	})

	registerLogic(table, "and", func(a, b bool) bool { return a && b })
	registerLogic(table, "or", func(a, b bool) bool { return a || b })

	table.Register(m.Func{Name: "not", Call: func(args ...m.Value) (m.Value, error) {
		b, err := oneBool("not", args)
		if err != nil {
			return nil, err
		}

		return !b, nil
	}})

	table.Register(m.Func{Name: "neg", Call: func(args ...m.Value) (m.Value, error) {
		n, err := oneInt("neg", args)
		if err != nil {
			return nil, err
		}

		return -n, nil
	}})

	return table
}

func registerCompare(table m.FuncTable, name string, op func(a, b int64) bool) {
	table.Register(m.Func{Name: name, Call: func(args ...m.Value) (m.Value, error) {
		a, b, err := twoInts(name, args)
		if err != nil {
			return nil, err
		}

		return op(a, b), nil
	}})
}

func registerArith(table m.FuncTable, name string, op func(a, b int64) (int64, error)) {
	table.Register(m.Func{Name: name, Call: func(args ...m.Value) (m.Value, error) {
		a, b, err := twoInts(name, args)
		if err != nil {
			return nil, err
		}

		return op(a, b)
	}})
}

func registerLogic(table m.FuncTable, name string, op func(a, b bool) bool) {
	table.Register(m.Func{Name: name, Call: func(args ...m.Value) (m.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s takes 2 arguments, got %d", name, len(args))
		}

		a, err := asBool(name, args[0])
		if err != nil {
			return nil, err
		}

		b, err := asBool(name, args[1])
		if err != nil {
			return nil, err
		}

		return op(a, b), nil
	}})
}

func twoInts(name string, args []m.Value) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%s takes 2 arguments, got %d", name, len(args))
	}

	a, err := asInt(name, args[0])
	if err != nil {
		return 0, 0, err
	}

	b, err := asInt(name, args[1])
	if err != nil {
		return 0, 0, err
	}

	return a, b, nil
}

func oneInt(name string, args []m.Value) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s takes 1 argument, got %d", name, len(args))
	}

	return asInt(name, args[0])
}

func oneBool(name string, args []m.Value) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("%s takes 1 argument, got %d", name, len(args))
	}

	return asBool(name, args[0])
}

func asInt(name string, v m.Value) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	}

	return 0, fmt.Errorf("%s: argument is %T, want int", name, v)
}

func asBool(name string, v m.Value) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: argument is %T, want bool", name, v)
	}

	return b, nil
}
