package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	m "overdub.dev/pkg/overdub/internal/model"
)

func callBuiltin(t *testing.T, name string, args ...m.Value) (m.Value, error) {
	t.Helper()

	f, ok := Builtins().Resolve(name)
	require.True(t, ok, "builtin %q not registered", name)

	return f.Call(args...)
}

func TestBuiltins_Comparisons(t *testing.T) {
	cases := []struct {
		name string
		a, b int64
		want bool
	}{
		{"lt", 2, 3, true},
		{"lt", 3, 3, false},
		{"le", 3, 3, true},
		{"gt", 3, 2, true},
		{"ge", 2, 3, false},
		{"eq", 7, 7, true},
		{"ne", 7, 7, false},
	}

	for _, tc := range cases {
		got, err := callBuiltin(t, tc.name, tc.a, tc.b)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s(%d, %d)", tc.name, tc.a, tc.b)
	}
}

func TestBuiltins_Arithmetic(t *testing.T) {
	cases := []struct {
		name string
		a, b int64
		want int64
	}{
		{"add", 2, 3, 5},
		{"sub", 2, 3, -1},
		{"mul", 2, 3, 6},
		{"div", 7, 2, 3},
		{"mod", 7, 2, 1},
	}

	for _, tc := range cases {
		got, err := callBuiltin(t, tc.name, tc.a, tc.b)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s(%d, %d)", tc.name, tc.a, tc.b)
	}
}

func TestBuiltins_DivisionByZero(t *testing.T) {
	_, err := callBuiltin(t, "div", int64(1), int64(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = callBuiltin(t, "mod", int64(1), int64(0))
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestBuiltins_Logic(t *testing.T) {
	got, err := callBuiltin(t, "and", true, false)
	require.NoError(t, err)
	require.Equal(t, false, got)

	got, err = callBuiltin(t, "or", true, false)
	require.NoError(t, err)
	require.Equal(t, true, got)

	got, err = callBuiltin(t, "not", false)
	require.NoError(t, err)
	require.Equal(t, true, got)
}

func TestBuiltins_NegAndDelay(t *testing.T) {
	got, err := callBuiltin(t, "neg", int64(4))
	require.NoError(t, err)
	require.Equal(t, int64(-4), got)

	got, err = callBuiltin(t, "delay")
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = callBuiltin(t, "delay", int64(1))
	require.Error(t, err)
}

func TestBuiltins_TypeMismatch(t *testing.T) {
	_, err := callBuiltin(t, "add", int64(1), true)
	require.Error(t, err)

	_, err = callBuiltin(t, "and", int64(1), true)
	require.Error(t, err)

	_, err = callBuiltin(t, "lt", int64(1))
	require.Error(t, err)
}

func TestBuiltins_AcceptsPlainInts(t *testing.T) {
	got, err := callBuiltin(t, "add", 2, 3)
	require.NoError(t, err)
	require.Equal(t, int64(5), got)
}

func TestBuiltins_TablesAreIndependent(t *testing.T) {
	first := Builtins()
	second := Builtins()

	first.Register(m.Func{Name: "extra", Call: func(...m.Value) (m.Value, error) { return nil, nil }})

	_, ok := second.Resolve("extra")
	require.False(t, ok)
}
