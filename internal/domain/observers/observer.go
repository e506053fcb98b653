// Package observers defines the capability contract driven by
// instrumented programs and the concrete observers built on it:
// coverage counting, call tracing and the two mutation controllers.
package observers

import (
	m "overdub.dev/pkg/overdub/internal/model"
)

// Observer is the five-hook capability contract. The instrumentation
// layer never inspects an observer's internals; it only invokes these
// methods at the defined program points.
//
// A single observer instance may be reused across sequential invocations
// but has no internal synchronization: concurrent invocations must be
// serialized by the caller or given separate instances.
type Observer interface {
	// EnterFunction runs once per invocation, before any block. A
	// non-nil error is a configuration error and aborts the invocation.
	EnterFunction(name string, blockCount int) error

	// EnterBlock runs every time block index is entered, including loop
	// re-entries.
	EnterBlock(index int)

	// PreHook runs immediately before call site site executes. It is
	// evaluated for side effect only.
	PreHook(site m.CallSiteID, callee m.Func, args []m.Value)

	// InterceptCall runs in place of the direct call and returns the
	// value used as the call's result. The default behavior invokes
	// callee unmodified.
	InterceptCall(site m.CallSiteID, callee m.Func, args []m.Value) (m.Value, error)

	// PostHook runs immediately after the call, receiving the final
	// result even when InterceptCall substituted a different callee.
	PostHook(site m.CallSiteID, result m.Value, callee m.Func, args []m.Value)
}

// Controller is an observer whose InterceptCall can be configured to
// substitute alternate callees at chosen call sites. These are the only
// state-mutating entry points exposed to a mutation testing harness.
type Controller interface {
	Observer

	Set(site m.CallSiteID, callee string, alt m.Func) error
	Clear(site m.CallSiteID, callee string) error
	IsMutated(site m.CallSiteID, callee string) bool
}

// Nop implements Observer with the harmless defaults: no state is
// touched and InterceptCall invokes the callee unmodified. Embed it to
// implement only the hooks an observer cares about.
type Nop struct{}

// EnterFunction implements Observer.
func (Nop) EnterFunction(string, int) error { return nil }

// EnterBlock implements Observer.
func (Nop) EnterBlock(int) {}

// PreHook implements Observer.
func (Nop) PreHook(m.CallSiteID, m.Func, []m.Value) {}

// InterceptCall implements Observer by invoking the callee unmodified.
func (Nop) InterceptCall(_ m.CallSiteID, callee m.Func, args []m.Value) (m.Value, error) {
	return callee.Call(args...)
}

// PostHook implements Observer.
func (Nop) PostHook(m.CallSiteID, m.Value, m.Func, []m.Value) {}
