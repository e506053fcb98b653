package observers

import (
	m "overdub.dev/pkg/overdub/internal/model"
)

// CallTrace records an ordered log of function entries and completed
// calls. It observes only; interception is left at the default
// pass-through.
type CallTrace struct {
	Nop
	events []m.TraceEvent
}

// NewCallTrace creates an empty call trace observer.
func NewCallTrace() *CallTrace {
	return &CallTrace{}
}

// EnterFunction appends an entry event.
func (t *CallTrace) EnterFunction(name string, blockCount int) error {
	t.events = append(t.events, m.TraceEvent{
		Kind:       m.TraceEntry,
		Fn:         name,
		BlockCount: blockCount,
	})

	return nil
}

// PostHook appends a call event carrying the call-site id, the callee
// identity, the arguments and the final result.
func (t *CallTrace) PostHook(site m.CallSiteID, result m.Value, callee m.Func, args []m.Value) {
	// Copy the arguments: the log must stay stable after the invoker
	// reuses its scratch slices.
	captured := make([]m.Value, len(args))
	copy(captured, args)

	t.events = append(t.events, m.TraceEvent{
		Kind:   m.TraceCall,
		Site:   site,
		Callee: callee.Name,
		Args:   captured,
		Result: result,
	})
}

// Events returns a copy of the log in append order.
func (t *CallTrace) Events() []m.TraceEvent {
	events := make([]m.TraceEvent, len(t.events))
	copy(events, t.events)

	return events
}

// Len returns the number of logged events.
func (t *CallTrace) Len() int {
	return len(t.events)
}

var _ Observer = (*CallTrace)(nil)
