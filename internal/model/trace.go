package model

// TraceKind tags an entry of a call trace log.
type TraceKind string

const (
	// TraceEntry records that an instrumented function was entered.
	TraceEntry TraceKind = "entry"
	// TraceCall records a completed call at a call site.
	TraceCall TraceKind = "call"
)

// TraceEvent is one entry of a call trace observer's append-only log.
// Entry events carry Fn and BlockCount; call events carry Site, Callee,
// Args and Result.
type TraceEvent struct {
	Kind       TraceKind
	Fn         string
	BlockCount int
	Site       CallSiteID
	Callee     string
	Args       []Value
	Result     Value
}
