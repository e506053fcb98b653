package observers

import (
	m "overdub.dev/pkg/overdub/internal/model"
)

// MutationKey pairs a call-site id with the original callee name. The
// pair, not the id alone, keys the mutation table so that id reuse
// across unrelated programs sharing one controller cannot trigger a
// substitution on the wrong callee.
type MutationKey struct {
	Site   m.CallSiteID
	Callee string
}

// MapController substitutes alternate callees at configured call sites,
// keyed by (site, callee). Absence of an entry means the call runs
// unmodified. Lookup cost is one map access per intercepted call; the
// ArrayController is the constant-time variant.
type MapController struct {
	Nop
	table map[MutationKey]m.Func
}

// NewMapController creates a controller with an empty mutation table.
func NewMapController() *MapController {
	return &MapController{table: make(map[MutationKey]m.Func)}
}

// Set inserts or overwrites the substitution for (site, callee).
func (c *MapController) Set(site m.CallSiteID, callee string, alt m.Func) error {
	c.table[MutationKey{Site: site, Callee: callee}] = alt
	return nil
}

// Clear removes the substitution for (site, callee). Clearing a key that
// was never set is a no-op.
func (c *MapController) Clear(site m.CallSiteID, callee string) error {
	delete(c.table, MutationKey{Site: site, Callee: callee})
	return nil
}

// IsMutated reports whether a substitution is configured for
// (site, callee).
func (c *MapController) IsMutated(site m.CallSiteID, callee string) bool {
	_, ok := c.table[MutationKey{Site: site, Callee: callee}]
	return ok
}

// InterceptCall invokes the configured alternate with the original
// arguments when a substitution is present, otherwise the callee
// unmodified.
func (c *MapController) InterceptCall(site m.CallSiteID, callee m.Func, args []m.Value) (m.Value, error) {
	if alt, ok := c.table[MutationKey{Site: site, Callee: callee.Name}]; ok {
		return alt.Call(args...)
	}

	return callee.Call(args...)
}

var _ Controller = (*MapController)(nil)
