package observers

import (
	"fmt"

	m "overdub.dev/pkg/overdub/internal/model"
)

// ArrayController is the constant-time mutation controller: one boolean
// and one alternate slot per call-site id, up to a fixed bound chosen at
// construction.
//
// Unlike MapController it drops the callee component of the mutation
// key, which is only safe when one instance is scoped to exactly one
// instrumented program. Sharing an ArrayController across programs with
// overlapping id spaces is a contract violation, not a detected error.
type ArrayController struct {
	Nop
	active []bool
	alt    []m.Func
}

// NewArrayController creates a controller for call-site ids 1..sites.
func NewArrayController(sites int) *ArrayController {
	if sites < 0 {
		sites = 0
	}

	return &ArrayController{
		active: make([]bool, sites),
		alt:    make([]m.Func, sites),
	}
}

// Bound returns the highest call-site id this controller can hold.
func (c *ArrayController) Bound() int {
	return len(c.active)
}

// Set configures the substitution for site. The callee name is accepted
// for interface parity and ignored.
func (c *ArrayController) Set(site m.CallSiteID, _ string, alt m.Func) error {
	if err := c.check(site); err != nil {
		return err
	}

	c.active[site-1] = true
	c.alt[site-1] = alt

	return nil
}

// Clear removes the substitution for site. Clearing a site that was
// never set is a no-op.
func (c *ArrayController) Clear(site m.CallSiteID, _ string) error {
	if err := c.check(site); err != nil {
		return err
	}

	c.active[site-1] = false
	c.alt[site-1] = m.Func{}

	return nil
}

// IsMutated reports whether site has an active substitution. Out-of-range
// ids report false.
func (c *ArrayController) IsMutated(site m.CallSiteID, _ string) bool {
	if site < 1 || int(site) > len(c.active) {
		return false
	}

	return c.active[site-1]
}

// InterceptCall dispatches to the alternate when site is active, else
// invokes the callee unmodified. Sites beyond the bound pass through.
func (c *ArrayController) InterceptCall(site m.CallSiteID, callee m.Func, args []m.Value) (m.Value, error) {
	if site >= 1 && int(site) <= len(c.active) && c.active[site-1] {
		return c.alt[site-1].Call(args...)
	}

	return callee.Call(args...)
}

func (c *ArrayController) check(site m.CallSiteID) error {
	if site < 1 || int(site) > len(c.active) {
		return fmt.Errorf("call-site id %d outside controller bound %d", site, len(c.active))
	}

	return nil
}

var _ Controller = (*ArrayController)(nil)
