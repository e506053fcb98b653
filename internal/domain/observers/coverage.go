package observers

import "fmt"

// Coverage counts basic-block executions for one instrumented program.
// Counters accumulate across invocations, so the ratio is non-decreasing
// for the lifetime of the instance.
type Coverage struct {
	Nop
	counts []uint64
}

// NewCoverage creates a coverage observer sized for blockCount blocks.
func NewCoverage(blockCount int) *Coverage {
	if blockCount < 0 {
		blockCount = 0
	}

	return &Coverage{counts: make([]uint64, blockCount)}
}

// EnterFunction validates that the program's declared block count
// matches the size this observer was constructed with.
func (c *Coverage) EnterFunction(name string, blockCount int) error {
	if blockCount != len(c.counts) {
		return fmt.Errorf("coverage observer sized for %d blocks, program %q declares %d", len(c.counts), name, blockCount)
	}

	return nil
}

// EnterBlock increments the counter for block index.
func (c *Coverage) EnterBlock(index int) {
	if index < 1 || index > len(c.counts) {
		return
	}

	c.counts[index-1]++
}

// Ratio returns executed blocks over total blocks, in [0.0, 1.0].
// It is 0.0 for an observer sized for zero blocks.
func (c *Coverage) Ratio() float64 {
	if len(c.counts) == 0 {
		return 0.0
	}

	executed := 0

	for _, n := range c.counts {
		if n > 0 {
			executed++
		}
	}

	return float64(executed) / float64(len(c.counts))
}

// Counts returns a copy of the per-block execution counters.
func (c *Coverage) Counts() []uint64 {
	out := make([]uint64, len(c.counts))
	copy(out, c.counts)

	return out
}

var _ Observer = (*Coverage)(nil)
