package model

// SiteInfo describes one call site discovered by enumeration.
type SiteInfo struct {
	ID     CallSiteID
	Block  int
	Callee string
}

// Mutant is one planned substitution: replace Callee with Alternate at
// call site Site.
type Mutant struct {
	ID        string
	Site      CallSiteID
	Callee    string
	Alternate string
}

// MutantStatus represents the outcome of testing a mutant.
type MutantStatus int

const (
	// Killed indicates the substitution was detected by the program's
	// test cases.
	Killed MutantStatus = iota
	// Survived indicates the substitution went undetected.
	Survived
	// Skipped indicates the mutant was not tested.
	Skipped
	// Error indicates the harness failed before the mutant could be
	// judged.
	Error
)

func (s MutantStatus) String() string {
	switch s {
	case Killed:
		return "killed"
	case Survived:
		return "survived"
	case Skipped:
		return "skipped"
	case Error:
		return "error"
	}

	return "unknown"
}

// SiteResult is the judged outcome of one mutant.
type SiteResult struct {
	Mutant Mutant
	Status MutantStatus
	Detail string
}

// RunReport aggregates the mutation results for a single program.
type RunReport struct {
	Program string
	Source  Path
	Blocks  int
	Sites   int
	Results []SiteResult
}

// TestCase is one declared invocation of a program together with its
// expected result.
type TestCase struct {
	Args []Value
	Want Value
}

// Unit pairs a program with the test cases declared alongside it.
type Unit struct {
	Program *Program
	Tests   []TestCase
}

// ProgramInfo summarizes a loaded program for listings.
type ProgramInfo struct {
	Name      string
	Source    Path
	Blocks    int
	CallSites int
	Tests     int
}
