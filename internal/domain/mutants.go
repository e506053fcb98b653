package domain

import (
	"fmt"

	m "overdub.dev/pkg/overdub/internal/model"
)

// Callee families for mutant planning. Every member of a family is an
// alternate for every other member, mirroring operator-substitution
// mutation testing.
var mutantFamilies = [][]string{
	{"lt", "le", "gt", "ge", "eq", "ne"},
	{"add", "sub", "mul", "div", "mod"},
	{"and", "or"},
}

// Alternates returns the alternate callees for original, in family
// order. Callees outside every family have no alternates.
func Alternates(original string) []string {
	for _, family := range mutantFamilies {
		if !contains(family, original) {
			continue
		}

		var alternatives []string

		for _, name := range family {
			if name != original {
				alternatives = append(alternatives, name)
			}
		}

		return alternatives
	}

	return nil
}

// PlanMutants produces one mutant per (site, alternate) pair for every
// enumerated call site whose callee has alternates. Sites without
// alternates contribute nothing.
func PlanMutants(sites []m.SiteInfo) []m.Mutant {
	mutants := make([]m.Mutant, 0)

	for _, site := range sites {
		for _, alt := range Alternates(site.Callee) {
			mutants = append(mutants, m.Mutant{
				ID:        fmt.Sprintf("%d:%s->%s", site.ID, site.Callee, alt),
				Site:      site.ID,
				Callee:    site.Callee,
				Alternate: alt,
			})
		}
	}

	return mutants
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}

	return false
}
