package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	m "overdub.dev/pkg/overdub/internal/model"
)

func TestAlternates(t *testing.T) {
	require.Equal(t, []string{"le", "gt", "ge", "eq", "ne"}, Alternates("lt"))
	require.Equal(t, []string{"sub", "mul", "div", "mod"}, Alternates("add"))
	require.Equal(t, []string{"or"}, Alternates("and"))
	require.Nil(t, Alternates("delay"))
	require.Nil(t, Alternates("unknown"))
}

func TestPlanMutants(t *testing.T) {
	_, sites, err := EnumerateCallSites(classifyProgram())
	require.NoError(t, err)

	mutants := PlanMutants(sites)

	// delay has no alternates; lt has 5, add and sub 4 each.
	require.Len(t, mutants, 13)

	ids := make(map[string]m.Mutant, len(mutants))
	for _, mutant := range mutants {
		ids[mutant.ID] = mutant
	}

	require.Len(t, ids, 13)
	require.Equal(t, m.Mutant{ID: "2:lt->gt", Site: 2, Callee: "lt", Alternate: "gt"}, ids["2:lt->gt"])
	require.Equal(t, m.Mutant{ID: "3:add->mul", Site: 3, Callee: "add", Alternate: "mul"}, ids["3:add->mul"])
}

func TestPlanMutants_NoSites(t *testing.T) {
	require.Empty(t, PlanMutants(nil))
	require.Empty(t, PlanMutants([]m.SiteInfo{{ID: 1, Block: 1, Callee: "delay"}}))
}
