package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	m "overdub.dev/pkg/overdub/internal/model"
)

func TestMutationScore(t *testing.T) {
	reports := []m.RunReport{
		{Results: []m.SiteResult{
			{Status: m.Killed},
			{Status: m.Survived},
			{Status: m.Killed},
		}},
		{Results: []m.SiteResult{
			{Status: m.Survived},
			{Status: m.Skipped},
			{Status: m.Error},
		}},
	}

	require.Equal(t, 0.5, MutationScore(reports))
}

func TestMutationScore_EmptyIsPerfect(t *testing.T) {
	require.Equal(t, 1.0, MutationScore(nil))
	require.Equal(t, 1.0, MutationScore([]m.RunReport{{}}))
}

func TestMutationScore_OnlySkippedAndErrored(t *testing.T) {
	reports := []m.RunReport{
		{Results: []m.SiteResult{{Status: m.Skipped}, {Status: m.Error}}},
	}

	require.Equal(t, 1.0, MutationScore(reports))
}
