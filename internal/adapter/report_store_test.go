package adapter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	m "overdub.dev/pkg/overdub/internal/model"
)

func sampleReports() []m.RunReport {
	return []m.RunReport{
		{
			Program: "classify",
			Source:  "examples/classify.yaml",
			Blocks:  3,
			Sites:   4,
			Results: []m.SiteResult{
				{Mutant: m.Mutant{ID: "2:lt->gt", Site: 2, Callee: "lt", Alternate: "gt"}, Status: m.Killed, Detail: "test 1: got -1, want 5"},
				{Mutant: m.Mutant{ID: "2:lt->ne", Site: 2, Callee: "lt", Alternate: "ne"}, Status: m.Survived},
			},
		},
		{
			Program: "countdown",
			Source:  "examples/countdown.yaml",
			Blocks:  4,
			Sites:   4,
			Results: []m.SiteResult{
				{Mutant: m.Mutant{ID: "1:gt->lt", Site: 1, Callee: "gt", Alternate: "lt"}, Status: m.Killed},
			},
		},
	}
}

func TestReportStore_Roundtrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	store := NewLocalReportStore()
	ctx := context.Background()

	require.NoError(t, store.SaveReports(ctx, m.Path(dir), sampleReports()))

	loaded, err := store.LoadReports(ctx, m.Path(dir))
	require.NoError(t, err)
	require.Equal(t, sampleReports(), loaded)
}

func TestReportStore_SaveOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	store := NewLocalReportStore()
	ctx := context.Background()

	require.NoError(t, store.SaveReports(ctx, m.Path(dir), sampleReports()))
	require.NoError(t, store.SaveReports(ctx, m.Path(dir), sampleReports()[:1]))

	loaded, err := store.LoadReports(ctx, m.Path(dir))
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "classify", loaded[0].Program)
}

func TestReportStore_LoadMissingDir(t *testing.T) {
	store := NewLocalReportStore()

	_, err := store.LoadReports(context.Background(), m.Path(filepath.Join(t.TempDir(), "absent")))
	require.Error(t, err)
}
