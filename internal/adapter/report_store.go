package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	m "overdub.dev/pkg/overdub/internal/model"
	"overdub.dev/pkg/overdub/pkg"
)

const reportsFileName = "reports.gob"

// ReportStore persists mutation run reports between the mutate and view
// commands.
type ReportStore interface {
	SaveReports(ctx context.Context, dir m.Path, reports []m.RunReport) error
	LoadReports(ctx context.Context, dir m.Path) ([]m.RunReport, error)
}

type localReportStore struct{}

// NewLocalReportStore creates a report store backed by a gob log on the
// local filesystem.
func NewLocalReportStore() ReportStore {
	return &localReportStore{}
}

// SaveReports writes all reports to dir, creating it if needed. A
// previous report set in the same directory is replaced.
func (s *localReportStore) SaveReports(ctx context.Context, dir m.Path, reports []m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir == "" {
		return fmt.Errorf("reports directory not set")
	}

	if err := os.MkdirAll(string(dir), 0o755); err != nil {
		return fmt.Errorf("create reports dir %s: %w", dir, err)
	}

	log, err := pkg.CreateGobLog[m.RunReport](filepath.Join(string(dir), reportsFileName))
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	for _, report := range reports {
		if err := log.Append(report); err != nil {
			return err
		}
	}

	return log.Close()
}

// LoadReports reads every report saved in dir.
func (s *localReportStore) LoadReports(ctx context.Context, dir m.Path) ([]m.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log, err := pkg.OpenGobLog[m.RunReport](filepath.Join(string(dir), reportsFileName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = log.Close() }()

	reports := make([]m.RunReport, 0, log.Len())

	err = log.Range(func(_ uint64, report m.RunReport) error {
		reports = append(reports, report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}
