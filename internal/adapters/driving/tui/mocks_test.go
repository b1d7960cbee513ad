package tui

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

type mockReportService struct {
	reports   map[string]*domain.Report
	summaries []domain.ReportSummary
	listErr   error
	listCalls int
}

func (m *mockReportService) Get(_ context.Context, id string) (*domain.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockReportService) List(_ context.Context) ([]domain.ReportSummary, error) {
	m.listCalls++
	return m.summaries, m.listErr
}
