package mcp

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	report *domain.Report
	err    error
	got    domain.AnalysisRequest
}

func (m *mockAnalysisService) Analyse(_ context.Context, req domain.AnalysisRequest) (*domain.Report, error) {
	m.got = req
	return m.report, m.err
}

// mockReportService is a mock implementation of driving.ReportService.
type mockReportService struct {
	reports   map[string]*domain.Report
	summaries []domain.ReportSummary
	err       error
}

func (m *mockReportService) Get(_ context.Context, id string) (*domain.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockReportService) List(_ context.Context) ([]domain.ReportSummary, error) {
	return m.summaries, m.err
}

func newTestServer(analysis *mockAnalysisService, reports *mockReportService) (*Server, error) {
	return NewServer(&Ports{Analysis: analysis, Reports: reports})
}
