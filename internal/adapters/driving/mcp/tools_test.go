package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

func TestHandleAnalyse(t *testing.T) {
	ctx := context.Background()

	t.Run("returns report fields", func(t *testing.T) {
		analysis := &mockAnalysisService{report: &domain.Report{
			ID:                "r-1",
			Process:           "Incorporation",
			DocumentsUploaded: []string{"aoa.docx"},
			RequiredDocuments: []string{"Articles of Association", "UBO Register"},
			MissingDocuments:  []string{"UBO Register"},
			IssuesFound: domain.IssuesOf([]domain.Issue{{
				Document: "aoa.docx", Section: "Governed by UAE law.", Issue: "wrong jurisdiction",
				Severity: domain.SeverityHigh, Suggestion: "use ADGM law",
			}}),
			OutputDir: "/tmp/out",
		}}
		server, err := newTestServer(analysis, &mockReportService{})
		require.NoError(t, err)

		_, out, err := server.handleAnalyse(ctx, nil, AnalyseInput{
			Paths:     []string{"/docs/aoa.docx"},
			OutputDir: "/tmp/out",
			Checklist: "/etc/checklist.json",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"/docs/aoa.docx"}, analysis.got.Paths)
		assert.Equal(t, "/etc/checklist.json", analysis.got.ChecklistPath)
		assert.Equal(t, "r-1", out.ReportID)
		assert.Equal(t, []string{"UBO Register"}, out.MissingDocuments)
		assert.False(t, out.NoIssues)
		require.Len(t, out.Issues, 1)
		assert.Equal(t, "wrong jurisdiction", out.Issues[0].Issue)
	})

	t.Run("no issues marker", func(t *testing.T) {
		analysis := &mockAnalysisService{report: &domain.Report{ID: "r-2", IssuesFound: domain.NoIssues()}}
		server, err := newTestServer(analysis, &mockReportService{})
		require.NoError(t, err)

		_, out, err := server.handleAnalyse(ctx, nil, AnalyseInput{Paths: []string{"a.txt"}})

		require.NoError(t, err)
		assert.True(t, out.NoIssues)
		assert.Empty(t, out.Issues)
	})

	t.Run("propagates errors", func(t *testing.T) {
		analysis := &mockAnalysisService{err: domain.ErrClassificationFailed}
		server, err := newTestServer(analysis, &mockReportService{})
		require.NoError(t, err)

		_, _, err = server.handleAnalyse(ctx, nil, AnalyseInput{Paths: []string{"a.txt"}})
		assert.ErrorIs(t, err, domain.ErrClassificationFailed)
	})
}

func TestHandleListReports(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var summaries []domain.ReportSummary
	for i := 0; i < 25; i++ {
		summaries = append(summaries, domain.ReportSummary{
			ID: fmt.Sprintf("r-%d", i), Process: "Incorporation", Documents: 2, CreatedAt: now,
		})
	}

	t.Run("applies default limit", func(t *testing.T) {
		server, err := newTestServer(&mockAnalysisService{}, &mockReportService{summaries: summaries})
		require.NoError(t, err)

		_, out, err := server.handleListReports(ctx, nil, ListReportsInput{})

		require.NoError(t, err)
		assert.Equal(t, defaultListLimit, out.Count)
		assert.Equal(t, "report://r-0", out.Reports[0].URI)
		assert.Equal(t, 2, out.Reports[0].Documents)
	})

	t.Run("respects explicit limit", func(t *testing.T) {
		server, err := newTestServer(&mockAnalysisService{}, &mockReportService{summaries: summaries})
		require.NoError(t, err)

		_, out, err := server.handleListReports(ctx, nil, ListReportsInput{Limit: 3})

		require.NoError(t, err)
		assert.Equal(t, 3, out.Count)
		assert.Len(t, out.Reports, 3)
	})

	t.Run("propagates errors", func(t *testing.T) {
		server, err := newTestServer(&mockAnalysisService{}, &mockReportService{err: errors.New("db closed")})
		require.NoError(t, err)

		_, _, err = server.handleListReports(ctx, nil, ListReportsInput{})
		assert.Error(t, err)
	})
}
