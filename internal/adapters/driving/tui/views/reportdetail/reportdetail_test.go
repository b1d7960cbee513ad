package reportdetail

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

type stubReports struct {
	report *domain.Report
	err    error
}

func (s *stubReports) Get(_ context.Context, _ string) (*domain.Report, error) {
	return s.report, s.err
}

func (s *stubReports) List(_ context.Context) ([]domain.ReportSummary, error) {
	return nil, nil
}

func testReport() *domain.Report {
	return &domain.Report{
		ID:                "r-1",
		Process:           "Company Incorporation",
		DocumentsUploaded: []string{"articles.docx", "resolution.pdf"},
		RequiredDocuments: []string{"Articles of Association"},
		IssuesFound: domain.IssuesOf([]domain.Issue{
			{Document: "resolution.pdf", Issue: "unsigned", Severity: domain.SeverityMedium},
			{Document: "articles.docx", Section: "Clause 4", Issue: "wrong court", Severity: domain.SeverityHigh, Suggestion: "Use ADGM"},
		}),
		AnnotationFailures: map[string]string{"resolution.pdf": "no text layer"},
		CreatedAt:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	out := Render(testReport())

	assert.Contains(t, out, "Process: Company Incorporation")
	assert.Contains(t, out, "  - articles.docx")
	assert.Contains(t, out, "Missing documents:\n  (none)")
	assert.Contains(t, out, "  [High] wrong court\n    Section: Clause 4\n    Suggestion: Use ADGM")
	assert.Contains(t, out, "resolution.pdf: no text layer")
	assert.Less(t, strings.Index(out, "articles.docx\n  [High]"), strings.Index(out, "resolution.pdf\n  [Medium]"),
		"issues are grouped by document in name order")
}

func TestRender_NoIssues(t *testing.T) {
	r := testReport()
	r.IssuesFound = domain.NoIssues()
	r.AnnotationFailures = nil

	out := Render(r)

	assert.Contains(t, out, "Issues:\n  No issues")
	assert.NotContains(t, out, "Annotation failures")
}

func TestView_LoadAndRender(t *testing.T) {
	v := NewView(nil, &stubReports{report: testReport()})
	v.SetDimensions(100, 40)

	cmd := v.Load(context.Background(), "r-1")
	assert.Contains(t, v.View(), "Loading report...")

	v.Update(cmd())

	require.NotNil(t, v.Report())
	assert.NoError(t, v.Err())
	assert.Contains(t, v.View(), "Company Incorporation")
}

func TestView_LoadError(t *testing.T) {
	v := NewView(nil, &stubReports{err: domain.ErrNotFound})

	cmd := v.Load(context.Background(), "missing")
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrNotFound)
	assert.Contains(t, v.View(), "Error: not found")
}

func TestView_Scroll(t *testing.T) {
	r := testReport()
	for i := range 40 {
		r.DocumentsUploaded = append(r.DocumentsUploaded, fmt.Sprintf("doc-%02d.txt", i))
	}
	v := NewView(nil, &stubReports{report: r})
	v.SetDimensions(80, 16)
	v.Update(v.Load(context.Background(), "r-1")())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, v.ScrollOffset())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	bottom := v.ScrollOffset()
	assert.Positive(t, bottom)
	assert.Contains(t, v.View(), "[100%]")

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, bottom, v.ScrollOffset(), "cannot scroll past the end")

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Equal(t, 0, v.ScrollOffset())
}

func TestView_EscReturnsToList(t *testing.T) {
	v := NewView(nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewReports}, cmd())
}
