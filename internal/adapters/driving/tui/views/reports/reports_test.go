package reports

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

type stubReports struct {
	summaries []domain.ReportSummary
	err       error
}

func (s *stubReports) Get(_ context.Context, _ string) (*domain.Report, error) {
	return nil, domain.ErrNotFound
}

func (s *stubReports) List(_ context.Context) ([]domain.ReportSummary, error) {
	return s.summaries, s.err
}

func loaded(t *testing.T, svc *stubReports) *View {
	t.Helper()
	v := NewView(context.Background(), nil, svc)
	v.SetDimensions(100, 30)
	cmd := v.Init()
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())
	v.Update(cmd())
	return v
}

func TestView_Loads(t *testing.T) {
	v := loaded(t, &stubReports{summaries: []domain.ReportSummary{
		{ID: "a", Process: "Company Incorporation"},
		{ID: "b", Process: "Employment Contract"},
	}})

	assert.False(t, v.Loading())
	assert.Equal(t, 2, v.Count())
	assert.Contains(t, v.View(), "Employment Contract")
}

func TestView_LoadError(t *testing.T) {
	v := loaded(t, &stubReports{err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Contains(t, v.View(), "Error: boom")
}

func TestView_EnterSelectsReport(t *testing.T) {
	v := loaded(t, &stubReports{summaries: []domain.ReportSummary{{ID: "a"}, {ID: "b"}}})

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ReportSelected{ID: "b"}, cmd())
}

func TestView_EnterOnEmptyListDoesNothing(t *testing.T) {
	v := loaded(t, &stubReports{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Nil(t, v.Selected())
}

func TestView_QuitKey(t *testing.T) {
	v := loaded(t, &stubReports{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.Quit{}, cmd())
}
