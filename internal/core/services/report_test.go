package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

func TestReportService_Get(t *testing.T) {
	store := newMockReportStore()
	store.reports["r1"] = &domain.Report{ID: "r1", Process: "Incorporation"}
	svc := NewReportService(store)

	report, err := svc.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Incorporation", report.Process)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportService_ListNewestFirst(t *testing.T) {
	store := newMockReportStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.reports["old"] = &domain.Report{ID: "old", CreatedAt: base, IssuesFound: domain.NoIssues()}
	store.reports["new"] = &domain.Report{ID: "new", CreatedAt: base.Add(time.Hour), IssuesFound: domain.NoIssues()}

	list, err := NewReportService(store).List(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}
