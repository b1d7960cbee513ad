package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

func TestReportStore_SaveGetList(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, &domain.Report{ID: "old", Process: "Incorporation", CreatedAt: base, IssuesFound: domain.NoIssues()}))
	require.NoError(t, store.Save(ctx, &domain.Report{ID: "new", Process: "Licensing", CreatedAt: base.Add(time.Minute), IssuesFound: domain.NoIssues()}))

	got, err := store.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "Incorporation", got.Process)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
}

func TestReportStore_GetNotFound(t *testing.T) {
	_, err := NewReportStore().Get(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportStore_StoresCopies(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()
	report := &domain.Report{ID: "r", Process: "Incorporation"}

	require.NoError(t, store.Save(ctx, report))
	report.Process = "changed"

	got, err := store.Get(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "Incorporation", got.Process)
}
