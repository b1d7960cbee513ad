package driven

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// ReportStore persists analysis reports.
type ReportStore interface {
	// Save stores a report. Reports are immutable; saving an existing ID replaces it.
	Save(ctx context.Context, report *domain.Report) error

	// Get retrieves a report by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Report, error)

	// List returns report summaries, newest first.
	List(ctx context.Context) ([]domain.ReportSummary, error)
}
