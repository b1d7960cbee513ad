package driving

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// ReportService provides read access to persisted analysis reports.
type ReportService interface {
	// Get retrieves a report by ID.
	Get(ctx context.Context, id string) (*domain.Report, error)

	// List returns report summaries, newest first.
	List(ctx context.Context) ([]domain.ReportSummary, error)
}
