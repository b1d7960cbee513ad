package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// ReportService provides read access to stored reports.
type ReportService struct {
	store driven.ReportStore
}

// NewReportService creates a report service.
func NewReportService(store driven.ReportStore) *ReportService {
	return &ReportService{store: store}
}

// Get retrieves a report by ID.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.Report, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: report id is required", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// List returns report summaries, newest first.
func (s *ReportService) List(ctx context.Context) ([]domain.ReportSummary, error) {
	return s.store.List(ctx)
}
