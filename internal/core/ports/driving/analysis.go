package driving

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// AnalysisService runs the compliance analysis pipeline over a document set.
type AnalysisService interface {
	// Analyse classifies, reconciles and scans the requested documents,
	// writes the annotated output set and returns the persisted report.
	Analyse(ctx context.Context, req domain.AnalysisRequest) (*domain.Report, error)
}
