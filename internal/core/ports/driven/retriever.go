package driven

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// Retriever returns the regulation passages most similar to a text.
// It is backed by a prebuilt similarity index.
type Retriever interface {
	// Retrieve returns up to k passages, most similar first.
	Retrieve(ctx context.Context, text string, k int) ([]domain.Passage, error)
}
