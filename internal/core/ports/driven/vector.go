package driven

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// VectorIndex stores knowledge-base passages with their embeddings and
// answers nearest-neighbour queries. Queries are read-only and safe to run
// concurrently.
type VectorIndex interface {
	// Add inserts or replaces passages. Each chunk must carry an embedding.
	Add(ctx context.Context, source string, chunks []domain.Chunk) error

	// DeleteSource removes every passage indexed from source.
	DeleteSource(ctx context.Context, source string) error

	// Search finds the k passages most similar to the query vector,
	// most similar first.
	Search(ctx context.Context, query []float32, k int) ([]domain.Passage, error)

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
