package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// Ensure RetrievalService implements the interface.
var _ driven.Retriever = (*RetrievalService)(nil)

// RetrievalService answers similarity queries against the regulation index
// by embedding the query text. It is read-only and safe for concurrent use.
type RetrievalService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetrievalService creates a retriever over index.
func NewRetrievalService(embedder driven.EmbeddingService, index driven.VectorIndex) *RetrievalService {
	return &RetrievalService{embedder: embedder, index: index}
}

// Retrieve returns up to k passages most similar to text.
func (r *RetrievalService) Retrieve(ctx context.Context, text string, k int) ([]domain.Passage, error) {
	if r.embedder == nil || r.index == nil {
		return nil, domain.ErrRetrievalUnavailable
	}
	if k <= 0 {
		k = DefaultTopK
	}

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	passages, err := r.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return passages, nil
}
