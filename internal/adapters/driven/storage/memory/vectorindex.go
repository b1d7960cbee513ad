package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/lexcheck/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
type VectorIndex struct {
	mu       sync.RWMutex
	bySource map[string]map[string]domain.Chunk
}

// NewVectorIndex creates an empty in-memory index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		bySource: make(map[string]map[string]domain.Chunk),
	}
}

// Add inserts or replaces passages from source.
func (v *VectorIndex) Add(_ context.Context, source string, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("passage %s from %s has no embedding", c.ID, source)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	passages, ok := v.bySource[source]
	if !ok {
		passages = make(map[string]domain.Chunk)
		v.bySource[source] = passages
	}
	for _, c := range chunks {
		passages[c.ID] = c
	}
	return nil
}

// DeleteSource removes every passage from source.
func (v *VectorIndex) DeleteSource(_ context.Context, source string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.bySource, source)
	return nil
}

// Search returns the k passages most similar to query. Sources are scanned
// in sorted order so ties resolve deterministically.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]domain.Passage, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	sources := make([]string, 0, len(v.bySource))
	for s := range v.bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	ranker := similarity.NewRanker(query, k)
	for _, source := range sources {
		chunks := v.bySource[source]
		ids := make([]string, 0, len(chunks))
		for id := range chunks {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			c := chunks[id]
			if len(c.Embedding) != len(query) {
				continue
			}
			ranker.Offer(domain.Passage{ID: c.ID, Source: source, Content: c.Content}, c.Embedding)
		}
	}
	return ranker.Results(), nil
}

// Count returns the number of stored passages.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	n := 0
	for _, passages := range v.bySource {
		n += len(passages)
	}
	return n, nil
}

// Close releases nothing.
func (v *VectorIndex) Close() error {
	return nil
}
