package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

func TestRetrievalService_Retrieve(t *testing.T) {
	index := newMockIndex()
	index.bySource["law.txt"] = []domain.Chunk{
		{ID: "1", Content: "one"}, {ID: "2", Content: "two"}, {ID: "3", Content: "three"},
	}
	r := NewRetrievalService(&mockEmbedder{}, index)

	passages, err := r.Retrieve(context.Background(), "query", 2)

	require.NoError(t, err)
	assert.Len(t, passages, 2)
	assert.Equal(t, 2, index.lastK)
}

func TestRetrievalService_DefaultK(t *testing.T) {
	index := newMockIndex()
	r := NewRetrievalService(&mockEmbedder{}, index)

	_, err := r.Retrieve(context.Background(), "query", 0)

	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, index.lastK)
}

func TestRetrievalService_Errors(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		_, err := NewRetrievalService(nil, newMockIndex()).Retrieve(context.Background(), "q", 1)
		assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
	})

	t.Run("embed failure", func(t *testing.T) {
		embedErr := errors.New("embedder down")
		_, err := NewRetrievalService(&mockEmbedder{err: embedErr}, newMockIndex()).Retrieve(context.Background(), "q", 1)
		assert.ErrorIs(t, err, embedErr)
	})

	t.Run("search failure", func(t *testing.T) {
		index := newMockIndex()
		index.searchErr = errors.New("index corrupt")
		_, err := NewRetrievalService(&mockEmbedder{}, index).Retrieve(context.Background(), "q", 1)
		assert.ErrorIs(t, err, index.searchErr)
	})
}
