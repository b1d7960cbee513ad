package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// stubStage returns fixed chunks, or passes its input through when chunks is nil.
type stubStage struct {
	name   string
	chunks []domain.Chunk
	err    error
	seen   []domain.Chunk
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	s.seen = chunks
	if s.err != nil {
		return nil, s.err
	}
	if s.chunks != nil {
		return s.chunks, nil
	}
	return chunks, nil
}

func regulation(paragraphs ...string) *domain.Document {
	doc := domain.NewDocument("regulation.txt", "", paragraphs)
	return &doc
}

func TestPipeline_NilDocument(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	assert.Error(t, err)
}

func TestPipeline_NoStages(t *testing.T) {
	chunks, err := NewPipeline().Process(context.Background(), regulation("Article 1"))

	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestPipeline_ChainsStages(t *testing.T) {
	first := &stubStage{name: "split", chunks: []domain.Chunk{{ID: "a", Content: "one"}}}
	second := &stubStage{name: "keep"}

	chunks, err := NewPipeline(first, second).Process(context.Background(), regulation("x"))

	require.NoError(t, err)
	assert.Nil(t, first.seen, "first stage creates the chunks")
	assert.Equal(t, first.chunks, second.seen)
	assert.Equal(t, []string{"split", "keep"}, NewPipeline(first, second).Stages())
	require.Len(t, chunks, 1)
	assert.Equal(t, "one", chunks[0].Content)
}

func TestPipeline_RenumbersPositions(t *testing.T) {
	sparse := &stubStage{name: "sparse", chunks: []domain.Chunk{
		{ID: "a", Position: 0}, {ID: "c", Position: 2}, {ID: "f", Position: 5},
	}}

	chunks, err := NewPipeline(sparse).Process(context.Background(), regulation("x"))

	require.NoError(t, err)
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
	}
}

func TestPipeline_StageError(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewPipeline(&stubStage{name: "broken", err: boom}).Process(context.Background(), regulation("x"))

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken on regulation.txt")
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stage := &stubStage{name: "never"}

	_, err := NewPipeline(stage).Process(ctx, regulation("x"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultPipeline_ChunksAndDedupes(t *testing.T) {
	p, err := NewDefaultRegistry().BuildPipeline([]string{"chunker", "dedupe"}, map[string]map[string]any{
		"chunker": {"chunk_size": 40, "overlap": 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chunker", "dedupe"}, p.Stages())

	doc := &domain.Document{
		Name:       "regulation.txt",
		Paragraphs: []string{"Section 1 applies to every company.\n", "Section 1 applies to every company."},
	}

	chunks, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Section 1 applies to every company.", chunks[0].Content)
}
