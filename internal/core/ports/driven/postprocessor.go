package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// PostProcessor is one stage of knowledge-base passage preparation.
// The first stage is handed nil chunks and creates them from doc; each
// later stage rewrites the chunks it receives.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs a fixed sequence of stages over one document.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}

// TextSplitter windows analysis text into overlapping chunks. The sequence
// is lazy and can be ranged over more than once.
type TextSplitter interface {
	Chunks(text string) iter.Seq[string]
}
