// Package postprocessors turns parsed knowledge-base files into passages.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// Ensure Pipeline implements the PostProcessorPipeline interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs post-processors over one document in a fixed order.
// The first stage receives nil chunks and creates them.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline running stages in the given order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process runs doc through every stage. Positions are renumbered after the
// last stage so they stay dense when a stage drops chunks.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, errors.New("postprocessors: nil document")
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", stage.Name(), doc.Name, err)
		}
		chunks = next
	}

	for i := range chunks {
		chunks[i].Position = i
	}
	return chunks, nil
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
