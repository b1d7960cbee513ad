// Package dedupe drops repeated chunk text within a document.
package dedupe

import (
	"context"
	"strings"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// Ensure Processor implements the PostProcessor interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor removes chunks whose whitespace-normalised content already
// appeared earlier in the same document, such as repeated headers and
// footers. Positions are renumbered to stay contiguous.
type Processor struct{}

// New creates a dedupe processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "dedupe"
}

// Process filters duplicate chunks, keeping the first occurrence.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	seen := make(map[string]struct{}, len(chunks))
	out := make([]domain.Chunk, 0, len(chunks))

	for _, c := range chunks {
		key := strings.ToLower(strings.Join(strings.Fields(c.Content), " "))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		c.Position = len(out)
		out = append(out, c)
	}

	return out, nil
}
