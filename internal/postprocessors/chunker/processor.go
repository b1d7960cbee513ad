// Package chunker provides a boundary-aware text chunking processor.
package chunker

import (
	"context"
	"iter"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// Ensure Processor implements the PostProcessor interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// separators are tried in order when choosing where a chunk ends.
var separators = []string{"\n\n", "\n", ". ", " "}

// Processor splits text into overlapping windows that prefer to end on
// paragraph, line, sentence or word boundaries.
// Sizes are counted in runes.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunks returns the chunks of text in order.
// The sequence is lazy and restartable: every range re-walks text.
// Whitespace-only windows are never yielded.
func (p *Processor) Chunks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		n := len(runes)
		start := 0

		for start < n {
			end := p.cut(runes, start)

			if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
				if !yield(chunk) {
					return
				}
			}

			if end >= n {
				return
			}
			start = p.nextStart(runes, start, end)
		}
	}
}

// Split collects the chunks of text into a slice.
func (p *Processor) Split(text string) []string {
	var out []string
	for chunk := range p.Chunks(text) {
		out = append(out, chunk)
	}
	return out
}

// cut returns the exclusive end of the window beginning at start.
func (p *Processor) cut(runes []rune, start int) int {
	limit := start + p.chunkSize
	if limit >= len(runes) {
		return len(runes)
	}

	// A boundary must leave the window longer than the overlap so the
	// next window always starts further on.
	minEnd := start + p.overlap + 1
	window := string(runes[start:limit])

	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		end := start + len([]rune(window[:idx])) + len([]rune(sep))
		if end >= minEnd {
			return end
		}
	}

	return limit
}

// nextStart steps back by the overlap from end, then forward to the
// start of a word so the next window does not open mid-word.
func (p *Processor) nextStart(runes []rune, start, end int) int {
	next := end - p.overlap
	if next <= start {
		next = start + 1
	}
	if next == end || next == 0 {
		return next
	}

	if isSpace(runes[next-1]) {
		return next
	}
	for i := next; i < end; i++ {
		if isSpace(runes[i]) {
			return i + 1
		}
	}
	return next
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// Process splits the document's full text into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	text := doc.FullText()
	if text == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	var chunks []domain.Chunk
	position := 0

	for content := range p.Chunks(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunks = append(chunks, domain.Chunk{
			ID:           uuid.New().String(),
			DocumentName: doc.Name,
			Position:     position,
			Content:      content,
		})
		position++
	}

	return chunks, nil
}
