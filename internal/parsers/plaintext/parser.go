// Package plaintext reads and annotates plain text documents. A paragraph
// is a run of non-blank lines; blank lines separate paragraphs.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/fsutil"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser handles plain text documents.
type Parser struct{}

// New creates a new plain text parser.
func New() *Parser {
	return &Parser{}
}

// SupportedExtensions returns the extensions this parser handles.
func (p *Parser) SupportedExtensions() []string {
	return []string{".txt"}
}

// Parse returns the paragraphs of the file.
func (p *Parser) Parse(ctx context.Context, path string) ([]string, error) {
	lines, err := readLines(ctx, path)
	if err != nil {
		return nil, err
	}

	var paragraphs []string
	for _, b := range blocks(lines) {
		paragraphs = append(paragraphs, strings.Join(lines[b.start:b.end], "\n"))
	}
	return paragraphs, nil
}

// AnnotateAndSave writes a copy of the file with each matching note on its
// own line directly after the paragraph.
func (p *Parser) AnnotateAndSave(ctx context.Context, path string, annotations []domain.Annotation, outPath string) error {
	lines, err := readLines(ctx, path)
	if err != nil {
		return err
	}

	out := make([]string, 0, len(lines))
	last := 0
	for _, b := range blocks(lines) {
		out = append(out, lines[last:b.end]...)
		text := strings.Join(lines[b.start:b.end], "\n")
		out = append(out, MatchingNotes(text, annotations)...)
		last = b.end
	}
	out = append(out, lines[last:]...)

	return fsutil.WriteFileAtomic(outPath, []byte(strings.Join(out, "\n")))
}

// MatchingNotes returns the notes of annotations whose match text occurs in
// text, ignoring case.
func MatchingNotes(text string, annotations []domain.Annotation) []string {
	lower := strings.ToLower(text)
	var notes []string
	for _, a := range annotations {
		match := strings.ToLower(strings.TrimSpace(a.Match))
		if match != "" && strings.Contains(lower, match) {
			notes = append(notes, a.Note)
		}
	}
	return notes
}

type block struct{ start, end int }

// blocks returns the line ranges of each paragraph.
func blocks(lines []string) []block {
	var out []block
	start := -1
	for i, line := range lines {
		blank := strings.TrimSpace(line) == ""
		switch {
		case !blank && start < 0:
			start = i
		case blank && start >= 0:
			out = append(out, block{start, i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, block{start, len(lines)})
	}
	return out
}

func readLines(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrInvalidInput, path)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}
