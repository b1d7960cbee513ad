package driven

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// DocumentParser reads document containers as paragraph text and writes
// annotated copies.
type DocumentParser interface {
	// SupportedExtensions returns the lower-case file extensions handled (".docx").
	SupportedExtensions() []string

	// Parse returns the ordered, non-empty paragraph texts of the document.
	Parse(ctx context.Context, path string) ([]string, error)

	// AnnotateAndSave appends each note to every paragraph whose text contains
	// the annotation's match text (case-insensitive) and writes the result to outPath.
	// The input file is never modified.
	AnnotateAndSave(ctx context.Context, path string, annotations []domain.Annotation, outPath string) error
}

// ParserRegistry selects the parser for a file by extension.
type ParserRegistry interface {
	DocumentParser

	// Register adds a parser for its extensions.
	Register(parser DocumentParser)

	// Supports reports whether a parser exists for the path.
	Supports(path string) bool
}
