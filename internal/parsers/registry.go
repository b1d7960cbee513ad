// Package parsers dispatches document operations to the parser registered
// for a file's extension.
//
// The format parsers live in subpackages:
//
//	docx      Word documents
//	plaintext .txt files
//	markdown  .md files
//	html      .html files
//	pdf       .pdf files, read-only
package parsers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/parsers/docx"
	"github.com/custodia-labs/lexcheck/internal/parsers/html"
	"github.com/custodia-labs/lexcheck/internal/parsers/markdown"
	"github.com/custodia-labs/lexcheck/internal/parsers/pdf"
	"github.com/custodia-labs/lexcheck/internal/parsers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry maps file extensions to parsers. A later registration for an
// extension replaces the earlier one.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]driven.DocumentParser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]driven.DocumentParser)}
}

// NewDefaultRegistry returns a registry with every built-in parser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults registers every built-in parser with r.
func RegisterDefaults(r driven.ParserRegistry) {
	r.Register(docx.New())
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(pdf.New())
}

// Register adds a parser for each of its extensions.
func (r *Registry) Register(parser driven.DocumentParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range parser.SupportedExtensions() {
		r.parsers[strings.ToLower(ext)] = parser
	}
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether a parser is registered for the path's extension.
func (r *Registry) Supports(path string) bool {
	_, err := r.lookup(path)
	return err == nil
}

// Parse reads the document with the parser for its extension.
func (r *Registry) Parse(ctx context.Context, path string) ([]string, error) {
	p, err := r.lookup(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, path)
}

// AnnotateAndSave annotates the document with the parser for its extension.
func (r *Registry) AnnotateAndSave(ctx context.Context, path string, annotations []domain.Annotation, outPath string) error {
	p, err := r.lookup(path)
	if err != nil {
		return err
	}
	return p.AnnotateAndSave(ctx, path, annotations, outPath)
}

func (r *Registry) lookup(path string) (driven.DocumentParser, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	p, ok := r.parsers[ext]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no parser for %q files (%s)", domain.ErrUnsupportedType, ext, filepath.Base(path))
	}
	return p, nil
}
