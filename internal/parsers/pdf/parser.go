// Package pdf reads the text of PDF documents.
//
// Page content streams are extracted with pdfcpu and scanned for text
// showing operators. Each text object (BT ... ET) becomes one paragraph.
// Glyphs are decoded as Latin-1 unless the string carries a UTF-16 byte
// order mark, so documents with embedded CID fonts may yield partial text.
// PDFs are read-only: annotation is not supported.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

var pageFilePattern = regexp.MustCompile(`_page_(\d+)\.txt$`)

// Parser handles PDF documents.
type Parser struct {
	conf *model.Configuration
}

// New creates a new PDF parser.
func New() *Parser {
	api.DisableConfigDir()
	return &Parser{conf: model.NewDefaultConfiguration()}
}

// SupportedExtensions returns the extensions this parser handles.
func (p *Parser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Parse returns the paragraphs of every page in page order.
func (p *Parser) Parse(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	outDir, err := os.MkdirTemp("", "lexcheck-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(path, outDir, nil, p.conf); err != nil {
		return nil, fmt.Errorf("%w: extract %s: %w", domain.ErrInvalidInput, path, err)
	}

	pages, err := pageFiles(outDir)
	if err != nil {
		return nil, err
	}

	var paragraphs []string
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(page)
		if err != nil {
			return nil, fmt.Errorf("read page content: %w", err)
		}
		paragraphs = append(paragraphs, extractText(content)...)
	}
	return paragraphs, nil
}

// AnnotateAndSave is not supported for PDF documents.
func (p *Parser) AnnotateAndSave(_ context.Context, path string, _ []domain.Annotation, _ string) error {
	return fmt.Errorf("%w: annotating %s: PDF documents are read-only", domain.ErrUnsupportedType, filepath.Base(path))
}

// pageFiles returns the extracted content files ordered by page number.
func pageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list page content: %w", err)
	}

	type page struct {
		num  int
		path string
	}
	var pages []page
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		num := 0
		if m := pageFilePattern.FindStringSubmatch(e.Name()); m != nil {
			num, _ = strconv.Atoi(m[1])
		}
		pages = append(pages, page{num: num, path: filepath.Join(dir, e.Name())})
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	paths := make([]string, len(pages))
	for i, pg := range pages {
		paths[i] = pg.path
	}
	return paths, nil
}
