// Package html reads and annotates HTML documents.
//
// Parsing strips non-content elements with goquery, converts the body to
// Markdown and splits it into paragraphs with the markdown parser, so both
// formats yield the same paragraph shapes. Annotation works on the HTML
// tree directly and appends each note, highlighted, to the innermost block
// element whose text contains the match.
package html

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/fsutil"
	"github.com/custodia-labs/lexcheck/internal/parsers/markdown"
	"github.com/custodia-labs/lexcheck/internal/parsers/plaintext"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

const (
	removedElements = "script, style, noscript, template, iframe, svg"
	blockElements   = "p, h1, h2, h3, h4, h5, h6, li, td, th, dt, dd, pre, blockquote, div"
)

// Parser handles HTML documents.
type Parser struct {
	converter *md.Converter
	markdown  *markdown.Parser
}

// New creates a new HTML parser.
func New() *Parser {
	return &Parser{
		converter: md.NewConverter("", true, nil),
		markdown:  markdown.New(),
	}
}

// SupportedExtensions returns the extensions this parser handles.
func (p *Parser) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

// Parse returns the paragraphs of the file.
func (p *Parser) Parse(ctx context.Context, path string) ([]string, error) {
	doc, err := load(ctx, path)
	if err != nil {
		return nil, err
	}

	doc.Find(removedElements).Remove()
	body, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("%w: render %s: %w", domain.ErrInvalidInput, path, err)
	}

	converted, err := p.converter.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: convert %s: %w", domain.ErrInvalidInput, path, err)
	}
	return p.markdown.Paragraphs([]byte(converted)), nil
}

// AnnotateAndSave writes a copy of the file with each matching note
// appended to its block element inside a <mark>.
func (p *Parser) AnnotateAndSave(ctx context.Context, path string, annotations []domain.Annotation, outPath string) error {
	doc, err := load(ctx, path)
	if err != nil {
		return err
	}

	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		if s.Find(blockElements).Length() > 0 {
			return
		}
		for _, note := range plaintext.MatchingNotes(normaliseSpace(s.Text()), annotations) {
			s.AppendHtml("<br/><mark>" + html.EscapeString(note) + "</mark>")
		}
	})

	rendered, err := doc.Html()
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return fsutil.WriteFileAtomic(outPath, []byte(rendered))
}

func normaliseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func load(ctx context.Context, path string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, path, err)
	}
	return doc, nil
}
