// Package markdown reads and annotates Markdown documents.
//
// Paragraphs are the leaf text blocks of the goldmark syntax tree:
// paragraphs, headings, tight list items and code blocks. Inline markup is
// dropped from the paragraph text; annotation inserts each note as its own
// paragraph after the block it belongs to and leaves the rest of the source
// byte-for-byte unchanged.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/fsutil"
	"github.com/custodia-labs/lexcheck/internal/parsers/plaintext"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser handles Markdown documents.
type Parser struct {
	md goldmark.Markdown
}

// New creates a new Markdown parser.
func New() *Parser {
	return &Parser{
		md: goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify)),
	}
}

// SupportedExtensions returns the extensions this parser handles.
func (p *Parser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Parse returns the paragraphs of the file.
func (p *Parser) Parse(ctx context.Context, path string) ([]string, error) {
	source, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.Paragraphs(source), nil
}

// Paragraphs returns the non-empty block texts of a Markdown source.
func (p *Parser) Paragraphs(source []byte) []string {
	var out []string
	for _, b := range p.blocks(source) {
		out = append(out, b.text)
	}
	return out
}

// AnnotateAndSave writes a copy of the file with each matching note
// inserted as a paragraph after its block.
func (p *Parser) AnnotateAndSave(ctx context.Context, path string, annotations []domain.Annotation, outPath string) error {
	source, err := readSource(ctx, path)
	if err != nil {
		return err
	}

	type insertion struct {
		at   int
		text string
	}
	var inserts []insertion
	for _, b := range p.blocks(source) {
		for _, note := range plaintext.MatchingNotes(b.text, annotations) {
			inserts = append(inserts, insertion{at: b.end, text: "\n" + note + "\n"})
		}
	}
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].at < inserts[j].at })

	var buf bytes.Buffer
	last := 0
	for _, in := range inserts {
		buf.Write(source[last:in.at])
		if in.at > 0 && source[in.at-1] != '\n' {
			buf.WriteByte('\n')
		}
		buf.WriteString(in.text)
		last = in.at
	}
	buf.Write(source[last:])

	return fsutil.WriteFileAtomic(outPath, buf.Bytes())
}

type mdBlock struct {
	text string
	// end is the source offset just past the block's last line.
	end int
}

func (p *Parser) blocks(source []byte) []mdBlock {
	doc := p.md.Parser().Parse(text.NewReader(source))

	var out []mdBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
			if b, ok := textBlock(node, source); ok {
				out = append(out, b)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			if b, ok := codeBlock(node, source, true); ok {
				out = append(out, b)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			if b, ok := codeBlock(node, source, false); ok {
				out = append(out, b)
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func textBlock(n ast.Node, source []byte) (mdBlock, bool) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return mdBlock{}, false
	}

	var sb strings.Builder
	inlineText(n, source, &sb)
	content := strings.TrimSpace(sb.String())
	if content == "" {
		return mdBlock{}, false
	}

	last := lines.At(lines.Len() - 1)
	end := lineEnd(source, last.Stop)
	if h, ok := n.(*ast.Heading); ok && !isATX(source, lines.At(0).Start) && h.Level > 0 {
		// Setext heading: skip the underline.
		end = skipLine(source, end)
	}
	return mdBlock{text: content, end: end}, true
}

func codeBlock(n ast.Node, source []byte, fenced bool) (mdBlock, bool) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return mdBlock{}, false
	}

	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		return mdBlock{}, false
	}

	end := lineEnd(source, lines.At(lines.Len()-1).Stop)
	if fenced && isFence(source, end) {
		end = skipLine(source, end)
	}
	return mdBlock{text: content, end: end}, true
}

// inlineText appends the plain text of n's inline children to sb.
func inlineText(n ast.Node, source []byte, sb *strings.Builder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(unescape(t.Segment.Value(source)))
			switch {
			case t.HardLineBreak():
				sb.WriteByte('\n')
			case t.SoftLineBreak():
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			sb.Write(t.Label(source))
		case *ast.RawHTML:
		default:
			inlineText(c, source, sb)
		}
	}
}

func unescape(v []byte) []byte {
	return util.UnescapePunctuations(util.ResolveNumericReferences(util.ResolveEntityNames(v)))
}

// lineEnd returns the offset just past the newline ending the line that
// contains pos, or len(source).
func lineEnd(source []byte, pos int) int {
	if pos >= len(source) {
		return len(source)
	}
	if pos > 0 && source[pos-1] == '\n' {
		return pos
	}
	if i := bytes.IndexByte(source[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(source)
}

// skipLine returns the offset just past the line starting at start.
func skipLine(source []byte, start int) int {
	if start >= len(source) {
		return len(source)
	}
	if i := bytes.IndexByte(source[start:], '\n'); i >= 0 {
		return start + i + 1
	}
	return len(source)
}

func lineAt(source []byte, start int) []byte {
	if start >= len(source) {
		return nil
	}
	line := source[start:]
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return line
}

func isATX(source []byte, pos int) bool {
	start := bytes.LastIndexByte(source[:pos], '\n') + 1
	return bytes.HasPrefix(bytes.TrimLeft(lineAt(source, start), " "), []byte("#"))
}

func isFence(source []byte, start int) bool {
	line := bytes.TrimSpace(lineAt(source, start))
	return bytes.HasPrefix(line, []byte("```")) || bytes.HasPrefix(line, []byte("~~~"))
}

func readSource(ctx context.Context, path string) ([]byte, error) {
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
	return data, nil
}
