// Package docx reads and annotates WordprocessingML (.docx) documents
// without a Word dependency. Only word/document.xml is touched; every other
// part of the package is copied through unchanged.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/fsutil"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

const (
	documentPart  = "word/document.xml"
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	// HighlightColor is the highlight applied to appended notes.
	HighlightColor = "yellow"
)

// Parser handles DOCX documents.
type Parser struct{}

// New creates a new DOCX parser.
func New() *Parser {
	return &Parser{}
}

// SupportedExtensions returns the extensions this parser handles.
func (p *Parser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Parse returns the non-empty paragraph texts in document order.
func (p *Parser) Parse(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := readDocumentPart(path)
	if err != nil {
		return nil, err
	}

	spans, err := scanParagraphs(data)
	if err != nil {
		return nil, err
	}

	paragraphs := make([]string, 0, len(spans))
	for _, s := range spans {
		if strings.TrimSpace(s.text) != "" {
			paragraphs = append(paragraphs, s.text)
		}
	}
	return paragraphs, nil
}

// AnnotateAndSave appends a highlighted note run, on a new line, to every
// paragraph whose text contains an annotation's match text. Matching uses
// the paragraph text as it was before any note was added.
func (p *Parser) AnnotateAndSave(ctx context.Context, path string, annotations []domain.Annotation, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: %s is not a docx archive: %w", domain.ErrInvalidInput, path, err)
	}
	defer src.Close()

	docFile := findPart(&src.Reader, documentPart)
	if docFile == nil {
		return fmt.Errorf("%w: %s has no %s", domain.ErrInvalidInput, path, documentPart)
	}
	data, err := readPart(docFile)
	if err != nil {
		return err
	}

	annotated, err := annotateXML(data, annotations)
	if err != nil {
		return err
	}

	return writeArchive(&src.Reader, annotated, outPath)
}

// paragraphSpan locates one outermost w:p element in document.xml.
type paragraphSpan struct {
	start, end int64
	text       string
}

// scanParagraphs walks document.xml and returns each outermost paragraph
// with its byte range and text. Paragraphs nested inside another
// paragraph (text boxes) contribute to the outer paragraph's text.
func scanParagraphs(data []byte) ([]paragraphSpan, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		spans  []paragraphSpan
		cur    paragraphSpan
		text   strings.Builder
		depth  int
		inText bool
	)

	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed %s: %w", domain.ErrInvalidInput, documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					cur = paragraphSpan{start: offset}
					text.Reset()
				}
				depth++
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					text.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					text.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				depth--
				if depth == 0 {
					cur.end = dec.InputOffset()
					cur.text = text.String()
					spans = append(spans, cur)
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}

	return spans, nil
}

// annotateXML inserts note runs into the matching paragraphs of data.
func annotateXML(data []byte, annotations []domain.Annotation) ([]byte, error) {
	spans, err := scanParagraphs(data)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(data))
	last := int64(0)

	for _, span := range spans {
		lower := strings.ToLower(span.text)
		var notes []string
		for _, a := range annotations {
			match := strings.ToLower(strings.TrimSpace(a.Match))
			if match != "" && strings.Contains(lower, match) {
				notes = append(notes, a.Note)
			}
		}
		if len(notes) == 0 {
			continue
		}

		element := data[span.start:span.end]
		closeAt := bytes.LastIndex(element, []byte("</"))
		if closeAt < 0 {
			// Self-closing paragraphs carry no text, so they never match.
			continue
		}

		insertAt := span.start + int64(closeAt)
		out.Write(data[last:insertAt])
		prefix := elementPrefix(element)
		for _, note := range notes {
			out.WriteString(noteRun(prefix, note))
		}
		last = insertAt
	}
	out.Write(data[last:])

	return out.Bytes(), nil
}

// elementPrefix returns the namespace prefix used by the element's start
// tag, e.g. "w" for "<w:p>".
func elementPrefix(element []byte) string {
	end := bytes.IndexAny(element, " \t\r\n/>")
	if end < 0 {
		return ""
	}
	name := string(element[1:end])
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return ""
}

// noteRun renders a highlighted run holding a line break and the note.
func noteRun(prefix, note string) string {
	q := func(local string) string {
		if prefix == "" {
			return local
		}
		return prefix + ":" + local
	}

	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(note))

	return fmt.Sprintf(`<%s><%s><%s %s="%s"/></%s><%s/><%s xml:space="preserve">%s</%s></%s>`,
		q("r"), q("rPr"), q("highlight"), q("val"), HighlightColor, q("rPr"),
		q("br"), q("t"), escaped.String(), q("t"), q("r"))
}

func readDocumentPart(path string) ([]byte, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a docx archive: %w", domain.ErrInvalidInput, path, err)
	}
	defer archive.Close()

	file := findPart(&archive.Reader, documentPart)
	if file == nil {
		return nil, fmt.Errorf("%w: %s has no %s", domain.ErrInvalidInput, path, documentPart)
	}
	return readPart(file)
}

func findPart(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrInvalidInput, f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrInvalidInput, f.Name, err)
	}
	return data, nil
}

// writeArchive copies src to outPath, replacing document.xml with doc.
// outPath is replaced only once the archive is complete, so it may name the
// file src was opened from.
func writeArchive(src *zip.Reader, doc []byte, outPath string) error {
	return fsutil.WriteAtomic(outPath, func(out io.Writer) error {
		return copyArchive(src, doc, out)
	})
}

func copyArchive(src *zip.Reader, doc []byte, out io.Writer) error {
	zw := zip.NewWriter(out)
	for _, f := range src.File {
		if f.Name != documentPart {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
		if _, err := w.Write(doc); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}
