package domain

import "strings"

// Document is an uploaded document parsed into paragraphs.
// Documents are read-only once parsed; annotation writes a new copy.
type Document struct {
	// Name is the base filename and the document's identity.
	Name string

	// Path is the location the document was read from.
	Path string

	// Paragraphs holds the non-empty paragraph texts in document order.
	Paragraphs []string
}

// NewDocument builds a document, dropping blank paragraphs.
func NewDocument(name, path string, paragraphs []string) Document {
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return Document{Name: name, Path: path, Paragraphs: kept}
}

// FullText joins the paragraphs with single newlines.
func (d Document) FullText() string {
	return strings.Join(d.Paragraphs, "\n")
}

// Chunk is a bounded window of a document's full text.
type Chunk struct {
	// ID is the unique identifier for the chunk (knowledge-base passages only).
	ID string

	// DocumentName is the owning document's name.
	DocumentName string

	// Position is the ordinal position within the document.
	Position int

	// Content is the text of this chunk.
	Content string

	// Embedding is the vector representation, when computed.
	Embedding []float32
}

// Passage is a grounding text retrieved from the regulation index.
type Passage struct {
	// ID identifies the passage in the index.
	ID string

	// Source names the knowledge-base file the passage came from.
	Source string

	// Content is the passage text.
	Content string

	// Similarity is the cosine similarity to the query, between -1 and 1.
	Similarity float64
}

// DocumentNames returns the names of the documents in order.
func DocumentNames(docs []Document) []string {
	names := make([]string, len(docs))
	for i := range docs {
		names[i] = docs[i].Name
	}
	return names
}
