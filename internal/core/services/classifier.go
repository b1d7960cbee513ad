package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// DefaultPrefixChars bounds the document text sent for classification.
const DefaultPrefixChars = 2000

// classifyMaxTokens bounds the process-name answer.
const classifyMaxTokens = 64

// ProcessClassifier names the legal process a document set belongs to.
type ProcessClassifier struct {
	caller      *ModelCaller
	prompts     driven.PromptStore
	prefixChars int
}

// NewProcessClassifier creates a classifier. prompts may be nil.
func NewProcessClassifier(caller *ModelCaller, prompts driven.PromptStore, prefixChars int) *ProcessClassifier {
	if prefixChars <= 0 {
		prefixChars = DefaultPrefixChars
	}
	return &ProcessClassifier{
		caller:      caller,
		prompts:     prompts,
		prefixChars: prefixChars,
	}
}

// Classify returns the trimmed process name for docs.
// Any failure wraps domain.ErrClassificationFailed; there is no default process.
func (c *ProcessClassifier) Classify(ctx context.Context, docs []domain.Document) (string, error) {
	if !hasText(docs) {
		return "", fmt.Errorf("%w: no document text", domain.ErrClassificationFailed)
	}
	text := CombinedText(docs, c.prefixChars)

	prompt := fmt.Sprintf(loadPrompt(c.prompts, driven.PromptClassifyProcess), text)

	resp, err := c.caller.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: classifyMaxTokens})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrClassificationFailed, err)
	}

	process := strings.TrimSpace(resp)
	if process == "" {
		return "", fmt.Errorf("%w: empty model response", domain.ErrClassificationFailed)
	}

	logger.Info("classified document set as %q", process)
	return process, nil
}

// CombinedText renders each document as a "--- name ---" block, joins the
// blocks with blank lines and keeps at most limit runes.
func CombinedText(docs []domain.Document, limit int) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		blocks = append(blocks, "--- "+doc.Name+" ---\n"+doc.FullText())
	}
	combined := strings.Join(blocks, "\n\n")

	if limit > 0 {
		runes := []rune(combined)
		if len(runes) > limit {
			combined = string(runes[:limit])
		}
	}
	return combined
}

func hasText(docs []domain.Document) bool {
	for _, doc := range docs {
		if strings.TrimSpace(doc.FullText()) != "" {
			return true
		}
	}
	return false
}
