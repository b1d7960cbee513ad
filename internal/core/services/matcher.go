package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// DefaultWorkers bounds concurrent model calls per pipeline stage.
const DefaultWorkers = 4

// matchMaxTokens bounds the yes/no answer.
const matchMaxTokens = 5

// ChecklistMatcher reconciles the documents a process requires with the
// uploaded files. Names that differ are compared by asking the model.
type ChecklistMatcher struct {
	caller  *ModelCaller
	prompts driven.PromptStore
	workers int
}

// NewChecklistMatcher creates a matcher. prompts may be nil.
func NewChecklistMatcher(caller *ModelCaller, prompts driven.PromptStore, workers int) *ChecklistMatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &ChecklistMatcher{
		caller:  caller,
		prompts: prompts,
		workers: workers,
	}
}

// Match checks every document process requires against the uploaded docs.
// Required documents are checked concurrently; the result keeps checklist order.
// Model failures for a single pair count as non-matches; only context
// cancellation is returned as an error.
func (m *ChecklistMatcher) Match(
	ctx context.Context,
	process string,
	docs []domain.Document,
	checklist *domain.Checklist,
) (*domain.ChecklistResult, error) {
	required := checklist.RequiredDocuments(process)
	if len(required) == 0 {
		logger.Warn("checklist has no required documents for process %q", process)
	}
	filenames := domain.DocumentNames(docs)

	matches := make([]domain.MatchResult, len(required))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, req := range required {
		g.Go(func() error {
			res, err := m.matchOne(gctx, req, filenames)
			if err != nil {
				return err
			}
			matches[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.ChecklistResult{
		NumUploaded: len(docs),
		NumRequired: len(required),
		Missing:     []string{},
		Required:    required,
		Matches:     matches,
	}
	if result.Required == nil {
		result.Required = []string{}
	}
	for _, match := range matches {
		if !match.Present {
			result.Missing = append(result.Missing, match.Required)
		}
	}

	logger.Debug("checklist: %d required, %d missing", result.NumRequired, len(result.Missing))
	return result, nil
}

// matchOne resolves one required document. Exact names are checked across
// all files before any model query is made.
func (m *ChecklistMatcher) matchOne(ctx context.Context, required string, filenames []string) (domain.MatchResult, error) {
	for _, fname := range filenames {
		if IsExactMatch(required, fname) {
			return domain.MatchResult{Required: required, Present: true, MatchedFile: fname, Exact: true}, nil
		}
	}

	template := loadPrompt(m.prompts, driven.PromptMatchDocument)
	opts := driven.GenerateOptions{MaxTokens: matchMaxTokens, Deterministic: true}

	for _, fname := range filenames {
		resp, err := m.caller.Generate(ctx, fmt.Sprintf(template, required, fname), opts)
		if err != nil {
			if ctx.Err() != nil {
				return domain.MatchResult{}, ctx.Err()
			}
			matchErr := &domain.CandidateMatchError{Required: required, Filename: fname, Err: err}
			logger.Warn("%v", matchErr)
			continue
		}
		if IsAffirmative(resp) {
			return domain.MatchResult{Required: required, Present: true, MatchedFile: fname}, nil
		}
	}

	return domain.MatchResult{Required: required}, nil
}

// IsExactMatch reports whether fname names required without a model query:
// the filename equals it, or its extension-less stem equals it ignoring case.
func IsExactMatch(required, fname string) bool {
	if fname == required {
		return true
	}
	stem := strings.TrimSuffix(fname, filepath.Ext(fname))
	return strings.EqualFold(strings.TrimSpace(stem), strings.TrimSpace(required))
}

// IsAffirmative reports whether a yes/no answer confirms a match.
// Only "yes", ignoring case, whitespace and trailing punctuation, confirms.
func IsAffirmative(answer string) bool {
	a := strings.TrimRight(strings.TrimSpace(answer), ".!")
	return strings.EqualFold(strings.TrimSpace(a), "yes")
}
