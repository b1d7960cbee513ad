package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// DefaultTopK is the number of grounding passages retrieved per chunk.
const DefaultTopK = 5

// issueFormat describes the expected response shape inside the prompt.
const issueFormat = `{"verdict": "Issues Found", "issues": [{"section": "Exact text of the affected clause", ` +
	`"issue": "Short description of the problem", "severity": "Low / Medium / High", ` +
	`"suggestion": "Clear legal recommendation to fix"}]}`

// issueSchema constrains JSON output for providers that support schemas.
// A compliant chunk is reported with verdict "Nothing Wrong" and no issues.
var issueSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"verdict": map[string]any{
			"type": "string",
			"enum": []any{"Nothing Wrong", "Issues Found"},
		},
		"issues": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"section":    map[string]any{"type": "string"},
					"issue":      map[string]any{"type": "string"},
					"severity":   map[string]any{"type": "string", "enum": []any{"Low", "Medium", "High"}},
					"suggestion": map[string]any{"type": "string"},
				},
				"required": []any{"section", "issue", "severity", "suggestion"},
			},
		},
	},
	"required": []any{"verdict", "issues"},
}

// errNoIssueSentinel marks a response that declared the chunk compliant.
var errNoIssueSentinel = errors.New("no issue sentinel")

// DetectorConfig tunes the issue detector.
type DetectorConfig struct {
	TopK    int
	Workers int
	Policy  domain.NoIssuePolicy
}

// IssueDetector scans document chunks for legal red flags, grounding each
// query in passages from the regulation index.
type IssueDetector struct {
	caller    *ModelCaller
	retriever driven.Retriever
	splitter  driven.TextSplitter
	prompts   driven.PromptStore
	cfg       DetectorConfig
}

// NewIssueDetector creates a detector. retriever and prompts may be nil;
// without a retriever chunks are scanned with empty context.
func NewIssueDetector(
	caller *ModelCaller,
	retriever driven.Retriever,
	splitter driven.TextSplitter,
	prompts driven.PromptStore,
	cfg DetectorConfig,
) *IssueDetector {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if !cfg.Policy.IsValid() {
		cfg.Policy = domain.NoIssueHaltRun
	}
	return &IssueDetector{
		caller:    caller,
		retriever: retriever,
		splitter:  splitter,
		prompts:   prompts,
		cfg:       cfg,
	}
}

// chunkResult is one finished chunk, keyed for ordering.
type chunkResult struct {
	docIndex int
	outcome  domain.ChunkOutcome
	issues   []domain.Issue
}

// Detect scans every chunk of every document.
// Under the halt_run policy the first no-issue sentinel stops scheduling,
// cancels in-flight chunks and yields the no-issues marker.
func (d *IssueDetector) Detect(ctx context.Context, docs []domain.Document) (*domain.DetectionResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	template := loadPrompt(d.prompts, driven.PromptDetectIssues)

	var (
		mu      sync.Mutex
		results []chunkResult
		halted  atomic.Bool
	)

	g := new(errgroup.Group)
	g.SetLimit(d.cfg.Workers)

schedule:
	for docIndex, doc := range docs {
		position := 0
		for chunk := range d.splitter.Chunks(doc.FullText()) {
			if halted.Load() || runCtx.Err() != nil {
				break schedule
			}

			pos := position
			g.Go(func() error {
				if runCtx.Err() != nil {
					return nil
				}
				outcome, issues := d.scanChunk(runCtx, template, doc.Name, pos, chunk)
				if outcome.State == domain.ChunkNoIssueTerminal && d.cfg.Policy == domain.NoIssueHaltRun {
					if halted.CompareAndSwap(false, true) {
						logger.Info("%s chunk %d reported no issues, stopping scan", doc.Name, pos)
						cancel()
					}
				}

				mu.Lock()
				results = append(results, chunkResult{docIndex: docIndex, outcome: outcome, issues: issues})
				mu.Unlock()
				return nil
			})
			position++
		}
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].docIndex != results[j].docIndex {
			return results[i].docIndex < results[j].docIndex
		}
		return results[i].outcome.Position < results[j].outcome.Position
	})

	result := &domain.DetectionResult{Outcomes: make([]domain.ChunkOutcome, 0, len(results))}
	var issues []domain.Issue
	for _, r := range results {
		result.Outcomes = append(result.Outcomes, r.outcome)
		result.ChunksScanned++
		if r.outcome.State == domain.ChunkParseFailedSkipped {
			result.ChunksSkipped++
		}
		issues = append(issues, r.issues...)
	}

	if halted.Load() {
		result.Halted = true
		result.IssuesFound = domain.NoIssues()
		return result, nil
	}

	result.IssuesFound = domain.IssuesOf(issues)
	logger.Debug("detection: %d chunks scanned, %d skipped, %d issues",
		result.ChunksScanned, result.ChunksSkipped, result.IssuesFound.Len())
	return result, nil
}

// scanChunk moves one chunk through retrieval, the model query and
// response parsing to a terminal state.
func (d *IssueDetector) scanChunk(
	ctx context.Context,
	template, docName string,
	position int,
	chunk string,
) (domain.ChunkOutcome, []domain.Issue) {
	outcome := domain.ChunkOutcome{Document: docName, Position: position, State: domain.ChunkPending}

	skip := func(err error) (domain.ChunkOutcome, []domain.Issue) {
		outcome.State = domain.ChunkParseFailedSkipped
		outcome.Err = &domain.ChunkParseError{Document: docName, Position: position, Err: err}
		if ctx.Err() == nil {
			logger.Warn("%v", outcome.Err)
		}
		return outcome, nil
	}

	var contextText string
	if d.retriever != nil {
		passages, err := d.retriever.Retrieve(ctx, chunk, d.cfg.TopK)
		if err != nil {
			return skip(fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err))
		}
		contents := make([]string, len(passages))
		for i, p := range passages {
			contents[i] = p.Content
		}
		contextText = strings.Join(contents, "\n")
	}
	outcome.State = domain.ChunkRetrieved

	prompt := fmt.Sprintf(template, issueFormat, contextText, chunk)
	resp, err := d.caller.Generate(ctx, prompt, driven.GenerateOptions{
		JSONOutput:     true,
		ResponseSchema: issueSchema,
	})
	if err != nil {
		return skip(err)
	}
	outcome.State = domain.ChunkClassified

	issues, err := ParseIssues(resp)
	if errors.Is(err, errNoIssueSentinel) {
		outcome.State = domain.ChunkNoIssueTerminal
		return outcome, nil
	}
	if err != nil {
		return skip(err)
	}

	for i := range issues {
		issues[i].Document = docName
	}
	outcome.State = domain.ChunkIssuesRecorded
	outcome.Issues = len(issues)
	return outcome, issues
}

// IsNoIssueSentinel reports whether a response declares the chunk compliant.
func IsNoIssueSentinel(resp string) bool {
	s := strings.ToLower(strings.TrimSpace(resp))
	s = strings.TrimSpace(strings.TrimSuffix(s, "."))
	switch s {
	case "nothing wrong", "no issue", "no issues":
		return true
	default:
		return false
	}
}

// ParseIssues decodes a detection response.
// The sentinel check runs before any JSON parsing. Markdown code fences are
// stripped; an array, a single issue object or a verdict envelope is accepted.
// Missing or unknown fields become empty strings.
func ParseIssues(resp string) ([]domain.Issue, error) {
	if IsNoIssueSentinel(resp) {
		return nil, errNoIssueSentinel
	}

	body := extractJSON(stripCodeFences(resp))
	if body == "" {
		return nil, fmt.Errorf("response is not JSON: %q", truncate(resp, 80))
	}

	var raw []map[string]any
	switch body[0] {
	case '[':
		if err := json.Unmarshal([]byte(body), &raw); err != nil {
			return nil, fmt.Errorf("decode issue array: %w", err)
		}
	case '{':
		var obj map[string]any
		if err := json.Unmarshal([]byte(body), &obj); err != nil {
			return nil, fmt.Errorf("decode issue object: %w", err)
		}
		envelope, isEnvelope := obj["issues"]
		if !isEnvelope {
			raw = []map[string]any{obj}
			break
		}
		if verdict, ok := obj["verdict"].(string); ok && IsNoIssueSentinel(verdict) {
			return nil, errNoIssueSentinel
		}
		items, ok := envelope.([]any)
		if !ok && envelope != nil {
			return nil, fmt.Errorf("issues field is %T, want array", envelope)
		}
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("issue entry is %T, want object", item)
			}
			raw = append(raw, m)
		}
	}

	issues := make([]domain.Issue, 0, len(raw))
	for _, m := range raw {
		issues = append(issues, domain.Issue{
			Section:    stringField(m, "section"),
			Issue:      stringField(m, "issue"),
			Severity:   domain.ParseSeverity(stringField(m, "severity")),
			Suggestion: stringField(m, "suggestion"),
		})
	}
	return issues, nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

// stripCodeFences removes a surrounding ``` or ```json fence.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// extractJSON returns the span from the first '[' or '{' to the last
// matching closer, or "" when there is none.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return ""
	}
	closer := byte(']')
	if s[start] == '{' {
		closer = '}'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
