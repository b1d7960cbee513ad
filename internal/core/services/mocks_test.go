package services

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLM implements driven.LLMService with a scripted responder.
type mockLLM struct {
	mu      sync.Mutex
	prompts []string
	opts    []driven.GenerateOptions
	respond func(prompt string, opts driven.GenerateOptions) (string, error)
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.respond == nil {
		return "", errors.New("no responder")
	}
	return m.respond(prompt, opts)
}

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLM) callsMatching(substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// testCaller wraps llm without retries or sleeping.
func testCaller(llm driven.LLMService) *ModelCaller {
	c := NewModelCaller(llm, ModelCallerConfig{})
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

// mockRetriever implements driven.Retriever.
type mockRetriever struct {
	passages []domain.Passage
	err      error
	calls    int
	mu       sync.Mutex
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, k int) ([]domain.Passage, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.passages) {
		return m.passages[:k], nil
	}
	return m.passages, nil
}

// wordSplitter implements driven.TextSplitter, yielding one chunk per
// blank-line separated block.
type wordSplitter struct{}

func (wordSplitter) Chunks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, block := range strings.Split(text, "\n\n") {
			if strings.TrimSpace(block) == "" {
				continue
			}
			if !yield(strings.TrimSpace(block)) {
				return
			}
		}
	}
}

// mockParser implements driven.ParserRegistry over in-memory documents.
// AnnotateAndSave writes the paragraphs plus notes as plain text.
type mockParser struct {
	docs        map[string][]string
	parseErr    map[string]error
	annotateErr map[string]error
	annotated   map[string][]domain.Annotation
	mu          sync.Mutex
}

func newMockParser() *mockParser {
	return &mockParser{
		docs:        make(map[string][]string),
		parseErr:    make(map[string]error),
		annotateErr: make(map[string]error),
		annotated:   make(map[string][]domain.Annotation),
	}
}

func (m *mockParser) SupportedExtensions() []string { return []string{".docx", ".txt"} }

func (m *mockParser) Register(driven.DocumentParser) {}

func (m *mockParser) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".docx" || ext == ".txt"
}

func (m *mockParser) Parse(_ context.Context, path string) ([]string, error) {
	if err := m.parseErr[path]; err != nil {
		return nil, err
	}
	paras, ok := m.docs[path]
	if !ok {
		return nil, domain.ErrUnsupportedType
	}
	return paras, nil
}

func (m *mockParser) AnnotateAndSave(_ context.Context, path string, annotations []domain.Annotation, outPath string) error {
	if err := m.annotateErr[path]; err != nil {
		return err
	}
	m.mu.Lock()
	m.annotated[path] = annotations
	m.mu.Unlock()

	lines := append([]string(nil), m.docs[path]...)
	for _, a := range annotations {
		lines = append(lines, a.Note)
	}
	return os.WriteFile(outPath, []byte(strings.Join(lines, "\n")), 0600)
}

// mockChecklistSource implements driven.ChecklistSource.
type mockChecklistSource struct {
	checklist *domain.Checklist
	err       error
	loads     int
}

func (m *mockChecklistSource) Load(_ context.Context, _ string) (*domain.Checklist, error) {
	m.loads++
	if m.err != nil {
		return nil, m.err
	}
	return m.checklist, nil
}

// dirOutput implements driven.OutputLocation on a temp directory.
type dirOutput struct {
	dir        string
	prepareErr error
	copyErr    error
	report     *domain.Report
}

func (o *dirOutput) Prepare(_ context.Context) error {
	if o.prepareErr != nil {
		return o.prepareErr
	}
	return os.MkdirAll(o.dir, 0o755)
}

func (o *dirOutput) Dir() string { return o.dir }

func (o *dirOutput) PathFor(name string) string { return filepath.Join(o.dir, name) }

func (o *dirOutput) Exists(name string) bool {
	_, err := os.Stat(o.PathFor(name))
	return err == nil
}

func (o *dirOutput) CopyIn(_ context.Context, src, name string) error {
	if o.copyErr != nil {
		return o.copyErr
	}
	return os.WriteFile(o.PathFor(name), []byte("copy of "+src), 0600)
}

func (o *dirOutput) WriteReport(_ context.Context, report *domain.Report) error {
	o.report = report
	return os.WriteFile(filepath.Join(o.dir, "report.json"), []byte(report.ID), 0600)
}

func (o *dirOutput) RemoveReport(_ context.Context) error {
	err := os.Remove(filepath.Join(o.dir, "report.json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (o *dirOutput) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(o.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Name() != "report.json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// mockReportStore implements driven.ReportStore.
type mockReportStore struct {
	reports map[string]*domain.Report
	saveErr error
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{reports: make(map[string]*domain.Report)}
}

func (m *mockReportStore) Save(_ context.Context, r *domain.Report) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.reports[r.ID] = r
	return nil
}

func (m *mockReportStore) Get(_ context.Context, id string) (*domain.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockReportStore) List(_ context.Context) ([]domain.ReportSummary, error) {
	out := make([]domain.ReportSummary, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// mockEmbedder implements driven.EmbeddingService.
type mockEmbedder struct {
	err     error
	batches int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batches++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 2 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndex implements driven.VectorIndex.
type mockIndex struct {
	bySource  map[string][]domain.Chunk
	searchErr error
	lastK     int
}

func newMockIndex() *mockIndex {
	return &mockIndex{bySource: make(map[string][]domain.Chunk)}
}

func (m *mockIndex) Add(_ context.Context, source string, chunks []domain.Chunk) error {
	m.bySource[source] = append(m.bySource[source], chunks...)
	return nil
}

func (m *mockIndex) DeleteSource(_ context.Context, source string) error {
	delete(m.bySource, source)
	return nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]domain.Passage, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var out []domain.Passage
	for source, chunks := range m.bySource {
		for _, c := range chunks {
			out = append(out, domain.Passage{ID: c.ID, Source: source, Content: c.Content})
		}
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *mockIndex) Count(_ context.Context) (int, error) {
	n := 0
	for _, chunks := range m.bySource {
		n += len(chunks)
	}
	return n, nil
}

func (m *mockIndex) Close() error { return nil }

// mockPipeline implements driven.PostProcessorPipeline with one chunk per paragraph.
type mockPipeline struct{}

func (mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, len(doc.Paragraphs))
	for i, p := range doc.Paragraphs {
		chunks[i] = domain.Chunk{ID: doc.Name + "#" + string(rune('a'+i)), DocumentName: doc.Name, Position: i, Content: p}
	}
	return chunks, nil
}
