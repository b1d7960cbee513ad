package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

type analysisFixture struct {
	llm        *mockLLM
	parser     *mockParser
	checklists *mockChecklistSource
	store      *mockReportStore
	outDir     string
	outputs    []*dirOutput
	svc        *AnalysisService
}

func newAnalysisFixture(t *testing.T, respond func(string, driven.GenerateOptions) (string, error)) *analysisFixture {
	t.Helper()
	f := &analysisFixture{
		llm:    &mockLLM{respond: respond},
		parser: newMockParser(),
		checklists: &mockChecklistSource{checklist: &domain.Checklist{Categories: []domain.ChecklistCategory{{
			Name: "companies",
			Processes: []domain.ChecklistProcess{{
				Name:      "Incorporation",
				Documents: []string{"Articles of Association", "Register of Members"},
			}},
		}}}},
		store:  newMockReportStore(),
		outDir: filepath.Join(t.TempDir(), "out"),
	}

	caller := testCaller(f.llm)
	retriever := &mockRetriever{passages: []domain.Passage{
		{Content: "p1"}, {Content: "p2"}, {Content: "p3"}, {Content: "p4"}, {Content: "p5"}, {Content: "p6"},
	}}
	f.svc = NewAnalysisService(
		f.parser,
		f.checklists,
		NewProcessClassifier(caller, nil, 0),
		NewChecklistMatcher(caller, nil, 2),
		NewIssueDetector(caller, retriever, wordSplitter{}, nil, DetectorConfig{Workers: 1}),
		NewReportAggregator(f.parser, f.checklists, f.store, domain.MissingDocsSemantic),
		func(dir string) driven.OutputLocation {
			o := &dirOutput{dir: dir}
			f.outputs = append(f.outputs, o)
			return o
		},
		AnalysisConfig{OutputDir: f.outDir, ChecklistPath: "checklist.json"},
	)
	return f
}

func (f *analysisFixture) upload(names ...string) []string {
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = "/in/" + n
		f.parser.docs[paths[i]] = []string{"Contents of " + n}
	}
	return paths
}

// incorporationResponder classifies as Incorporation, confirms only
// Articles of Association against articles.docx and finds no issues.
func incorporationResponder(prompt string, _ driven.GenerateOptions) (string, error) {
	switch {
	case strings.Contains(prompt, "identify the most likely legal process"):
		return "Incorporation", nil
	case strings.Contains(prompt, "Answer ONLY with 'YES' or 'NO'"):
		if strings.Contains(prompt, "Required document: Articles of Association") &&
			strings.Contains(prompt, "Uploaded file name: articles.docx") {
			return "YES", nil
		}
		return "NO", nil
	default:
		return "Nothing Wrong", nil
	}
}

func TestAnalysisService_IncorporationScenario(t *testing.T) {
	f := newAnalysisFixture(t, incorporationResponder)
	paths := f.upload("articles.docx", "other.docx")

	var steps []domain.Progress
	report, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{
		Paths:    paths,
		Progress: func(p domain.Progress) { steps = append(steps, p) },
	})

	require.NoError(t, err)
	assert.Equal(t, "Incorporation", report.Process)
	assert.Equal(t, []string{"Register of Members"}, report.MissingDocuments)
	assert.Equal(t, []string{"Articles of Association", "Register of Members"}, report.RequiredDocuments)
	assert.Equal(t, []string{"articles.docx", "other.docx"}, report.DocumentsUploaded)
	assert.True(t, report.IssuesFound.None())

	assert.Equal(t, 1, f.llm.callsMatching("Required document: Register of Members\nUploaded file name: articles.docx"))
	assert.Equal(t, 1, f.llm.callsMatching("Required document: Register of Members\nUploaded file name: other.docx"))
	assert.Equal(t, 1, f.llm.callsMatching("Required document: Articles of Association\nUploaded file name: articles.docx"))

	percents := make([]int, len(steps))
	for i, s := range steps {
		percents[i] = s.Percent
	}
	assert.Equal(t, []int{5, 15, 35, 60, 85, 100}, percents)
	assert.Equal(t, domain.StepDone, steps[len(steps)-1].Step)

	_, err = f.store.Get(context.Background(), report.ID)
	assert.NoError(t, err)
}

func TestAnalysisService_FirstChunkSentinelShortCircuits(t *testing.T) {
	f := newAnalysisFixture(t, func(prompt string, opts driven.GenerateOptions) (string, error) {
		if strings.Contains(prompt, "Document chunk:\nContents of a.docx") {
			return "Nothing Wrong", nil
		}
		if strings.Contains(prompt, "Document chunk:") {
			return issueJSON("Contents", "High"), nil
		}
		return incorporationResponder(prompt, opts)
	})

	report, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{Paths: f.upload("a.docx", "b.docx", "c.docx")})

	require.NoError(t, err)
	assert.True(t, report.IssuesFound.None())
	assert.Equal(t, 0, report.IssuesFound.Len())
	assert.Equal(t, 1, f.llm.callsMatching("Document chunk:"))
}

func TestAnalysisService_OutputCompleteness(t *testing.T) {
	f := newAnalysisFixture(t, func(prompt string, opts driven.GenerateOptions) (string, error) {
		if strings.Contains(prompt, "Document chunk:\nContents of b.docx") {
			return issueJSON("Contents of b.docx", "High"), nil
		}
		if strings.Contains(prompt, "Document chunk:") {
			return "[]", nil
		}
		return incorporationResponder(prompt, opts)
	})
	names := []string{"a.docx", "b.docx", "c.docx", "d.docx"}

	report, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{Paths: f.upload(names...)})

	require.NoError(t, err)
	assert.Equal(t, []string{"b.docx"}, report.Annotated)

	require.Len(t, f.outputs, 1)
	listed, err := f.outputs[0].List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, names, listed)
}

func TestAnalysisService_FatalFailuresPersistNothing(t *testing.T) {
	t.Run("classification", func(t *testing.T) {
		f := newAnalysisFixture(t, func(string, driven.GenerateOptions) (string, error) {
			return "", errors.New("model offline")
		})

		_, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{Paths: f.upload("a.docx")})

		assert.ErrorIs(t, err, domain.ErrClassificationFailed)
		assert.Empty(t, f.outputs)
		assert.Empty(t, f.store.reports)
		assert.NoDirExists(t, f.outDir)
	})

	t.Run("checklist", func(t *testing.T) {
		f := newAnalysisFixture(t, incorporationResponder)
		f.checklists.err = errors.New("no such file")

		_, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{Paths: f.upload("a.docx")})

		assert.ErrorIs(t, err, domain.ErrChecklistUnreadable)
		assert.Equal(t, 0, f.llm.calls())
	})

	t.Run("unparseable input", func(t *testing.T) {
		f := newAnalysisFixture(t, incorporationResponder)

		_, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{Paths: []string{"/in/unknown.pdf"}})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty input", func(t *testing.T) {
		f := newAnalysisFixture(t, incorporationResponder)
		f.parser.docs["/in/blank.docx"] = []string{"  ", ""}

		_, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{Paths: []string{"/in/blank.docx"}})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unwritable output", func(t *testing.T) {
		f := newAnalysisFixture(t, incorporationResponder)
		f.svc.outputs = func(dir string) driven.OutputLocation {
			return &dirOutput{dir: dir, prepareErr: errors.New("read-only")}
		}

		_, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{Paths: f.upload("a.docx")})

		assert.ErrorIs(t, err, domain.ErrOutputUnwritable)
		assert.Empty(t, f.store.reports)
	})
}

func TestAnalysisService_RejectsDuplicateNames(t *testing.T) {
	f := newAnalysisFixture(t, incorporationResponder)
	paths := []string{"/in/a/contract.docx", "/in/b/contract.docx"}
	for _, p := range paths {
		f.parser.docs[p] = []string{"Contents of " + p}
	}

	_, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{Paths: paths})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "contract.docx")
	assert.Equal(t, 0, f.llm.calls())
	assert.Empty(t, f.outputs)
	assert.Empty(t, f.store.reports)
}

func TestAnalysisService_NoDocuments(t *testing.T) {
	f := newAnalysisFixture(t, incorporationResponder)
	_, err := f.svc.Analyse(context.Background(), domain.AnalysisRequest{})
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}
