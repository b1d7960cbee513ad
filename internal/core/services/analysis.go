package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// Progress percentages reported at the start of each step.
const (
	progressParsing     = 5
	progressClassifying = 15
	progressMatching    = 35
	progressDetecting   = 60
	progressAnnotating  = 85
	progressDone        = 100
)

// AnalysisConfig holds run defaults used when a request leaves them empty.
type AnalysisConfig struct {
	ChecklistPath string
	OutputDir     string
}

// AnalysisService orchestrates one compliance run: parse, classify, match,
// detect and aggregate. Each run carries its own progress callback, so
// concurrent runs never share state.
type AnalysisService struct {
	parser     driven.DocumentParser
	checklists driven.ChecklistSource
	classifier *ProcessClassifier
	matcher    *ChecklistMatcher
	detector   *IssueDetector
	aggregator *ReportAggregator
	outputs    driven.OutputFactory
	cfg        AnalysisConfig
}

// NewAnalysisService creates the orchestrator.
func NewAnalysisService(
	parser driven.DocumentParser,
	checklists driven.ChecklistSource,
	classifier *ProcessClassifier,
	matcher *ChecklistMatcher,
	detector *IssueDetector,
	aggregator *ReportAggregator,
	outputs driven.OutputFactory,
	cfg AnalysisConfig,
) *AnalysisService {
	return &AnalysisService{
		parser:     parser,
		checklists: checklists,
		classifier: classifier,
		matcher:    matcher,
		detector:   detector,
		aggregator: aggregator,
		outputs:    outputs,
		cfg:        cfg,
	}
}

// Analyse runs the pipeline over req.Paths.
// Fatal failures return an error before anything is written.
func (s *AnalysisService) Analyse(ctx context.Context, req domain.AnalysisRequest) (*domain.Report, error) {
	if len(req.Paths) == 0 {
		return nil, domain.ErrNoDocuments
	}
	defer logger.Elapsed("analysis", time.Now())

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = s.cfg.OutputDir
	}
	if outputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", domain.ErrInvalidInput)
	}
	checklistPath := req.ChecklistPath
	if checklistPath == "" {
		checklistPath = s.cfg.ChecklistPath
	}

	progress := func(step string, percent int) {
		logger.Section(step)
		if req.Progress != nil {
			req.Progress(domain.Progress{Step: step, Percent: percent})
		}
	}

	progress(domain.StepParsing, progressParsing)
	docs, err := s.parseDocuments(ctx, req.Paths)
	if err != nil {
		return nil, err
	}

	checklist, err := s.checklists.Load(ctx, checklistPath)
	if err != nil {
		if !errors.Is(err, domain.ErrChecklistUnreadable) {
			err = fmt.Errorf("%w: %w", domain.ErrChecklistUnreadable, err)
		}
		return nil, err
	}

	progress(domain.StepClassifying, progressClassifying)
	process, err := s.classifier.Classify(ctx, docs)
	if err != nil {
		return nil, err
	}

	progress(domain.StepMatching, progressMatching)
	checklistResult, err := s.matcher.Match(ctx, process, docs, checklist)
	if err != nil {
		return nil, fmt.Errorf("match checklist: %w", err)
	}

	progress(domain.StepDetecting, progressDetecting)
	detection, err := s.detector.Detect(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("detect issues: %w", err)
	}
	if detection.ChunksSkipped > 0 {
		logger.Warn("%d of %d chunks could not be scanned", detection.ChunksSkipped, detection.ChunksScanned)
	}

	progress(domain.StepAnnotating, progressAnnotating)
	out := s.outputs(outputDir)
	if err := out.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOutputUnwritable, err)
	}

	report, err := s.aggregator.Aggregate(ctx, AggregateInput{
		Process:       process,
		Documents:     docs,
		Checklist:     checklistResult,
		Detection:     detection,
		ChecklistPath: checklistPath,
	}, out)
	if err != nil {
		return nil, err
	}

	progress(domain.StepDone, progressDone)
	return report, nil
}

// parseDocuments reads every path. Unsupported or empty files are fatal, and
// so are two paths sharing a base name: the name is the document's identity
// in the report and in the output directory.
func (s *AnalysisService) parseDocuments(ctx context.Context, paths []string) ([]domain.Document, error) {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %s and %s share the name %s", domain.ErrInvalidInput, prev, path, name)
		}
		seen[name] = path
	}

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)

		paragraphs, err := s.parser.Parse(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, name, err)
		}

		doc := domain.NewDocument(name, path, paragraphs)
		if len(doc.Paragraphs) == 0 {
			return nil, fmt.Errorf("%w: %s has no text", domain.ErrInvalidInput, name)
		}

		logger.Debug("parsed %s: %d paragraphs", name, len(doc.Paragraphs))
		docs = append(docs, doc)
	}
	return docs, nil
}
