package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// AggregateInput carries the outputs of the earlier pipeline stages.
type AggregateInput struct {
	Process       string
	Documents     []domain.Document
	Checklist     *domain.ChecklistResult
	Detection     *domain.DetectionResult
	ChecklistPath string
}

// ReportAggregator builds the run report and the output document set.
type ReportAggregator struct {
	parser     driven.DocumentParser
	checklists driven.ChecklistSource
	reports    driven.ReportStore
	policy     domain.MissingDocsPolicy
	now        func() time.Time
}

// NewReportAggregator creates an aggregator. reports may be nil, in which
// case reports are only written to the output location.
func NewReportAggregator(
	parser driven.DocumentParser,
	checklists driven.ChecklistSource,
	reports driven.ReportStore,
	policy domain.MissingDocsPolicy,
) *ReportAggregator {
	if !policy.IsValid() {
		policy = domain.MissingDocsSemantic
	}
	return &ReportAggregator{
		parser:     parser,
		checklists: checklists,
		reports:    reports,
		policy:     policy,
		now:        time.Now,
	}
}

// Aggregate writes every uploaded document to out exactly once, annotated
// where issues were found, then writes and stores the report.
func (a *ReportAggregator) Aggregate(ctx context.Context, in AggregateInput, out driven.OutputLocation) (*domain.Report, error) {
	issues := in.Detection.IssuesFound
	if !issues.Computed() {
		issues = domain.NoIssues()
	}

	missing, err := a.missingDocuments(ctx, in, issues)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		ID:                uuid.New().String(),
		Process:           in.Process,
		DocumentsUploaded: domain.DocumentNames(in.Documents),
		RequiredDocuments: nonNil(in.Checklist.Required),
		MissingDocuments:  missing,
		IssuesFound:       issues,
		Annotated:         []string{},
		OutputDir:         out.Dir(),
		CreatedAt:         a.now().UTC(),
	}

	byDoc := issues.ByDocument()
	for _, doc := range in.Documents {
		annotated, err := a.annotate(ctx, doc, byDoc[doc.Name], out)
		if err != nil {
			werr := &domain.AnnotationWriteError{Document: doc.Name, Err: err}
			logger.Warn("%v; copying original", werr)
			if report.AnnotationFailures == nil {
				report.AnnotationFailures = make(map[string]string)
			}
			report.AnnotationFailures[doc.Name] = werr.Error()
		}
		if annotated {
			report.Annotated = append(report.Annotated, doc.Name)
			continue
		}
		if err := out.CopyIn(ctx, doc.Path, doc.Name); err != nil {
			return nil, fmt.Errorf("%w: copy %s: %w", domain.ErrOutputUnwritable, doc.Name, err)
		}
	}

	if err := out.WriteReport(ctx, report); err != nil {
		return nil, fmt.Errorf("%w: write report: %w", domain.ErrOutputUnwritable, err)
	}

	if a.reports != nil {
		if err := a.reports.Save(ctx, report); err != nil {
			if rerr := out.RemoveReport(ctx); rerr != nil {
				logger.Warn("removing report.json after failed save: %v", rerr)
			}
			return nil, fmt.Errorf("save report: %w", err)
		}
	}

	logger.Info("report %s: %d missing documents, %d issues, %d annotated",
		report.ID, len(report.MissingDocuments), report.IssuesFound.Len(), len(report.Annotated))
	return report, nil
}

// missingDocuments applies the missing-documents policy.
func (a *ReportAggregator) missingDocuments(ctx context.Context, in AggregateInput, issues domain.IssuesFound) ([]string, error) {
	if a.policy != domain.MissingDocsExact || issues.None() {
		return nonNil(in.Checklist.Missing), nil
	}

	checklist, err := a.checklists.Load(ctx, in.ChecklistPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrChecklistUnreadable, err)
	}

	names := domain.DocumentNames(in.Documents)
	missing := []string{}
	for _, req := range checklist.RequiredDocuments(in.Process) {
		if !slices.Contains(names, req) {
			missing = append(missing, req)
		}
	}
	return missing, nil
}

// annotate writes an annotated copy of doc when it has issues with a
// usable section. It reports whether the annotated copy was written.
func (a *ReportAggregator) annotate(ctx context.Context, doc domain.Document, issues []domain.Issue, out driven.OutputLocation) (bool, error) {
	annotations := make([]domain.Annotation, 0, len(issues))
	for _, issue := range issues {
		if issue.Section == "" {
			continue
		}
		annotations = append(annotations, domain.Annotation{Match: issue.Section, Note: issue.Note()})
	}
	if len(annotations) == 0 {
		return false, nil
	}

	if err := a.parser.AnnotateAndSave(ctx, doc.Path, annotations, out.PathFor(doc.Name)); err != nil {
		return false, err
	}
	return true, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
