package domain

import "time"

// Report is the immutable result of one analysis run.
type Report struct {
	ID                 string            `json:"id"`
	Process            string            `json:"process"`
	DocumentsUploaded  []string          `json:"documents_uploaded"`
	RequiredDocuments  []string          `json:"required_documents"`
	MissingDocuments   []string          `json:"missing_documents"`
	IssuesFound        IssuesFound       `json:"issues_found"`
	Annotated          []string          `json:"annotated_documents,omitempty"`
	AnnotationFailures map[string]string `json:"annotation_failures,omitempty"`
	OutputDir          string            `json:"output_dir,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// ReportSummary is a lightweight listing entry for stored reports.
type ReportSummary struct {
	ID        string
	Process   string
	Documents int
	Missing   int
	Issues    int
	CreatedAt time.Time
}

// Summary returns the listing entry for the report.
func (r *Report) Summary() ReportSummary {
	return ReportSummary{
		ID:        r.ID,
		Process:   r.Process,
		Documents: len(r.DocumentsUploaded),
		Missing:   len(r.MissingDocuments),
		Issues:    r.IssuesFound.Len(),
		CreatedAt: r.CreatedAt,
	}
}

// Progress reports where a run currently is.
type Progress struct {
	Step    string
	Percent int
}

// ProgressFunc receives progress updates for a single run.
type ProgressFunc func(Progress)

// Progress steps of an analysis run.
const (
	StepParsing     = "Parsing documents"
	StepClassifying = "Identifying legal process"
	StepMatching    = "Checking required documents"
	StepDetecting   = "Scanning for legal issues"
	StepAnnotating  = "Annotating documents"
	StepDone        = "Done"
)

// AnalysisRequest describes one analysis run.
type AnalysisRequest struct {
	// Paths are the uploaded documents to analyse.
	Paths []string

	// OutputDir receives the annotated copies and report.json.
	OutputDir string

	// ChecklistPath overrides the configured checklist file.
	ChecklistPath string

	// Progress receives step updates; may be nil.
	Progress ProgressFunc
}

// Annotation pairs paragraph match text with the note appended to it.
type Annotation struct {
	Match string
	Note  string
}
