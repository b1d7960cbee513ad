package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// AnalyseInput is the input schema for the analyse_documents tool.
type AnalyseInput struct {
	Paths     []string `json:"paths" jsonschema:"absolute paths of the documents to analyse"`
	OutputDir string   `json:"output_dir,omitempty" jsonschema:"directory for annotated copies and report.json"`
	Checklist string   `json:"checklist,omitempty" jsonschema:"checklist file overriding the configured one"`
}

// AnalyseOutput is the output schema for the analyse_documents tool.
type AnalyseOutput struct {
	ReportID          string         `json:"report_id"`
	Process           string         `json:"process"`
	DocumentsUploaded []string       `json:"documents_uploaded"`
	RequiredDocuments []string       `json:"required_documents"`
	MissingDocuments  []string       `json:"missing_documents"`
	NoIssues          bool           `json:"no_issues"`
	Issues            []domain.Issue `json:"issues,omitempty"`
	OutputDir         string         `json:"output_dir,omitempty"`
}

// ListReportsInput is the input schema for the list_reports tool.
type ListReportsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of reports to return (default 20)"`
}

// ListReportsOutput is the output schema for the list_reports tool.
type ListReportsOutput struct {
	Reports []ReportSummaryOutput `json:"reports"`
	Count   int                   `json:"count"`
}

// ReportSummaryOutput is one stored report in a listing.
type ReportSummaryOutput struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	Process   string    `json:"process"`
	Documents int       `json:"documents"`
	Missing   int       `json:"missing"`
	Issues    int       `json:"issues"`
	CreatedAt time.Time `json:"created_at"`
}

const defaultListLimit = 20

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyse_documents",
		Description: "Classify legal documents into a legal process, list missing required documents and flag legal issues",
	}, s.handleAnalyse)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_reports",
		Description: "List stored analysis reports, newest first",
	}, s.handleListReports)
}

// handleAnalyse handles the analyse_documents tool invocation.
func (s *Server) handleAnalyse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyseInput,
) (*mcp.CallToolResult, AnalyseOutput, error) {
	report, err := s.ports.Analysis.Analyse(ctx, domain.AnalysisRequest{
		Paths:         input.Paths,
		OutputDir:     input.OutputDir,
		ChecklistPath: input.Checklist,
	})
	if err != nil {
		return nil, AnalyseOutput{}, err
	}

	return nil, AnalyseOutput{
		ReportID:          report.ID,
		Process:           report.Process,
		DocumentsUploaded: report.DocumentsUploaded,
		RequiredDocuments: report.RequiredDocuments,
		MissingDocuments:  report.MissingDocuments,
		NoIssues:          report.IssuesFound.None(),
		Issues:            report.IssuesFound.Issues(),
		OutputDir:         report.OutputDir,
	}, nil
}

// handleListReports handles the list_reports tool invocation.
func (s *Server) handleListReports(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListReportsInput,
) (*mcp.CallToolResult, ListReportsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	summaries, err := s.ports.Reports.List(ctx)
	if err != nil {
		return nil, ListReportsOutput{}, err
	}
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}

	output := ListReportsOutput{
		Reports: make([]ReportSummaryOutput, len(summaries)),
		Count:   len(summaries),
	}
	for i, sum := range summaries {
		output.Reports[i] = ReportSummaryOutput{
			ID:        sum.ID,
			URI:       reportURI(sum.ID),
			Process:   sum.Process,
			Documents: sum.Documents,
			Missing:   sum.Missing,
			Issues:    sum.Issues,
			CreatedAt: sum.CreatedAt,
		}
	}

	return nil, output, nil
}
