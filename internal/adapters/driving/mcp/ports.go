package mcp

import (
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// Analysis runs compliance analyses.
	Analysis driving.AnalysisService

	// Reports reads persisted reports.
	Reports driving.ReportService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	if p.Reports == nil {
		return ErrMissingReportService
	}
	return nil
}
