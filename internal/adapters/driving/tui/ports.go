// Package tui provides an interactive terminal browser for stored reports.
// It is a driving adapter alongside the CLI and MCP server.
package tui

import (
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Reports reads persisted analysis reports.
	Reports driving.ReportService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Reports == nil {
		return ErrMissingReportService
	}
	return nil
}
