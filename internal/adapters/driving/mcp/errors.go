// Package mcp provides an MCP (Model Context Protocol) server adapter for lexcheck.
// It lets AI assistants run compliance analyses and read stored reports.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

// ErrMissingReportService is returned when the report service is not provided.
var ErrMissingReportService = errors.New("mcp: report service is required")
