// Package messages defines the tea.Msg types exchanged between TUI views.
package messages

import (
	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// ViewType identifies which view is active.
type ViewType int

const (
	// ViewReports is the stored report list.
	ViewReports ViewType = iota

	// ViewReportDetail shows a single report.
	ViewReportDetail

	// ViewHelp lists the keybindings.
	ViewHelp
)

// String returns the view name.
func (v ViewType) String() string {
	switch v {
	case ViewReports:
		return "reports"
	case ViewReportDetail:
		return "report"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged requests a switch to another view.
type ViewChanged struct {
	View ViewType
}

// ReportsLoaded carries the result of listing reports.
type ReportsLoaded struct {
	Reports []domain.ReportSummary
	Err     error
}

// ReportSelected is sent when the user opens a report from the list.
type ReportSelected struct {
	ID string
}

// ReportLoaded carries a fully loaded report.
type ReportLoaded struct {
	Report *domain.Report
	Err    error
}

// ErrorOccurred reports an error to the active view.
type ErrorOccurred struct {
	Err error
}

// Quit asks the program to exit.
type Quit struct{}
