// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// ReportList displays stored report summaries in a navigable list.
type ReportList struct {
	reports  []domain.ReportSummary
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewReportList creates a new report list component.
func NewReportList(s *styles.Styles) *ReportList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ReportList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the report list.
func (r *ReportList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ReportList) Update(msg tea.Msg) (*ReportList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "home", "g":
			r.selected = 0
		case "end", "G":
			if len(r.reports) > 0 {
				r.selected = len(r.reports) - 1
			}
		}
	}
	return r, nil
}

// View renders the report list.
func (r *ReportList) View() string {
	if len(r.reports) == 0 {
		return r.styles.Muted.Render("No reports stored. Run 'lexcheck analyse' first.")
	}

	lines := make([]string, 0, len(r.reports)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Reports (%d)", len(r.reports))), "")

	// Each report takes two lines.
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.reports))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderReport(i, &r.reports[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *ReportList) renderReport(index int, s *domain.ReportSummary) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	process := s.Process
	if process == "" {
		process = "(unclassified)"
	}
	maxLen := max(r.width-24, 10)
	if len(process) > maxLen {
		process = process[:maxLen-3] + "..."
	}

	created := s.CreatedAt.Local().Format(time.DateTime)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxLen, process, created))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxLen, process)) +
			r.styles.Muted.Render(created)
	}

	counts := fmt.Sprintf("    %d docs, %d missing, %d issues  %s", s.Documents, s.Missing, s.Issues, s.ID)
	countLine := r.styles.Muted.Render(counts)
	if s.Missing > 0 || s.Issues > 0 {
		countLine = r.styles.Warning.Render(counts)
	}

	return titleLine + "\n" + countLine
}

// SetReports replaces the listed reports and resets the selection.
func (r *ReportList) SetReports(reports []domain.ReportSummary) {
	r.reports = reports
	r.selected = 0
}

// Reports returns the listed reports.
func (r *ReportList) Reports() []domain.ReportSummary {
	return r.reports
}

// Selected returns the index of the selected report.
func (r *ReportList) Selected() int {
	return r.selected
}

// SelectedReport returns the selected summary, or nil when the list is empty.
func (r *ReportList) SelectedReport() *domain.ReportSummary {
	if r.selected < 0 || r.selected >= len(r.reports) {
		return nil
	}
	return &r.reports[r.selected]
}

// MoveUp moves selection up.
func (r *ReportList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ReportList) MoveDown() {
	if r.selected < len(r.reports)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ReportList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of listed reports.
func (r *ReportList) Count() int {
	return len(r.reports)
}
