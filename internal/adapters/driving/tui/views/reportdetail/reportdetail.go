// Package reportdetail provides the scrolling view of a single report.
package reportdetail

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
)

// View is the report detail view.
type View struct {
	styles  *styles.Styles
	reports driving.ReportService

	id           string
	report       *domain.Report
	lines        []string
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a new report detail view.
func NewView(s *styles.Styles, reports driving.ReportService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		reports: reports,
		width:   80,
		height:  24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load resets the view and returns a command fetching the report.
func (v *View) Load(ctx context.Context, id string) tea.Cmd {
	v.id = id
	v.report = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true

	reports := v.reports
	return func() tea.Msg {
		if reports == nil {
			return messages.ReportLoaded{Err: fmt.Errorf("report service not available")}
		}
		report, err := reports.Get(ctx, id)
		return messages.ReportLoaded{Report: report, Err: err}
	}
}

// Update handles messages for the report detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ReportLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.report = msg.Report
		v.err = nil
		v.layout()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewReports}
		}
	}
	return v, nil
}

// layout renders the report body and wraps it to the view width.
func (v *View) layout() {
	if v.report == nil {
		v.lines = nil
		return
	}

	contentWidth := max(v.width-4, 20)
	raw := strings.Split(Render(v.report), "\n")
	v.lines = make([]string, 0, len(raw))
	for _, line := range raw {
		for len(line) > contentWidth {
			v.lines = append(v.lines, line[:contentWidth])
			line = line[contentWidth:]
		}
		v.lines = append(v.lines, line)
	}
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

func (v *View) visibleLines() int {
	// Title, separator, scroll indicator and padding.
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the report detail view.
func (v *View) View() string {
	var b strings.Builder

	title := "Report"
	if v.id != "" {
		title = "Report " + v.id
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading report..."))
		return b.String()
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		return b.String()
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No report)"))
		return b.String()
	}

	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for _, line := range v.lines[v.scrollOffset:end] {
		b.WriteString(v.styleLine(line))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		percentage := 0
		if v.maxScrollOffset() > 0 {
			percentage = v.scrollOffset * 100 / v.maxScrollOffset()
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage, v.scrollOffset+1, end, len(v.lines))))
	}

	return b.String()
}

// styleLine colours section headings and severity lines.
func (v *View) styleLine(line string) string {
	switch {
	case strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " "):
		return v.styles.Subtitle.Render(line)
	case strings.HasPrefix(line, "  [High]"):
		return v.styles.Error.Render(line)
	case strings.HasPrefix(line, "  [Medium]"):
		return v.styles.Warning.Render(line)
	case strings.HasPrefix(line, "    "):
		return v.styles.Muted.Render(line)
	default:
		return v.styles.Normal.Render(line)
	}
}

// SetDimensions sets the view dimensions and re-wraps the report.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.layout()
}

// Report returns the loaded report.
func (v *View) Report() *domain.Report {
	return v.report
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Render formats a report as plain text, issues grouped by document.
func Render(r *domain.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Process: %s\n", r.Process)
	fmt.Fprintf(&b, "Created: %s\n", r.CreatedAt.Local().Format(time.DateTime))
	if r.OutputDir != "" {
		fmt.Fprintf(&b, "Output: %s\n", r.OutputDir)
	}

	b.WriteString("\nDocuments uploaded:\n")
	writeList(&b, r.DocumentsUploaded)

	b.WriteString("\nRequired documents:\n")
	writeList(&b, r.RequiredDocuments)

	b.WriteString("\nMissing documents:\n")
	writeList(&b, r.MissingDocuments)

	b.WriteString("\nIssues:\n")
	if !r.IssuesFound.Computed() || r.IssuesFound.None() {
		b.WriteString("  " + domain.NoIssuesMarker + "\n")
	} else {
		grouped := r.IssuesFound.ByDocument()
		for _, doc := range slices.Sorted(maps.Keys(grouped)) {
			fmt.Fprintf(&b, "  %s\n", doc)
			for _, issue := range grouped[doc] {
				fmt.Fprintf(&b, "  [%s] %s\n", issue.Severity, issue.Issue)
				if issue.Section != "" {
					fmt.Fprintf(&b, "    Section: %s\n", issue.Section)
				}
				if issue.Suggestion != "" {
					fmt.Fprintf(&b, "    Suggestion: %s\n", issue.Suggestion)
				}
			}
		}
	}

	if len(r.AnnotationFailures) > 0 {
		b.WriteString("\nAnnotation failures:\n")
		for _, doc := range slices.Sorted(maps.Keys(r.AnnotationFailures)) {
			fmt.Fprintf(&b, "  %s: %s\n", doc, r.AnnotationFailures[doc])
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
