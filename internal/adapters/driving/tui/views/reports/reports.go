// Package reports provides the stored report list view.
package reports

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
)

// View lists stored reports and opens the selected one.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	reports driving.ReportService
	list    *list.ReportList

	loading bool
	err     error
	width   int
	height  int
}

// NewView creates a new report list view.
func NewView(ctx context.Context, s *styles.Styles, reports driving.ReportService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		ctx:     ctx,
		styles:  s,
		reports: reports,
		list:    list.NewReportList(s),
		width:   80,
		height:  24,
	}
}

// Init returns the command loading the report list.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	v.loading = true
	ctx, reports := v.ctx, v.reports
	return func() tea.Msg {
		if reports == nil {
			return messages.ReportsLoaded{Err: fmt.Errorf("report service not available")}
		}
		summaries, err := reports.List(ctx)
		return messages.ReportsLoaded{Reports: summaries, Err: err}
	}
}

// Update handles messages for the report list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ReportsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetReports(msg.Reports)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			selected := v.list.SelectedReport()
			if selected == nil {
				return v, nil
			}
			id := selected.ID
			return v, func() tea.Msg { return messages.ReportSelected{ID: id} }
		case "r":
			return v, v.load()
		case "q":
			return v, func() tea.Msg { return messages.Quit{} }
		}
		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}

	return v, nil
}

// View renders the report list view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("lexcheck reports"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading reports..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.list.View())
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	// Title and blank line above the list.
	v.list.SetDimensions(width, height-2)
}

// Count returns the number of listed reports.
func (v *View) Count() int {
	return v.list.Count()
}

// Selected returns the selected summary, or nil.
func (v *View) Selected() *domain.ReportSummary {
	return v.list.SelectedReport()
}

// Loading reports whether a list request is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
