package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/views/reportdetail"
	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui/views/reports"
)

// App is the report browser following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	statusBar   *status.Bar
	reportsView *reports.View
	detailView  *reportdetail.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new report browser with the given ports.
func NewApp(ctx context.Context, ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         ctx,
		styles:      s,
		keymap:      km,
		statusBar:   status.NewBar(s, km),
		reportsView: reports.NewView(ctx, s, ports.Reports),
		detailView:  reportdetail.NewView(s, ports.Reports),
		currentView: messages.ViewReports,
	}, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.statusBar.SetState(status.StateLoading)
	return tea.Batch(
		tea.SetWindowTitle("lexcheck - Reports"),
		a.reportsView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ReportsLoaded:
		a.reportsView, cmd = a.reportsView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		} else {
			a.err = nil
			a.statusBar.SetState(status.StateReady)
			a.statusBar.SetReportCount(a.reportsView.Count())
		}
		return a, cmd

	case messages.ReportSelected:
		a.currentView = messages.ViewReportDetail
		a.statusBar.SetState(status.StateLoading)
		return a, a.detailView.Load(a.ctx, msg.ID)

	case messages.ReportLoaded:
		a.detailView, cmd = a.detailView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		} else if msg.Report != nil {
			a.err = nil
			a.statusBar.SetState(status.StateDetail)
			a.statusBar.SetMessage(msg.Report.Process)
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewReports {
			a.statusBar.SetState(status.StateReady)
			a.statusBar.SetMessage("")
		}
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewHelp:
		switch msg.String() {
		case "esc", "?", "q":
			a.currentView = messages.ViewReports
		}
		return a, nil

	case messages.ViewReportDetail:
		if msg.String() == "q" {
			return a, tea.Quit
		}
		a.detailView, cmd = a.detailView.Update(msg)
		return a, cmd

	case messages.ViewReports:
		if msg.String() == "?" {
			a.currentView = messages.ViewHelp
			return a, nil
		}
		a.reportsView, cmd = a.reportsView.Update(msg)
		if a.reportsView.Loading() {
			a.statusBar.SetState(status.StateLoading)
		}
		return a, cmd
	}
	return a, nil
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewReportDetail:
		body = a.detailView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.reportsView.View()
	}

	// Pin the status bar to the last line.
	lines := strings.Count(body, "\n") + 1
	if pad := a.height - lines - 1; pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return body + "\n" + a.statusBar.View()
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-8s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back to reports"))
	return b.String()
}

// Run starts the report browser and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	// The status bar takes the last line.
	a.reportsView.SetDimensions(width, height-1)
	a.detailView.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}
