package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexcheck/internal/adapters/driving/tui"
)

var reportBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored reports in an interactive terminal UI",
	Long: `Browse stored analysis reports in an interactive terminal UI.

Controls:
  ↑/k, ↓/j - Navigate reports / scroll
  Enter    - Open report
  r        - Refresh list
  Esc      - Back to list
  ?        - Help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runReportBrowse,
}

func init() {
	reportCmd.AddCommand(reportBrowseCmd)
}

func runReportBrowse(cmd *cobra.Command, _ []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(cmd.Context(), &tui.Ports{Reports: reportService})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
