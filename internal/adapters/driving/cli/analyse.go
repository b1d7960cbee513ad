package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

var analyseCmd = &cobra.Command{
	Use:     "analyse <file>...",
	Aliases: []string{"analyze"},
	Short:   "Analyse documents against the compliance checklist",
	Long: `Analyse classifies the documents into a legal process, checks them
against the checklist's required documents and scans every document for
legal issues.

Annotated copies of the documents and report.json are written to the
output directory. Supported formats: .docx, .txt, .md, .html and .pdf
(PDF documents are copied without annotations).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyse,
}

func init() {
	analyseCmd.Flags().StringP("checklist", "c", "", "Checklist file (.json, .yaml); overrides checklist.path")
	analyseCmd.Flags().StringP("out", "o", "", "Output directory; overrides output.dir")
	analyseCmd.Flags().Bool("json", false, "Print the report as JSON")
	needs(analyseCmd, NeedLLM)
	rootCmd.AddCommand(analyseCmd)
}

func runAnalyse(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	checklist, err := cmd.Flags().GetString("checklist")
	if err != nil {
		return fmt.Errorf("getting checklist flag: %w", err)
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("getting out flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	progress := cmd.ErrOrStderr()
	report, err := analysisService.Analyse(cmd.Context(), domain.AnalysisRequest{
		Paths:         args,
		OutputDir:     out,
		ChecklistPath: checklist,
		Progress: func(p domain.Progress) {
			fmt.Fprintf(progress, "[%3d%%] %s\n", p.Percent, p.Step)
		},
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printReport(cmd, report)
	return nil
}

// printReport renders a report for the terminal.
func printReport(cmd *cobra.Command, r *domain.Report) {
	cmd.Printf("Report %s\n", r.ID)
	cmd.Printf("Process: %s\n", r.Process)
	if r.OutputDir != "" {
		cmd.Printf("Output: %s\n", r.OutputDir)
	}
	cmd.Println()

	cmd.Printf("Documents uploaded (%d)\n", len(r.DocumentsUploaded))
	for _, name := range r.DocumentsUploaded {
		cmd.Printf("  - %s\n", name)
	}

	cmd.Printf("Missing documents (%d)\n", len(r.MissingDocuments))
	for _, name := range r.MissingDocuments {
		cmd.Printf("  - %s\n", name)
	}
	cmd.Println()

	if r.IssuesFound.None() || !r.IssuesFound.Computed() {
		cmd.Println("Issues: none found")
	} else {
		cmd.Printf("Issues (%d)\n", r.IssuesFound.Len())
		for _, issue := range r.IssuesFound.Issues() {
			cmd.Printf("  [%s] %s: %s\n", issue.Severity, issue.Document, issue.Issue)
			cmd.Printf("      Section: %s\n", truncate(issue.Section, 120))
			cmd.Printf("      Suggestion: %s\n", issue.Suggestion)
		}
	}

	if len(r.AnnotationFailures) > 0 {
		cmd.Println()
		cmd.Println("Copied without annotations:")
		for _, name := range slices.Sorted(maps.Keys(r.AnnotationFailures)) {
			cmd.Printf("  - %s: %s\n", name, r.AnnotationFailures[name])
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
