// Package cli provides the cobra command tree for lexcheck.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// Need names the AI services a command requires before it can run.
type Need int

// AI requirements, from least to most.
const (
	NeedNone Need = iota
	NeedEmbedding
	NeedLLM
)

// needAnnotation is the cobra annotation key carrying a command's Need.
const needAnnotation = "lexcheck/needs"

// Options configures service construction for a command invocation.
type Options struct {
	// ConfigDir overrides ~/.lexcheck.
	ConfigDir string

	// NoConfig keeps settings, reports and the index in memory.
	NoConfig bool

	// Needs lists the AI services the command will use.
	Needs Need
}

// Services holds the driving ports the commands call.
type Services struct {
	Analysis      driving.AnalysisService
	KnowledgeBase driving.KnowledgeBaseService
	Reports       driving.ReportService
	Settings      driving.SettingsService
}

// BootstrapFunc builds the services for one invocation. The returned
// cleanup releases stores and AI clients.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	version   = "dev"
	bootstrap BootstrapFunc
	cleanup   func()

	analysisService      driving.AnalysisService
	knowledgeBaseService driving.KnowledgeBaseService
	reportService        driving.ReportService
	settingsService      driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "lexcheck",
	Short: "Check legal documents against a compliance checklist",
	Long: `lexcheck classifies a set of legal documents into a legal process,
reports which required documents are missing, and flags potential legal
issues in each document, grounded in an indexed regulation knowledge base.

Annotated copies of the documents and a report.json are written to the
output directory.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print pipeline progress and debug logs")
	rootCmd.PersistentFlags().String("config-dir", "", "Configuration directory (default ~/.lexcheck)")
	rootCmd.PersistentFlags().Bool("no-config", false, "Use in-memory settings and storage")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap installs the service builder run before each command.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// needs marks cmd as requiring the given AI services.
func needs(cmd *cobra.Command, n Need) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	switch n {
	case NeedLLM:
		cmd.Annotations[needAnnotation] = "llm"
	case NeedEmbedding:
		cmd.Annotations[needAnnotation] = "embedding"
	}
}

func needOf(cmd *cobra.Command) Need {
	switch cmd.Annotations[needAnnotation] {
	case "llm":
		return NeedLLM
	case "embedding":
		return NeedEmbedding
	default:
		return NeedNone
	}
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose") //nolint:errcheck // flag is always registered
	logger.SetVerbose(verbose)

	if bootstrap == nil {
		return nil
	}

	configDir, _ := cmd.Flags().GetString("config-dir") //nolint:errcheck // flag is always registered
	noConfig, _ := cmd.Flags().GetBool("no-config")     //nolint:errcheck // flag is always registered

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svcs, release, err := bootstrap(ctx, Options{
		ConfigDir: configDir,
		NoConfig:  noConfig,
		Needs:     needOf(cmd),
	})
	if err != nil {
		return err
	}
	if svcs == nil {
		return errors.New("bootstrap returned no services")
	}

	analysisService = svcs.Analysis
	knowledgeBaseService = svcs.KnowledgeBase
	reportService = svcs.Reports
	settingsService = svcs.Settings
	cleanup = release
	return nil
}
