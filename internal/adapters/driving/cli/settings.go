package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

var errNoSettingsService = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change configuration",
	Long: `Show the effective configuration, or configure the model providers.

Settings are stored in config.toml in the config directory. API keys may
instead come from LEXCHECK_LLM_API_KEY, LEXCHECK_EMBEDDING_API_KEY or the
provider variables (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY).`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Configure the LLM and embedding providers interactively",
	Args:  cobra.NoArgs,
	RunE:  runSettingsWizard,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the LLM used for classification, matching and issue detection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettingsService
		}
		return promptProvider(cmd, newPrompter(cmd), llmStep())
	},
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding model for the regulation knowledge base",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettingsService
		}
		return promptProvider(cmd, newPrompter(cmd), embeddingStep())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsWizardCmd, settingsLLMCmd, settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	cmd.Printf("Settings (%s)\n\n", settingsService.Path())

	llm := settings.LLM
	printProvider(cmd, "LLM", llm.Provider, llm.Model, llm.BaseURL, llm.APIKey, llm.IsConfigured())
	emb := settings.Embedding
	printProvider(cmd, "Embedding", emb.Provider, emb.Model, emb.BaseURL, emb.APIKey, emb.IsConfigured())

	a := settings.Analysis
	rate := "off"
	if a.RequestsPerSecond > 0 {
		rate = strconv.FormatFloat(a.RequestsPerSecond, 'g', -1, 64) + " requests/s"
	}
	cmd.Println("[Analysis]")
	cmd.Printf("  Chunk size: %d (overlap %d)\n", a.ChunkSize, a.ChunkOverlap)
	cmd.Printf("  Grounding passages: %d\n", a.TopK)
	cmd.Printf("  Classification prefix: %d chars\n", a.PrefixChars)
	cmd.Printf("  Workers: %d\n", a.Workers)
	cmd.Printf("  Call timeout: %s, retries: %d\n", a.CallTimeout, a.MaxRetries)
	cmd.Printf("  Rate limit: %s\n", rate)
	cmd.Printf("  No-issue policy: %s\n", a.NoIssuePolicy)
	cmd.Printf("  Missing documents: %s\n\n", a.MissingDocsPolicy)

	checklist := settings.ChecklistPath
	if checklist == "" {
		checklist = "(built-in)"
	}
	cmd.Println("[Paths]")
	cmd.Printf("  Checklist: %s\n", checklist)
	cmd.Printf("  Output: %s\n\n", settings.OutputDir)

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'lexcheck settings wizard' to fix configuration issues.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func printProvider(cmd *cobra.Command, title string, p domain.AIProvider, model, baseURL, apiKey string, ok bool) {
	cmd.Printf("[%s]\n", title)
	if !p.IsValid() {
		cmd.Println("  Provider: (none)")
		cmd.Println()
		return
	}
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model: %s\n", model)
	if p.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		key := "(not set)"
		if apiKey != "" {
			key = maskAPIKey(apiKey)
		}
		cmd.Printf("  API Key: %s\n", key)
	}
	if !ok {
		cmd.Println("  Status: incomplete")
	}
	cmd.Println()
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	in := newPrompter(cmd)

	cmd.Println("Step 1/2: LLM")
	cmd.Println("Every analysis step calls the LLM.")
	if err := promptProvider(cmd, in, llmStep()); err != nil {
		return err
	}

	cmd.Println("Step 2/2: Embeddings")
	cmd.Println("Embeddings ground issue detection in the regulation knowledge base.")
	if in.confirm(cmd, "Configure an embedding provider?", true) {
		if err := promptProvider(cmd, in, embeddingStep()); err != nil {
			return err
		}
	} else {
		cmd.Println("Skipped. Issue detection will run without grounding passages.")
		cmd.Println()
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		return nil
	}
	cmd.Println("All settings are valid and saved.")
	return nil
}

// providerStep describes one provider prompt sequence.
type providerStep struct {
	kind      string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	set       func(domain.AIProvider, string, string) error
	ping      func() error
}

func llmStep() providerStep {
	return providerStep{
		kind:      "LLM",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		ping:      settingsService.ValidateLLMConfig,
	}
}

func embeddingStep() providerStep {
	return providerStep{
		kind:      "embedding",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		ping:      settingsService.ValidateEmbeddingConfig,
	}
}

// promptProvider asks for provider, model and key, saves them, then pings
// the provider. A failed ping keeps the saved settings.
func promptProvider(cmd *cobra.Command, in *prompter, step providerStep) error {
	cmd.Printf("Select %s provider:\n", step.kind)
	for i, p := range step.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	provider := step.providers[parseChoice(in.ask(cmd, "Choice [1]: "), len(step.providers), 1)-1]

	model := in.ask(cmd, fmt.Sprintf("Model [%s]: ", step.models[provider]))
	if model == "" {
		model = step.models[provider]
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		apiKey = in.secret(cmd, "API key: ")
		if apiKey == "" {
			return fmt.Errorf("%s requires an API key", provider.Description())
		}
	}

	if err := step.set(provider, model, apiKey); err != nil {
		return fmt.Errorf("saving %s provider: %w", step.kind, err)
	}

	cmd.Print("Validating configuration... ")
	if err := step.ping(); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("%s provider saved but unreachable: %w", step.kind, err)
	}
	cmd.Println("OK")
	cmd.Printf("%s provider: %s (%s)\n\n", step.kind, provider.Description(), model)
	return nil
}

// prompter reads answers from the command's input.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{in: in, reader: bufio.NewReader(in)}
}

func (p *prompter) ask(cmd *cobra.Command, question string) string {
	cmd.Print(question)
	line, _ := p.reader.ReadString('\n') //nolint:errcheck // EOF yields the default answer
	return strings.TrimSpace(line)
}

func (p *prompter) confirm(cmd *cobra.Command, question string, def bool) bool {
	hint := " [y/N]: "
	if def {
		hint = " [Y/n]: "
	}
	switch strings.ToLower(p.ask(cmd, question+hint)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// secret reads without echo on a terminal and falls back to a plain line.
func (p *prompter) secret(cmd *cobra.Command, question string) string {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.ask(cmd, question)
	}
	cmd.Print(question)
	b, err := term.ReadPassword(int(f.Fd()))
	cmd.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// parseChoice returns a 1-based menu index, or def for anything out of range.
func parseChoice(input string, n, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v < 1 || v > n {
		return def
	}
	return v
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
