package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
)

type mockAnalysisService struct {
	report *domain.Report
	err    error
	got    domain.AnalysisRequest
}

func (m *mockAnalysisService) Analyse(_ context.Context, req domain.AnalysisRequest) (*domain.Report, error) {
	m.got = req
	if req.Progress != nil {
		req.Progress(domain.Progress{Step: domain.StepParsing, Percent: 5})
		req.Progress(domain.Progress{Step: domain.StepDone, Percent: 100})
	}
	return m.report, m.err
}

type mockKnowledgeBaseService struct {
	stats    *driving.IndexStats
	count    int
	err      error
	dir      string
	events   []driving.WatchEvent
	watchErr error
	watched  bool
}

func (m *mockKnowledgeBaseService) Index(_ context.Context, dir string) (*driving.IndexStats, error) {
	m.dir = dir
	return m.stats, m.err
}

func (m *mockKnowledgeBaseService) Watch(_ context.Context, _ string, onEvent func(driving.WatchEvent)) error {
	m.watched = true
	for _, e := range m.events {
		onEvent(e)
	}
	return m.watchErr
}

func (m *mockKnowledgeBaseService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

type mockReportService struct {
	report    *domain.Report
	summaries []domain.ReportSummary
	err       error
}

func (m *mockReportService) Get(_ context.Context, _ string) (*domain.Report, error) {
	return m.report, m.err
}

func (m *mockReportService) List(_ context.Context) ([]domain.ReportSummary, error) {
	return m.summaries, m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
	llm         domain.AIProvider
	llmModel    string
	llmKey      string
	embed       domain.AIProvider
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, _, _ string) error {
	m.embed = provider
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm, m.llmModel, m.llmKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) Path() string {
	return "/home/test/.lexcheck/config.toml"
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.pingErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.pingErr
}

// runCommand executes the root command with args and returns its combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// withServices swaps the package services for the duration of a test.
func withServices(t *testing.T, s Services) {
	t.Helper()

	oldA, oldK, oldR, oldS := analysisService, knowledgeBaseService, reportService, settingsService
	analysisService = s.Analysis
	knowledgeBaseService = s.KnowledgeBase
	reportService = s.Reports
	settingsService = s.Settings
	t.Cleanup(func() {
		analysisService, knowledgeBaseService, reportService, settingsService = oldA, oldK, oldR, oldS
	})
}
