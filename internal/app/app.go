// Package app assembles the lexcheck services from settings and adapters.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/lexcheck/internal/adapters/driven/ai"
	"github.com/custodia-labs/lexcheck/internal/adapters/driven/checklist"
	"github.com/custodia-labs/lexcheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexcheck/internal/adapters/driven/output"
	"github.com/custodia-labs/lexcheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexcheck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexcheck/internal/adapters/driven/watcher"
	"github.com/custodia-labs/lexcheck/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/core/services"
	"github.com/custodia-labs/lexcheck/internal/logger"
	"github.com/custodia-labs/lexcheck/internal/parsers"
	"github.com/custodia-labs/lexcheck/internal/postprocessors"
	"github.com/custodia-labs/lexcheck/internal/postprocessors/chunker"
)

// kbPipeline is the post-processor chain applied to knowledge-base files.
var kbPipeline = []string{"chunker", "dedupe"}

// stores are the persistence adapters chosen for one invocation.
type stores struct {
	config  driven.ConfigStore
	prompts driven.PromptStore
	reports driven.ReportStore
	index   driven.VectorIndex
	dir     string
	close   func()
}

// Build wires every service for one CLI invocation.
func Build(_ context.Context, opts cli.Options) (*cli.Services, func(), error) {
	st, err := openStores(opts)
	if err != nil {
		return nil, nil, err
	}

	settingsSvc := services.NewSettingsService(st.config, ai.NewConfigValidator())
	settings, err := settingsSvc.Get()
	if err != nil {
		st.close()
		return nil, nil, err
	}

	aiSvcs, err := openAI(opts.Needs, settingsSvc, settings)
	if err != nil {
		st.close()
		return nil, nil, err
	}

	release := func() {
		aiSvcs.Close()
		st.close()
	}

	checklistPath := settings.ChecklistPath
	if checklistPath == "" && st.dir != "" {
		checklistPath = filepath.Join(st.dir, checklist.DefaultFileName)
	}

	a := settings.Analysis
	registry := parsers.NewDefaultRegistry()
	loader := checklist.NewLoader(checklistPath)
	caller := services.NewModelCaller(aiSvcs.LLM, services.ModelCallerConfigFrom(a))

	var retriever driven.Retriever
	if aiSvcs.Embedding != nil {
		retriever = services.NewRetrievalService(aiSvcs.Embedding, st.index)
	}

	detector := services.NewIssueDetector(
		caller,
		retriever,
		chunker.New(chunker.WithChunkSize(a.ChunkSize), chunker.WithOverlap(a.ChunkOverlap)),
		st.prompts,
		services.DetectorConfig{TopK: a.TopK, Workers: a.Workers, Policy: a.NoIssuePolicy},
	)

	analysis := services.NewAnalysisService(
		registry,
		loader,
		services.NewProcessClassifier(caller, st.prompts, a.PrefixChars),
		services.NewChecklistMatcher(caller, st.prompts, a.Workers),
		detector,
		services.NewReportAggregator(registry, loader, st.reports, a.MissingDocsPolicy),
		output.Factory,
		services.AnalysisConfig{ChecklistPath: checklistPath, OutputDir: settings.OutputDir},
	)

	pipeline, err := buildKBPipeline()
	if err != nil {
		release()
		return nil, nil, err
	}
	kb := services.NewKnowledgeBaseService(registry, pipeline, aiSvcs.Embedding, st.index, 0).
		WithWatcher(watcher.New(), services.DefaultWatchDebounce)

	return &cli.Services{
		Analysis:      analysis,
		KnowledgeBase: kb,
		Reports:       services.NewReportService(st.reports),
		Settings:      settingsSvc,
	}, release, nil
}

// openStores opens the config, prompt, report and passage stores. With
// NoConfig everything lives in memory and prompts fall back to the built-in
// templates.
func openStores(opts cli.Options) (*stores, error) {
	if opts.NoConfig {
		return &stores{
			config:  memory.NewConfigStore(),
			reports: memory.NewReportStore(),
			index:   memory.NewVectorIndex(),
			close:   func() {},
		}, nil
	}

	dir := opts.ConfigDir
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	config, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}
	db, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	logger.Debug("database: %s", db.Path())

	return &stores{
		config:  config,
		prompts: prompts,
		reports: db.ReportStore(),
		index:   db.PassageIndex(),
		dir:     dir,
		close: func() {
			if err := db.Close(); err != nil {
				logger.Warn("closing database: %v", err)
			}
		},
	}, nil
}

// openAI creates the AI services a command needs. Embeddings are optional
// for analysis: without them detection runs ungrounded.
func openAI(need cli.Need, settingsSvc *services.SettingsService, settings *domain.AppSettings) (*ai.Services, error) {
	svcs := &ai.Services{}

	switch need {
	case cli.NeedLLM:
		if err := settingsSvc.ValidateSettings(settings); err != nil {
			return nil, err
		}
		llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
		if err != nil {
			return nil, err
		}
		svcs.LLM = llm
		logger.Debug("llm: %s (%s)", settings.LLM.Provider, llm.ModelName())

		embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
		if err != nil {
			logger.Warn("%v; issue detection will run without grounding passages", err)
		}
		svcs.Embedding = embedder

	case cli.NeedEmbedding:
		embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
		if err != nil {
			return nil, err
		}
		if embedder == nil {
			return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
		}
		svcs.Embedding = embedder
	}

	return svcs, nil
}

func buildKBPipeline() (*postprocessors.Pipeline, error) {
	return postprocessors.NewDefaultRegistry().BuildPipeline(kbPipeline, map[string]map[string]any{
		"chunker": {
			"chunk_size": services.DefaultKBChunkSize,
			"overlap":    services.DefaultKBChunkOverlap,
		},
	})
}
