package services

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// Ensure KnowledgeBaseService implements the interface.
var _ driving.KnowledgeBaseService = (*KnowledgeBaseService)(nil)

// Knowledge-base chunking defaults.
const (
	DefaultKBChunkSize    = 1000
	DefaultKBChunkOverlap = 100
	DefaultEmbedBatchSize = 32

	// DefaultWatchDebounce is the quiet period before changed files are re-indexed.
	DefaultWatchDebounce = 500 * time.Millisecond
)

// KnowledgeBaseService builds the regulation index that grounds detection.
type KnowledgeBaseService struct {
	parser    driven.ParserRegistry
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	batchSize int
	watcher   driven.DirectoryWatcher
	debounce  time.Duration
}

// NewKnowledgeBaseService creates the indexer.
func NewKnowledgeBaseService(
	parser driven.ParserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	batchSize int,
) *KnowledgeBaseService {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &KnowledgeBaseService{
		parser:    parser,
		pipeline:  pipeline,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
		debounce:  DefaultWatchDebounce,
	}
}

// WithWatcher enables Watch. A non-positive debounce uses the default.
func (s *KnowledgeBaseService) WithWatcher(w driven.DirectoryWatcher, debounce time.Duration) *KnowledgeBaseService {
	s.watcher = w
	if debounce > 0 {
		s.debounce = debounce
	}
	return s
}

// Index parses, chunks and embeds every supported file under dir.
// Files are processed in lexical order; a file that fails to parse is
// skipped and reported.
func (s *KnowledgeBaseService) Index(ctx context.Context, dir string) (*driving.IndexStats, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	defer logger.Elapsed("indexing "+dir, time.Now())
	if s.index == nil {
		return nil, domain.ErrRetrievalUnavailable
	}

	files, err := s.collect(dir)
	if err != nil {
		return nil, err
	}

	logger.Section("Knowledge base")
	stats := &driving.IndexStats{}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		source, _ := filepath.Rel(dir, path)
		n, err := s.indexFile(ctx, source, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("skipping %s: %v", source, err)
			stats.Skipped = append(stats.Skipped, source)
			continue
		}

		logger.Info("indexed %s: %d passages", source, n)
		stats.Files++
		stats.Passages += n
	}

	return stats, nil
}

// Watch re-indexes changed files under dir until ctx is cancelled.
// Bursts of changes are coalesced and applied once the tree is quiet.
func (s *KnowledgeBaseService) Watch(ctx context.Context, dir string, onEvent func(driving.WatchEvent)) error {
	if s.watcher == nil {
		return domain.ErrWatchUnavailable
	}
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return domain.ErrRetrievalUnavailable
	}
	if onEvent == nil {
		onEvent = func(driving.WatchEvent) {}
	}

	changes, err := s.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching %s", dir)

	pending := make(map[string]domain.ChangeType)
	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watch %s: watcher stopped", dir)
			}
			pending[change.Path] = change.Type
			timer.Reset(s.debounce)
		case <-timer.C:
			s.applyChanges(ctx, dir, pending, onEvent)
			clear(pending)
		}
	}
}

func (s *KnowledgeBaseService) applyChanges(
	ctx context.Context, dir string, pending map[string]domain.ChangeType, onEvent func(driving.WatchEvent),
) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		if !s.parser.Supports(path) {
			continue
		}
		source, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}

		if pending[path] == domain.ChangeDeleted {
			err := s.index.DeleteSource(ctx, source)
			if err == nil {
				logger.Info("removed %s", source)
			}
			onEvent(driving.WatchEvent{Source: source, Removed: true, Err: err})
			continue
		}

		n, err := s.indexFile(ctx, source, path)
		if err != nil {
			logger.Warn("re-indexing %s: %v", source, err)
		} else {
			logger.Info("re-indexed %s: %d passages", source, n)
		}
		onEvent(driving.WatchEvent{Source: source, Passages: n, Err: err})
	}
}

// Count returns the number of indexed passages.
func (s *KnowledgeBaseService) Count(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, domain.ErrRetrievalUnavailable
	}
	return s.index.Count(ctx)
}

func (s *KnowledgeBaseService) collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !s.parser.Supports(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (s *KnowledgeBaseService) indexFile(ctx context.Context, source, path string) (int, error) {
	paragraphs, err := s.parser.Parse(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}

	doc := domain.NewDocument(source, path, paragraphs)
	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}

	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed: %w", err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("embed: got %d vectors for %d texts", len(vectors), len(texts))
		}
		for i, vec := range vectors {
			chunks[start+i].Embedding = vec
		}
	}

	if err := s.index.DeleteSource(ctx, source); err != nil {
		return 0, fmt.Errorf("replace passages: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := s.index.Add(ctx, source, chunks); err != nil {
		return 0, fmt.Errorf("store passages: %w", err)
	}
	return len(chunks), nil
}
