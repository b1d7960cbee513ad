package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
)

// kbFixture writes regulation files to a temp dir and registers their
// paragraphs with the mock parser.
func kbFixture(t *testing.T, files map[string][]string) (string, *mockParser) {
	t.Helper()
	dir := t.TempDir()
	parser := newMockParser()
	for name, paras := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
		parser.docs[path] = paras
	}
	return dir, parser
}

func TestKnowledgeBaseService_Index(t *testing.T) {
	dir, parser := kbFixture(t, map[string][]string{
		"companies.txt":       {"Article 1", "Article 2", "Article 3"},
		"employment/law.docx": {"Section 1"},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("x"), 0600))

	index := newMockIndex()
	embedder := &mockEmbedder{}
	svc := NewKnowledgeBaseService(parser, mockPipeline{}, embedder, index, 2)

	stats, err := svc.Index(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 4, stats.Passages)
	assert.Empty(t, stats.Skipped)
	assert.Equal(t, 3, embedder.batches, "three chunks in batches of two plus one chunk")

	require.Len(t, index.bySource["companies.txt"], 3)
	assert.NotEmpty(t, index.bySource["companies.txt"][0].Embedding)
	assert.Len(t, index.bySource[filepath.Join("employment", "law.docx")], 1)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestKnowledgeBaseService_ReindexReplacesSource(t *testing.T) {
	dir, parser := kbFixture(t, map[string][]string{"companies.txt": {"a", "b"}})
	index := newMockIndex()
	svc := NewKnowledgeBaseService(parser, mockPipeline{}, &mockEmbedder{}, index, 0)

	_, err := svc.Index(context.Background(), dir)
	require.NoError(t, err)
	_, err = svc.Index(context.Background(), dir)
	require.NoError(t, err)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestKnowledgeBaseService_SkipsUnparseableFiles(t *testing.T) {
	dir, parser := kbFixture(t, map[string][]string{
		"bad.docx":  {"ignored"},
		"good.docx": {"kept"},
	})
	parser.parseErr[filepath.Join(dir, "bad.docx")] = errors.New("not a zip")
	index := newMockIndex()
	svc := NewKnowledgeBaseService(parser, mockPipeline{}, &mockEmbedder{}, index, 0)

	stats, err := svc.Index(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, []string{"bad.docx"}, stats.Skipped)
	assert.NotContains(t, index.bySource, "bad.docx")
}

func TestKnowledgeBaseService_Unavailable(t *testing.T) {
	svc := NewKnowledgeBaseService(newMockParser(), mockPipeline{}, nil, newMockIndex(), 0)
	_, err := svc.Index(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	svc = NewKnowledgeBaseService(newMockParser(), mockPipeline{}, &mockEmbedder{}, nil, 0)
	_, err = svc.Count(context.Background())
	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
}

func TestKnowledgeBaseService_MissingDir(t *testing.T) {
	svc := NewKnowledgeBaseService(newMockParser(), mockPipeline{}, &mockEmbedder{}, newMockIndex(), 0)
	_, err := svc.Index(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

type mockWatcher struct {
	changes chan domain.FileChange
	err     error
}

func (m *mockWatcher) Watch(_ context.Context, _ string) (<-chan domain.FileChange, error) {
	return m.changes, m.err
}

func TestKnowledgeBaseService_Watch(t *testing.T) {
	dir, parser := kbFixture(t, map[string][]string{
		"companies.txt": {"Article 1", "Article 2"},
	})
	index := newMockIndex()
	index.bySource["old.txt"] = []domain.Chunk{{Content: "stale"}}
	watcher := &mockWatcher{changes: make(chan domain.FileChange, 8)}
	svc := NewKnowledgeBaseService(parser, mockPipeline{}, &mockEmbedder{}, index, 0).
		WithWatcher(watcher, 10*time.Millisecond)

	// Queue a burst before watching starts so it lands in one batch.
	companies := filepath.Join(dir, "companies.txt")
	watcher.changes <- domain.FileChange{Path: companies, Type: domain.ChangeCreated}
	watcher.changes <- domain.FileChange{Path: companies, Type: domain.ChangeUpdated}
	watcher.changes <- domain.FileChange{Path: filepath.Join(dir, "old.txt"), Type: domain.ChangeDeleted}
	watcher.changes <- domain.FileChange{Path: filepath.Join(dir, "image.png"), Type: domain.ChangeCreated}

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan driving.WatchEvent, 8)
	done := make(chan error, 1)
	go func() {
		done <- svc.Watch(ctx, dir, func(e driving.WatchEvent) { events <- e })
	}()

	var got []driving.WatchEvent
	for len(got) < 2 {
		select {
		case e := <-events:
			got = append(got, e)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for watch events")
		}
	}

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, driving.WatchEvent{Source: "companies.txt", Passages: 2}, got[0])
	assert.Equal(t, driving.WatchEvent{Source: "old.txt", Removed: true}, got[1])
	assert.Len(t, index.bySource["companies.txt"], 2)
	assert.NotContains(t, index.bySource, "old.txt")
	assert.Empty(t, events, "unsupported files produce no events")
}

func TestKnowledgeBaseService_WatchReportsFailures(t *testing.T) {
	dir, parser := kbFixture(t, map[string][]string{"bad.docx": {"x"}})
	parser.parseErr[filepath.Join(dir, "bad.docx")] = errors.New("not a zip")
	watcher := &mockWatcher{changes: make(chan domain.FileChange, 1)}
	svc := NewKnowledgeBaseService(parser, mockPipeline{}, &mockEmbedder{}, newMockIndex(), 0).
		WithWatcher(watcher, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan driving.WatchEvent, 1)
	go func() {
		_ = svc.Watch(ctx, dir, func(e driving.WatchEvent) { events <- e })
	}()

	watcher.changes <- domain.FileChange{Path: filepath.Join(dir, "bad.docx"), Type: domain.ChangeUpdated}

	select {
	case e := <-events:
		assert.Equal(t, "bad.docx", e.Source)
		assert.ErrorContains(t, e.Err, "not a zip")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for watch event")
	}
}

func TestKnowledgeBaseService_WatchStoppedWatcher(t *testing.T) {
	watcher := &mockWatcher{changes: make(chan domain.FileChange)}
	close(watcher.changes)
	svc := NewKnowledgeBaseService(newMockParser(), mockPipeline{}, &mockEmbedder{}, newMockIndex(), 0).
		WithWatcher(watcher, 0)

	err := svc.Watch(context.Background(), t.TempDir(), nil)

	assert.ErrorContains(t, err, "watcher stopped")
}

func TestKnowledgeBaseService_WatchUnavailable(t *testing.T) {
	svc := NewKnowledgeBaseService(newMockParser(), mockPipeline{}, &mockEmbedder{}, newMockIndex(), 0)
	assert.ErrorIs(t, svc.Watch(context.Background(), t.TempDir(), nil), domain.ErrWatchUnavailable)

	svc.WithWatcher(&mockWatcher{err: errors.New("inotify limit")}, 0)
	assert.ErrorContains(t, svc.Watch(context.Background(), t.TempDir(), nil), "inotify limit")
}
