package driving

import "context"

// IndexStats summarises a knowledge-base indexing run.
type IndexStats struct {
	Files    int
	Passages int
	Skipped  []string
}

// WatchEvent reports one file re-indexed or removed while watching.
type WatchEvent struct {
	Source   string
	Passages int
	Removed  bool
	Err      error
}

// KnowledgeBaseService builds and inspects the regulation retrieval index.
type KnowledgeBaseService interface {
	// Index parses, chunks and embeds every supported file under dir.
	// Re-indexing a file replaces its passages.
	Index(ctx context.Context, dir string) (*IndexStats, error)

	// Watch re-indexes supported files under dir as they change, until ctx
	// is cancelled. Deleted files have their passages removed.
	Watch(ctx context.Context, dir string, onEvent func(WatchEvent)) error

	// Count returns the number of indexed passages.
	Count(ctx context.Context) (int, error)
}
