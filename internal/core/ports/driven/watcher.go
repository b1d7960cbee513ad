package driven

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// DirectoryWatcher reports file changes under a directory tree.
type DirectoryWatcher interface {
	// Watch starts watching dir recursively. The returned channel is closed
	// when ctx is cancelled or the watcher fails.
	Watch(ctx context.Context, dir string) (<-chan domain.FileChange, error)
}
