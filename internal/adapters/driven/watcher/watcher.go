// Package watcher implements recursive directory watching on fsnotify.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.DirectoryWatcher = (*Watcher)(nil)

const changeBuffer = 64

// Watcher watches a directory tree for file changes.
// Hidden files and directories are ignored.
type Watcher struct{}

// New creates a directory watcher.
func New() *Watcher {
	return &Watcher{}
}

// Watch starts watching dir and every non-hidden subdirectory.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan domain.FileChange, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := addTree(fw, dir); err != nil {
		fw.Close()
		return nil, err
	}

	changes := make(chan domain.FileChange, changeBuffer)
	go func() {
		defer close(changes)
		defer fw.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				change := handleFsEvent(fw, event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher: %v", err)
			}
		}
	}()

	return changes, nil
}

// addTree registers dir and its non-hidden subdirectories.
func addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent maps an fsnotify event to a file change, or nil when the
// event is not relevant. New directories are added to the watch list.
func handleFsEvent(fw *fsnotify.Watcher, event fsnotify.Event) *domain.FileChange {
	if isHidden(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.FileChange{Path: event.Name, Type: domain.ChangeDeleted}

	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if fw != nil {
				if err := addTree(fw, event.Name); err != nil {
					logger.Warn("watcher: %v", err)
				}
			}
			return nil
		}
		return &domain.FileChange{Path: event.Name, Type: domain.ChangeCreated}

	case event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		return &domain.FileChange{Path: event.Name, Type: domain.ChangeUpdated}
	}

	return nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
