package driven

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// OutputLocation is the directory receiving a run's documents and report.
// Writes are idempotent per filename: a later write replaces an earlier one.
type OutputLocation interface {
	// Prepare ensures the location exists and is writable.
	Prepare(ctx context.Context) error

	// Dir returns the location's path.
	Dir() string

	// PathFor returns the output path for a document name.
	PathFor(name string) string

	// Exists reports whether a document with this name was written.
	Exists(name string) bool

	// CopyIn copies the file at src into the location under name.
	CopyIn(ctx context.Context, src, name string) error

	// WriteReport writes report.json.
	WriteReport(ctx context.Context, report *domain.Report) error

	// RemoveReport deletes report.json. A missing file is not an error.
	RemoveReport(ctx context.Context) error

	// List returns the document names present, excluding report.json.
	List(ctx context.Context) ([]string, error)
}

// OutputFactory opens an output location for a run.
type OutputFactory func(dir string) OutputLocation
