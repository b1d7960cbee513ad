package driven

import (
	"context"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// ChecklistSource loads the compliance checklist.
// Implementations must read fresh data on every call; checklists are never
// cached across runs.
type ChecklistSource interface {
	// Load reads and normalises the checklist at path.
	// An empty path selects the source's default location.
	Load(ctx context.Context, path string) (*domain.Checklist, error)
}
