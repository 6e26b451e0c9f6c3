package repositories

import (
	"context"

	"drafthub/internal/domain/models"
)

// DraftRepository is the storage contract for drafts. The in-memory
// implementation is the default; a Postgres implementation is a drop-in
// replacement. Implementations return deep copies so callers never alias
// stored state; all invariant enforcement lives in the inbox service, which
// serializes mutations above this interface.
type DraftRepository interface {
	// NextID assigns the next monotonic draft id (d1, d2, ...).
	NextID(ctx context.Context) (string, error)

	// Insert stores a newly created draft. The id must be unused.
	Insert(ctx context.Context, draft *models.Draft) error

	// Get returns the draft with the given id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Draft, error)

	// Update replaces the stored draft with the given state.
	Update(ctx context.Context, draft *models.Draft) error

	// All returns every stored draft in assignment order.
	All(ctx context.Context) ([]*models.Draft, error)

	// Reset clears all drafts and restarts id assignment. Test harness hook.
	Reset(ctx context.Context) error
}
