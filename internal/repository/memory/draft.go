package memory

import (
	"context"
	"fmt"
	"sync"

	"drafthub/internal/domain"
	"drafthub/internal/domain/models"
	"drafthub/internal/domain/repositories"
)

// DraftRepository is the in-memory draft store. Drafts are held in a map
// keyed by id, with a slice preserving assignment order for listing.
type DraftRepository struct {
	mu      sync.RWMutex
	drafts  map[string]*models.Draft
	order   []string
	counter int
}

// NewDraftRepository creates an empty in-memory draft repository.
func NewDraftRepository() *DraftRepository {
	return &DraftRepository{
		drafts: make(map[string]*models.Draft),
	}
}

var _ repositories.DraftRepository = (*DraftRepository)(nil)

// NextID assigns the next monotonic draft id. Ids are never reused, even
// after a reset-free lifetime of archivals.
func (r *DraftRepository) NextID(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	return fmt.Sprintf("d%d", r.counter), nil
}

// Insert stores a newly created draft.
func (r *DraftRepository) Insert(_ context.Context, draft *models.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drafts[draft.ID]; exists {
		return fmt.Errorf("%w: draft %s already exists", domain.ErrValidation, draft.ID)
	}

	r.drafts[draft.ID] = draft.Clone()
	r.order = append(r.order, draft.ID)
	return nil
}

// Get returns a copy of the draft with the given id.
func (r *DraftRepository) Get(_ context.Context, id string) (*models.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	draft, ok := r.drafts[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "Draft not found"}
	}
	return draft.Clone(), nil
}

// Update replaces the stored draft state.
func (r *DraftRepository) Update(_ context.Context, draft *models.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drafts[draft.ID]; !ok {
		return &domain.NotFoundError{Message: "Draft not found"}
	}
	r.drafts[draft.ID] = draft.Clone()
	return nil
}

// All returns copies of every draft in assignment order.
func (r *DraftRepository) All(_ context.Context) ([]*models.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Draft, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.drafts[id].Clone())
	}
	return out, nil
}

// Reset clears all drafts and restarts the id counter.
func (r *DraftRepository) Reset(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drafts = make(map[string]*models.Draft)
	r.order = nil
	r.counter = 0
	return nil
}
