package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"drafthub/internal/domain"
	"drafthub/internal/domain/models"
	"drafthub/internal/domain/repositories"
)

// DraftRepository is the Postgres drop-in for the in-memory draft store.
// Drafts are stored document-style: the whole record as one JSONB column,
// plus the assignment sequence for ordering. Every mutation is a whole-row
// update issued under the inbox service lock, which keeps the append-only
// audit log and the mutate+audit atomicity intact without row-level
// coordination here.
type DraftRepository struct {
	pool *pgxpool.Pool
}

// NewDraftRepository creates a Postgres-backed draft repository.
func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

var _ repositories.DraftRepository = (*DraftRepository)(nil)

const schema = `
CREATE SEQUENCE IF NOT EXISTS drafts_id_seq;
CREATE TABLE IF NOT EXISTS drafts (
	id  TEXT PRIMARY KEY,
	seq BIGINT NOT NULL,
	doc JSONB  NOT NULL
);
CREATE INDEX IF NOT EXISTS drafts_seq_idx ON drafts (seq);
`

// EnsureSchema creates the drafts table and id sequence if missing.
func (r *DraftRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure drafts schema: %w", err)
	}
	return nil
}

// NextID assigns the next monotonic draft id from the sequence.
func (r *DraftRepository) NextID(ctx context.Context) (string, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('drafts_id_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next draft id: %w", err)
	}
	return fmt.Sprintf("d%d", n), nil
}

// Insert stores a newly created draft.
func (r *DraftRepository) Insert(ctx context.Context, draft *models.Draft) error {
	doc, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.ID, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO drafts (id, seq, doc) VALUES ($1, $2, $3)`,
		draft.ID, seqOf(draft.ID), doc,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("%w: draft %s already exists", domain.ErrValidation, draft.ID)
		}
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

// Get returns the draft with the given id.
func (r *DraftRepository) Get(ctx context.Context, id string) (*models.Draft, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM drafts WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: "Draft not found"}
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	var draft models.Draft
	if err := json.Unmarshal(doc, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", id, err)
	}
	return &draft, nil
}

// Update replaces the stored draft state.
func (r *DraftRepository) Update(ctx context.Context, draft *models.Draft) error {
	doc, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.ID, err)
	}

	result, err := r.pool.Exec(ctx, `UPDATE drafts SET doc = $1 WHERE id = $2`, doc, draft.ID)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: "Draft not found"}
	}
	return nil
}

// All returns every stored draft in assignment order.
func (r *DraftRepository) All(ctx context.Context) ([]*models.Draft, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM drafts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var out []*models.Draft
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		var draft models.Draft
		if err := json.Unmarshal(doc, &draft); err != nil {
			return nil, fmt.Errorf("unmarshal draft: %w", err)
		}
		out = append(out, &draft)
	}
	return out, rows.Err()
}

// Reset truncates the drafts table and restarts id assignment. Test harness
// hook.
func (r *DraftRepository) Reset(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE drafts; ALTER SEQUENCE drafts_id_seq RESTART`); err != nil {
		return fmt.Errorf("reset drafts: %w", err)
	}
	return nil
}

// seqOf extracts the numeric part of an assigned id (d42 -> 42).
func seqOf(id string) int64 {
	var n int64
	fmt.Sscanf(id, "d%d", &n)
	return n
}
