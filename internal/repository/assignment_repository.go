package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/pkg/db"
)

// AssignmentRepository commits dispatch decisions with row-level locking.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// ─── The Core Transactional Assignment ──────────────────────

// AssignProvider binds a pending request to a provider and increments the
// provider's job counter in a single transaction. It returns the provider as
// it reads after the increment.
//
// Concurrency strategy: PESSIMISTIC LOCKING on the request row.
//
//	Scenario: two dispatch calls for the same request at the same time.
//
//	  T1: BEGIN → SELECT request FOR UPDATE → (row LOCKED) → status 'pending'
//	  T2: BEGIN → SELECT request FOR UPDATE → (BLOCKS)
//	  T1: UPDATE request → UPDATE provider counter → COMMIT
//	  T2: (unblocked) → re-reads status 'assigned' → ROLLBACK → ErrNotPending
//
// The provider counter uses `total_jobs = total_jobs + 1`, so concurrent
// assignments to the same provider never lose an increment.
func (r *AssignmentRepository) AssignProvider(
	ctx context.Context,
	a model.Assignment,
) (*model.ServiceProvider, error) {
	var provider *model.ServiceProvider

	err := db.WithTx(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		// ── Step 1: LOCK the request row ────────────────
		var status model.RequestStatus
		err := tx.QueryRow(ctx, `
			SELECT status
			FROM maintenance_requests
			WHERE id = $1
			FOR UPDATE
		`, a.RequestID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("assign: request %d: %w", a.RequestID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("assign: lock request %d: %w", a.RequestID, err)
		}

		// ── Step 2: Compare status ──────────────────────
		if status != model.RequestPending {
			return fmt.Errorf("assign: request %d status is '%s': %w", a.RequestID, status, ErrNotPending)
		}

		// ── Step 3: Set the assignment ──────────────────
		_, err = tx.Exec(ctx, `
			UPDATE maintenance_requests
			SET service_provider_id = $2,
			    status = 'assigned',
			    assigned_at = $3,
			    priority = $4
			WHERE id = $1
		`, a.RequestID, a.ProviderID, a.AssignedAt, a.Priority)
		if err != nil {
			return fmt.Errorf("assign: update request %d: %w", a.RequestID, err)
		}

		// ── Step 4: Atomic counter increment ────────────
		provider, err = scanProvider(tx.QueryRow(ctx, `
			UPDATE service_providers
			SET total_jobs = total_jobs + 1,
			    updated_at = now()
			WHERE id = $1
			RETURNING`+providerColumns,
			a.ProviderID))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("assign: provider %d: %w", a.ProviderID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("assign: increment provider %d: %w", a.ProviderID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return provider, nil
}
