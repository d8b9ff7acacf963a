// Package service contains the core business logic for maintenance dispatch:
// request triage, provider selection, assignment, daily schedules and routes.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/internal/repository"
)

// ─── Errors ─────────────────────────────────────────────────

var (
	// ErrRequestNotFound is returned when the maintenance request does not exist.
	ErrRequestNotFound = errors.New("maintenance request not found")

	// ErrProviderNotFound is returned when the service provider does not exist.
	ErrProviderNotFound = errors.New("service provider not found")

	// ErrNoEligibleProvider is returned when neither the matched category nor
	// the general pool has an available provider.
	ErrNoEligibleProvider = errors.New("no available providers")

	// ErrAssignmentConflict is returned when the request is no longer pending,
	// either before dispatch starts or at commit time.
	ErrAssignmentConflict = errors.New("maintenance request is not pending")

	// ErrAssignTimeout is returned when the assignment transaction exceeds
	// its deadline, usually while waiting for a row lock.
	ErrAssignTimeout = errors.New("assignment timed out waiting for lock")
)

// ─── Storage contracts ──────────────────────────────────────

// RequestStore reads and updates maintenance requests.
type RequestStore interface {
	GetMaintenanceRequest(ctx context.Context, id int64) (*model.MaintenanceRequest, error)
	UpdatePriority(ctx context.Context, id int64, priority model.Priority) error
}

// Assigner commits an assignment and the provider counter increment as one unit.
type Assigner interface {
	AssignProvider(ctx context.Context, a model.Assignment) (*model.ServiceProvider, error)
}

// JobStore lists a provider's scheduled jobs in a time window.
type JobStore interface {
	ListScheduledJobs(ctx context.Context, providerID int64, from, to time.Time) ([]model.ScheduledJob, error)
}

// ProviderStore reads service providers.
type ProviderStore interface {
	FindAvailableProviders(ctx context.Context, providerType model.Category) ([]model.ServiceProvider, error)
	GetProvider(ctx context.Context, id int64) (*model.ServiceProvider, error)
	ListProviders(ctx context.Context, filter model.ProviderFilter) ([]model.ServiceProvider, error)
}

// StatsStore serves provider network statistics.
type StatsStore interface {
	ProviderStats(ctx context.Context) (*model.ProviderStats, error)
	InvalidateStats(ctx context.Context)
}

// ─── Error classification ───────────────────────────────────

// classifyError maps repository and context errors to service errors.
// notFound is the sentinel to use for repository.ErrNotFound.
func classifyError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return ErrAssignTimeout
	case errors.Is(err, repository.ErrNotPending):
		return ErrAssignmentConflict
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	default:
		return fmt.Errorf("storage: %w", err)
	}
}
