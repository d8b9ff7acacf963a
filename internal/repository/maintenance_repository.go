package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/propdispatch/internal/model"
)

// MaintenanceRepository handles reads and non-transactional updates of
// maintenance requests.
type MaintenanceRepository struct {
	pool *pgxpool.Pool
}

// NewMaintenanceRepository creates a new repository.
func NewMaintenanceRepository(pool *pgxpool.Pool) *MaintenanceRepository {
	return &MaintenanceRepository{pool: pool}
}

// GetMaintenanceRequest fetches a request together with its property.
func (r *MaintenanceRepository) GetMaintenanceRequest(
	ctx context.Context, id int64,
) (*model.MaintenanceRequest, error) {
	query := `
		SELECT mr.id, mr.property_id, mr.tenant_id, mr.service_provider_id,
		       mr.title, mr.description, mr.status, mr.priority, mr.priority_explicit,
		       mr.estimated_cost::float8, mr.actual_cost::float8,
		       mr.requested_at, mr.assigned_at, mr.completed_at,
		       p.id, p.name, p.address,
		       p.latitude::float8, p.longitude::float8,
		       p.total_units, p.status
		FROM maintenance_requests mr
		JOIN properties p ON p.id = mr.property_id
		WHERE mr.id = $1
	`
	mr := &model.MaintenanceRequest{}
	prop := &model.Property{}
	var lat, lon *float64

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&mr.ID, &mr.PropertyID, &mr.TenantID, &mr.ServiceProviderID,
		&mr.Title, &mr.Description, &mr.Status, &mr.Priority, &mr.PriorityExplicit,
		&mr.EstimatedCost, &mr.ActualCost,
		&mr.RequestedAt, &mr.AssignedAt, &mr.CompletedAt,
		&prop.ID, &prop.Name, &prop.Address,
		&lat, &lon,
		&prop.TotalUnits, &prop.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get maintenance request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get maintenance request %d: %w", id, err)
	}

	prop.Location = location(lat, lon)
	mr.Property = prop
	return mr, nil
}

// UpdatePriority overwrites the priority of a request that is still pending.
func (r *MaintenanceRepository) UpdatePriority(
	ctx context.Context, id int64, priority model.Priority,
) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE maintenance_requests
		SET priority = $2
		WHERE id = $1 AND status = 'pending'
	`, id, priority)
	if err != nil {
		return fmt.Errorf("update priority of request %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update priority of request %d: %w", id, ErrNotPending)
	}
	return nil
}

// ListScheduledJobs returns a provider's assigned or in-progress requests with
// assigned_at in [from, to), ordered by priority (urgent first) then
// requested_at ascending.
//
// Uses the partial index idx_maintenance_requests_provider_day.
func (r *MaintenanceRepository) ListScheduledJobs(
	ctx context.Context,
	providerID int64,
	from, to time.Time,
) ([]model.ScheduledJob, error) {
	query := `
		SELECT mr.id, mr.title, mr.priority, mr.status,
		       mr.assigned_at, mr.requested_at,
		       p.id, p.name, p.address,
		       p.latitude::float8, p.longitude::float8
		FROM maintenance_requests mr
		JOIN properties p ON p.id = mr.property_id
		WHERE mr.service_provider_id = $1
		  AND mr.status IN ('assigned', 'in_progress')
		  AND mr.assigned_at >= $2
		  AND mr.assigned_at < $3
		ORDER BY CASE mr.priority
		             WHEN 'urgent' THEN 0
		             WHEN 'high'   THEN 1
		             WHEN 'medium' THEN 2
		             ELSE 3
		         END,
		         mr.requested_at ASC,
		         mr.id ASC
	`
	rows, err := r.pool.Query(ctx, query, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list scheduled jobs for provider %d: %w", providerID, err)
	}
	defer rows.Close()

	var jobs []model.ScheduledJob
	for rows.Next() {
		var (
			job      model.ScheduledJob
			lat, lon *float64
		)
		if err := rows.Scan(
			&job.RequestID, &job.Title, &job.Priority, &job.Status,
			&job.AssignedAt, &job.RequestedAt,
			&job.Property.ID, &job.Property.Name, &job.Property.Address,
			&lat, &lon,
		); err != nil {
			return nil, fmt.Errorf("scan scheduled job: %w", err)
		}
		job.Property.Location = location(lat, lon)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
