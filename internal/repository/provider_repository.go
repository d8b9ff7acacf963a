package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/propdispatch/internal/model"
)

// ProviderRepository provides read access to service providers.
type ProviderRepository struct {
	pool *pgxpool.Pool
}

// NewProviderRepository creates a new repository backed by the given PG pool.
func NewProviderRepository(pool *pgxpool.Pool) *ProviderRepository {
	return &ProviderRepository{pool: pool}
}

const providerColumns = `
	id, name, company_name, provider_type,
	rating::float8, total_jobs, is_available, hourly_rate::float8,
	phone, email, base_latitude::float8, base_longitude::float8,
	created_at, updated_at`

// scanProvider scans one row selected with providerColumns.
func scanProvider(row rowScanner) (*model.ServiceProvider, error) {
	p := &model.ServiceProvider{}
	var lat, lon *float64
	if err := row.Scan(
		&p.ID, &p.Name, &p.CompanyName, &p.ProviderType,
		&p.Rating, &p.TotalJobs, &p.IsAvailable, &p.HourlyRate,
		&p.Phone, &p.Email, &lat, &lon,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.BaseLocation = location(lat, lon)
	return p, nil
}

func collectProviders(rows pgx.Rows) ([]model.ServiceProvider, error) {
	defer rows.Close()

	var providers []model.ServiceProvider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, *p)
	}
	return providers, rows.Err()
}

// FindAvailableProviders returns available providers of the given type,
// ordered by rating descending then id ascending.
//
// Uses the composite index idx_service_providers_type_available.
func (r *ProviderRepository) FindAvailableProviders(
	ctx context.Context,
	providerType model.Category,
) ([]model.ServiceProvider, error) {
	query := `SELECT` + providerColumns + `
		FROM service_providers
		WHERE provider_type = $1
		  AND is_available = TRUE
		ORDER BY rating DESC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, providerType)
	if err != nil {
		return nil, fmt.Errorf("find available %s providers: %w", providerType, err)
	}
	return collectProviders(rows)
}

// GetProvider fetches a single provider by ID.
func (r *ProviderRepository) GetProvider(ctx context.Context, id int64) (*model.ServiceProvider, error) {
	query := `SELECT` + providerColumns + ` FROM service_providers WHERE id = $1`

	p, err := scanProvider(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get provider %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get provider %d: %w", id, err)
	}
	return p, nil
}

// ListProviders returns providers matching the filter, ordered by rating
// descending then id ascending.
func (r *ProviderRepository) ListProviders(
	ctx context.Context,
	filter model.ProviderFilter,
) ([]model.ServiceProvider, error) {
	var (
		where []string
		args  []any
	)
	if filter.ProviderType != nil {
		args = append(args, *filter.ProviderType)
		where = append(where, fmt.Sprintf("provider_type = $%d", len(args)))
	}
	if filter.IsAvailable != nil {
		args = append(args, *filter.IsAvailable)
		where = append(where, fmt.Sprintf("is_available = $%d", len(args)))
	}
	if filter.MinRating != nil {
		args = append(args, *filter.MinRating)
		where = append(where, fmt.Sprintf("rating >= $%d", len(args)))
	}

	query := `SELECT` + providerColumns + ` FROM service_providers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rating DESC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return collectProviders(rows)
}
