package service

import (
	"context"

	"github.com/shiva/propdispatch/internal/model"
)

// ProviderService serves provider listings and network statistics.
type ProviderService struct {
	providers ProviderStore
	stats     StatsStore
}

// NewProviderService creates a provider service.
func NewProviderService(providers ProviderStore, stats StatsStore) *ProviderService {
	return &ProviderService{providers: providers, stats: stats}
}

// ListProviders returns providers matching every set filter field, rating
// descending. An empty result is an empty slice.
func (s *ProviderService) ListProviders(ctx context.Context, filter model.ProviderFilter) ([]model.ServiceProvider, error) {
	providers, err := s.providers.ListProviders(ctx, filter)
	if err != nil {
		return nil, classifyError(err, ErrProviderNotFound)
	}
	if providers == nil {
		providers = []model.ServiceProvider{}
	}
	return providers, nil
}

// GetProvider returns a single provider.
func (s *ProviderService) GetProvider(ctx context.Context, id int64) (*model.ServiceProvider, error) {
	p, err := s.providers.GetProvider(ctx, id)
	if err != nil {
		return nil, classifyError(err, ErrProviderNotFound)
	}
	return p, nil
}

// Stats returns aggregate provider statistics.
func (s *ProviderService) Stats(ctx context.Context) (*model.ProviderStats, error) {
	stats, err := s.stats.ProviderStats(ctx)
	if err != nil {
		return nil, classifyError(err, ErrProviderNotFound)
	}
	return stats, nil
}

// Types returns the supported provider types with display labels.
func (s *ProviderService) Types() []model.ProviderTypeLabel {
	out := make([]model.ProviderTypeLabel, len(model.ProviderTypes))
	copy(out, model.ProviderTypes)
	return out
}
