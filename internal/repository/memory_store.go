package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shiva/propdispatch/internal/model"
)

// MemoryStore keeps properties, providers and maintenance requests in process.
// It backs STORAGE_DRIVER=memory and the service tests. All methods are safe
// for concurrent use; AssignProvider is atomic under the store lock.
type MemoryStore struct {
	mu         sync.RWMutex
	properties map[int64]model.Property
	providers  map[int64]model.ServiceProvider
	requests   map[int64]model.MaintenanceRequest
	nextID     int64
	writes     int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties: map[int64]model.Property{},
		providers:  map[int64]model.ServiceProvider{},
		requests:   map[int64]model.MaintenanceRequest{},
	}
}

// ─── Seeding ────────────────────────────────────────────────

func (s *MemoryStore) id(want int64) int64 {
	if want > 0 {
		if want > s.nextID {
			s.nextID = want
		}
		return want
	}
	s.nextID++
	return s.nextID
}

// AddProperty stores p, assigning an ID when p.ID is zero.
func (s *MemoryStore) AddProperty(p model.Property) model.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id(p.ID)
	s.properties[p.ID] = p
	return p
}

// AddProvider stores p, assigning an ID when p.ID is zero.
func (s *MemoryStore) AddProvider(p model.ServiceProvider) model.ServiceProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id(p.ID)
	s.providers[p.ID] = p
	return p
}

// AddRequest stores r, assigning an ID when r.ID is zero and defaulting the
// status to pending.
func (s *MemoryStore) AddRequest(r model.MaintenanceRequest) model.MaintenanceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id(r.ID)
	if r.Status == "" {
		r.Status = model.RequestPending
	}
	r.Property = nil
	s.requests[r.ID] = r
	return r
}

// Request returns a copy of the stored request.
func (s *MemoryStore) Request(id int64) (model.MaintenanceRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	return r, ok
}

// Provider returns a copy of the stored provider.
func (s *MemoryStore) Provider(id int64) (model.ServiceProvider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[id]
	return p, ok
}

// Writes returns the number of mutating calls that changed state.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// ─── Maintenance requests ───────────────────────────────────

// GetMaintenanceRequest returns the request with its property attached.
func (s *MemoryStore) GetMaintenanceRequest(_ context.Context, id int64) (*model.MaintenanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("get maintenance request %d: %w", id, ErrNotFound)
	}
	if p, ok := s.properties[r.PropertyID]; ok {
		r.Property = &p
	}
	return &r, nil
}

// UpdatePriority overwrites the priority of a pending request.
func (s *MemoryStore) UpdatePriority(_ context.Context, id int64, priority model.Priority) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return fmt.Errorf("update priority of request %d: %w", id, ErrNotFound)
	}
	if r.Status != model.RequestPending {
		return fmt.Errorf("update priority of request %d: %w", id, ErrNotPending)
	}
	r.Priority = priority
	s.requests[id] = r
	s.writes++
	return nil
}

// AssignProvider checks the request is pending and, in the same critical
// section, assigns it and increments the provider's job counter.
func (s *MemoryStore) AssignProvider(_ context.Context, a model.Assignment) (*model.ServiceProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[a.RequestID]
	if !ok {
		return nil, fmt.Errorf("assign: request %d: %w", a.RequestID, ErrNotFound)
	}
	if r.Status != model.RequestPending {
		return nil, fmt.Errorf("assign: request %d status is '%s': %w", a.RequestID, r.Status, ErrNotPending)
	}
	p, ok := s.providers[a.ProviderID]
	if !ok {
		return nil, fmt.Errorf("assign: provider %d: %w", a.ProviderID, ErrNotFound)
	}

	providerID := a.ProviderID
	assignedAt := a.AssignedAt
	r.ServiceProviderID = &providerID
	r.Status = model.RequestAssigned
	r.AssignedAt = &assignedAt
	r.Priority = a.Priority
	s.requests[r.ID] = r

	p.TotalJobs++
	p.UpdatedAt = a.AssignedAt
	s.providers[p.ID] = p

	s.writes++
	return &p, nil
}

// ListScheduledJobs returns a provider's assigned or in-progress requests with
// assigned_at in [from, to), in request ID order.
func (s *MemoryStore) ListScheduledJobs(_ context.Context, providerID int64, from, to time.Time) ([]model.ScheduledJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []model.ScheduledJob
	for _, r := range s.requests {
		if r.ServiceProviderID == nil || *r.ServiceProviderID != providerID {
			continue
		}
		if r.Status != model.RequestAssigned && r.Status != model.RequestInProgress {
			continue
		}
		if r.AssignedAt == nil || r.AssignedAt.Before(from) || !r.AssignedAt.Before(to) {
			continue
		}
		prop := s.properties[r.PropertyID]
		jobs = append(jobs, model.ScheduledJob{
			RequestID: r.ID,
			Property: model.PropertyRef{
				ID:       prop.ID,
				Name:     prop.Name,
				Address:  prop.Address,
				Location: prop.Location,
			},
			Title:       r.Title,
			Priority:    r.Priority,
			Status:      r.Status,
			AssignedAt:  r.AssignedAt,
			RequestedAt: r.RequestedAt,
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].RequestID < jobs[j].RequestID })
	return jobs, nil
}

// ─── Providers ──────────────────────────────────────────────

func (s *MemoryStore) sortedProviders(keep func(model.ServiceProvider) bool) []model.ServiceProvider {
	out := make([]model.ServiceProvider, 0, len(s.providers))
	for _, p := range s.providers {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindAvailableProviders returns available providers of the given type,
// ordered by rating descending then id ascending.
func (s *MemoryStore) FindAvailableProviders(_ context.Context, providerType model.Category) ([]model.ServiceProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProviders(func(p model.ServiceProvider) bool {
		return p.ProviderType == providerType && p.IsAvailable
	}), nil
}

// GetProvider returns a single provider.
func (s *MemoryStore) GetProvider(_ context.Context, id int64) (*model.ServiceProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[id]
	if !ok {
		return nil, fmt.Errorf("get provider %d: %w", id, ErrNotFound)
	}
	return &p, nil
}

// ListProviders returns providers matching the filter, rating descending.
func (s *MemoryStore) ListProviders(_ context.Context, f model.ProviderFilter) ([]model.ServiceProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProviders(func(p model.ServiceProvider) bool {
		if f.ProviderType != nil && p.ProviderType != *f.ProviderType {
			return false
		}
		if f.IsAvailable != nil && p.IsAvailable != *f.IsAvailable {
			return false
		}
		if f.MinRating != nil && p.Rating < *f.MinRating {
			return false
		}
		return true
	}), nil
}

// ─── Stats ──────────────────────────────────────────────────

// ProviderStats computes network statistics directly.
func (s *MemoryStore) ProviderStats(_ context.Context) (*model.ProviderStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &model.ProviderStats{TypeDistribution: []model.TypeCount{}}
	counts := map[model.Category]int{}
	sum := 0.0
	for _, p := range s.providers {
		stats.TotalProviders++
		if p.IsAvailable {
			stats.AvailableProviders++
		}
		stats.TotalJobs += p.TotalJobs
		sum += p.Rating
		counts[p.ProviderType]++
	}
	if stats.TotalProviders > 0 {
		stats.AverageRating = math.Round(sum/float64(stats.TotalProviders)*100) / 100
	}
	for t, n := range counts {
		stats.TypeDistribution = append(stats.TypeDistribution, model.TypeCount{ProviderType: t, Count: n})
	}
	sort.Slice(stats.TypeDistribution, func(i, j int) bool {
		return stats.TypeDistribution[i].ProviderType < stats.TypeDistribution[j].ProviderType
	})
	return stats, nil
}

// InvalidateStats is a no-op; stats are always computed fresh.
func (s *MemoryStore) InvalidateStats(context.Context) {}
