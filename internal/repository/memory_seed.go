package repository

import (
	"time"

	"github.com/shiva/propdispatch/internal/model"
)

// NewDemoMemoryStore returns a MemoryStore seeded with a small portfolio so a
// memory-backed server has something to dispatch.
func NewDemoMemoryStore(now time.Time) *MemoryStore {
	s := NewMemoryStore()

	riverside := s.AddProperty(model.Property{
		Name: "Riverside Apartments", Address: "210 Walnut St, Yankton, SD",
		Location: &model.Location{Lat: 42.8711, Lon: -97.3973}, TotalUnits: 24, Status: "active",
	})
	hillcrest := s.AddProperty(model.Property{
		Name: "Hillcrest Townhomes", Address: "1400 Broadway Ave, Yankton, SD",
		Location: &model.Location{Lat: 42.8890, Lon: -97.3920}, TotalUnits: 12, Status: "active",
	})

	rate := 85.0
	s.AddProvider(model.ServiceProvider{
		Name: "Dana Ortiz", CompanyName: "Ortiz Plumbing", ProviderType: model.CategoryPlumbing,
		Rating: 4.7, IsAvailable: true, HourlyRate: &rate, Phone: "605-555-0101",
		Email: "dispatch@ortizplumbing.example", BaseLocation: &model.Location{Lat: 42.8800, Lon: -97.4000},
		CreatedAt: now, UpdatedAt: now,
	})
	s.AddProvider(model.ServiceProvider{
		Name: "Lee Park", CompanyName: "Park Electric", ProviderType: model.CategoryElectrical,
		Rating: 4.4, IsAvailable: true, Phone: "605-555-0102", Email: "jobs@parkelectric.example",
		CreatedAt: now, UpdatedAt: now,
	})
	s.AddProvider(model.ServiceProvider{
		Name: "Sam Reyes", CompanyName: "Reyes Handyman", ProviderType: model.CategoryGeneral,
		Rating: 4.9, IsAvailable: true, Phone: "605-555-0103", Email: "sam@reyes.example",
		CreatedAt: now, UpdatedAt: now,
	})

	s.AddRequest(model.MaintenanceRequest{
		PropertyID: riverside.ID, TenantID: 1, Title: "Kitchen sink",
		Description: "Water leak under the kitchen sink", Priority: model.PriorityMedium,
		RequestedAt: now.Add(-2 * time.Hour),
	})
	s.AddRequest(model.MaintenanceRequest{
		PropertyID: hillcrest.ID, TenantID: 2, Title: "Hallway outlet",
		Description: "Outlet sparks, no power in hallway", Priority: model.PriorityMedium,
		RequestedAt: now.Add(-1 * time.Hour),
	})
	s.AddRequest(model.MaintenanceRequest{
		PropertyID: hillcrest.ID, TenantID: 3, Title: "Door hinge",
		Description: "Squeaky door hinge", Priority: model.PriorityLow, PriorityExplicit: true,
		RequestedAt: now.Add(-30 * time.Minute),
	})

	return s
}
