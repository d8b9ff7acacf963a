// Package model contains domain models for the property maintenance dispatch system.
// These structs map to the PostgreSQL schema defined in migrations/001_create_schema.up.sql.
package model

import "time"

// ─── Enums ──────────────────────────────────────────────────

type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestAssigned   RequestStatus = "assigned"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities for scheduling: urgent=0 ... low=3. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the four known priorities.
func (p Priority) Valid() bool {
	return p.Rank() < 4
}

// Category is the maintenance specialty inferred for a request. It doubles as
// the provider type.
type Category string

const (
	CategoryPlumbing    Category = "plumbing"
	CategoryElectrical  Category = "electrical"
	CategoryHVAC        Category = "hvac"
	CategoryLandscaping Category = "landscaping"
	CategorySnowRemoval Category = "snow_removal"
	CategoryGeneral     Category = "general"
)

// ProviderTypes lists every provider type with its display label.
var ProviderTypes = []ProviderTypeLabel{
	{Value: CategoryLandscaping, Label: "Landscaping"},
	{Value: CategorySnowRemoval, Label: "Snow Removal"},
	{Value: CategoryHVAC, Label: "HVAC"},
	{Value: CategoryPlumbing, Label: "Plumbing"},
	{Value: CategoryElectrical, Label: "Electrical"},
	{Value: CategoryGeneral, Label: "General Repairs"},
}

// ProviderTypeLabel pairs a provider type with a human readable label.
type ProviderTypeLabel struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, t := range ProviderTypes {
		if t.Value == c {
			return true
		}
	}
	return false
}

// ─── Location ───────────────────────────────────────────────

// Location represents a WGS-84 geographic point (EPSG:4326).
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ─── Domain Models ──────────────────────────────────────────

// Property maps to the `properties` table. Read-only for dispatch.
type Property struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Location   *Location `json:"location,omitempty"`
	TotalUnits int       `json:"total_units"`
	Status     string    `json:"status"`
}

// ServiceProvider maps to the `service_providers` table.
type ServiceProvider struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	CompanyName  string    `json:"company_name"`
	ProviderType Category  `json:"provider_type"`
	Rating       float64   `json:"rating"`
	TotalJobs    int       `json:"total_jobs"`
	IsAvailable  bool      `json:"is_available"`
	HourlyRate   *float64  `json:"hourly_rate"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	BaseLocation *Location `json:"base_location,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MaintenanceRequest maps to the `maintenance_requests` table.
//
// PriorityExplicit is true when the submitter chose the priority; only
// implicit (defaulted) priorities are re-assessed during dispatch.
type MaintenanceRequest struct {
	ID                int64         `json:"id"`
	PropertyID        int64         `json:"property_id"`
	TenantID          int64         `json:"tenant_id"`
	ServiceProviderID *int64        `json:"service_provider_id,omitempty"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Status            RequestStatus `json:"status"`
	Priority          Priority      `json:"priority"`
	PriorityExplicit  bool          `json:"priority_explicit"`
	EstimatedCost     *float64      `json:"estimated_cost,omitempty"`
	ActualCost        *float64      `json:"actual_cost,omitempty"`
	RequestedAt       time.Time     `json:"requested_at"`
	AssignedAt        *time.Time    `json:"assigned_at,omitempty"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`

	// Property is populated on reads used by dispatch.
	Property *Property `json:"property,omitempty"`
}

// ─── Dispatch DTOs ──────────────────────────────────────────

// Assignment is the write set committed atomically when a request is dispatched.
type Assignment struct {
	RequestID  int64
	ProviderID int64
	Priority   Priority
	AssignedAt time.Time
}

// ProviderSummary is the provider view embedded in an AssignmentOutcome.
type ProviderSummary struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Type   Category `json:"type"`
	Rating float64  `json:"rating"`
}

// AssignmentOutcome is returned by the dispatch coordinator.
type AssignmentOutcome struct {
	Success              bool             `json:"success"`
	RequestID            int64            `json:"request_id,omitempty"`
	Provider             *ProviderSummary `json:"provider,omitempty"`
	Category             Category         `json:"category,omitempty"`
	Priority             Priority         `json:"priority,omitempty"`
	PriorityAutoAssigned bool             `json:"priority_auto_assigned,omitempty"`
	Error                string           `json:"error,omitempty"`
}

// ProviderFilter narrows a provider listing. Nil fields are not applied.
type ProviderFilter struct {
	ProviderType *Category
	IsAvailable  *bool
	MinRating    *float64
}

// ─── Schedule & Route ───────────────────────────────────────

// PropertyRef is the property identity shown on a scheduled job.
type PropertyRef struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Location *Location `json:"-"`
}

// ScheduledJob is one assigned/in-progress request on a provider's day.
type ScheduledJob struct {
	RequestID   int64         `json:"request_id"`
	Property    PropertyRef   `json:"property"`
	Title       string        `json:"title"`
	Priority    Priority      `json:"priority"`
	Status      RequestStatus `json:"status"`
	AssignedAt  *time.Time    `json:"assigned_at"`
	RequestedAt time.Time     `json:"-"`
}

// Schedule is a provider's ordered jobs for a calendar day.
type Schedule struct {
	ProviderID int64          `json:"provider_id"`
	Date       string         `json:"date"`
	TotalJobs  int            `json:"total_jobs"`
	Jobs       []ScheduledJob `json:"schedule"`
}

// Route is an ordering of a provider's daily schedule with coarse estimates.
type Route struct {
	ProviderID          int64          `json:"provider_id"`
	Date                string         `json:"date"`
	Strategy            string         `json:"strategy"`
	OptimizedSchedule   []ScheduledJob `json:"optimized_schedule"`
	EstimatedTotalHours float64        `json:"estimated_total_time"`
	TotalDistanceMiles  float64        `json:"total_distance_miles"`
}

// ─── Listings ───────────────────────────────────────────────

// ProviderList is the /providers/list response.
type ProviderList struct {
	Total     int               `json:"total"`
	Providers []ServiceProvider `json:"providers"`
}

// ProviderTypeList is the /providers/types response.
type ProviderTypeList struct {
	Types []ProviderTypeLabel `json:"types"`
}

// ─── Stats ──────────────────────────────────────────────────

// TypeCount is the number of providers of one type.
type TypeCount struct {
	ProviderType Category `json:"provider_type"`
	Count        int      `json:"count"`
}

// ProviderStats summarizes the provider network.
type ProviderStats struct {
	TotalProviders     int         `json:"total_providers"`
	AvailableProviders int         `json:"available_providers"`
	AverageRating      float64     `json:"average_rating"`
	TotalJobs          int         `json:"total_jobs"`
	TypeDistribution   []TypeCount `json:"type_distribution"`
}
