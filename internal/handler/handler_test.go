package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shiva/propdispatch/config"
	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/internal/repository"
	"github.com/shiva/propdispatch/internal/service"
)

var now = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, store *repository.MemoryStore) *mux.Router {
	t.Helper()
	log := zap.NewNop()
	clock := func() time.Time { return now }

	classifier := service.NewClassifier(config.DefaultClassifierRules())
	selector := service.NewProviderSelector(classifier, store, service.SelectorOptions{}, log)
	dispatcher := service.NewDispatchService(store, store, selector, classifier, store, clock, log)
	schedules := service.NewScheduleService(store, store, time.UTC)
	routes, err := service.NewRouteOptimizer(schedules, store, config.RoutePlaceholder)
	require.NoError(t, err)

	router := mux.NewRouter()
	Register(router.PathPrefix("/providers").Subrouter(),
		NewDispatchHandler(dispatcher, log),
		NewScheduleHandler(schedules, routes, clock, log),
		NewProviderHandler(service.NewProviderService(store, store), log))
	return router
}

func do(router http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// ─── Assign ─────────────────────────────────────────────────

func TestAssignRequest_Success(t *testing.T) {
	store := repository.NewMemoryStore()
	prop := store.AddProperty(model.Property{Name: "Riverside"})
	plumber := store.AddProvider(model.ServiceProvider{
		CompanyName: "Ortiz Plumbing", ProviderType: model.CategoryPlumbing, Rating: 4.7, IsAvailable: true,
	})
	req := store.AddRequest(model.MaintenanceRequest{
		PropertyID: prop.ID, Description: "Pipe burst, flooding the basement", Priority: model.PriorityMedium,
	})

	rec := do(newTestRouter(t, store), http.MethodPost, "/providers/assign/"+itoa(req.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got model.AssignmentOutcome
	decode(t, rec, &got)
	assert.True(t, got.Success)
	assert.Equal(t, model.CategoryPlumbing, got.Category)
	assert.Equal(t, model.PriorityUrgent, got.Priority)
	require.NotNil(t, got.Provider)
	assert.Equal(t, plumber.ID, got.Provider.ID)
	assert.Equal(t, "Ortiz Plumbing", got.Provider.Name)
}

func TestAssignRequest_Errors(t *testing.T) {
	store := repository.NewMemoryStore()
	store.AddProvider(model.ServiceProvider{ProviderType: model.CategoryElectrical, Rating: 4, IsAvailable: true})
	noProvider := store.AddRequest(model.MaintenanceRequest{Description: "Toilet running", Priority: model.PriorityLow})
	assigned := store.AddRequest(model.MaintenanceRequest{Description: "Outlet dead", Status: model.RequestAssigned})
	router := newTestRouter(t, store)

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantError string
	}{
		{"non-numeric id", "/providers/assign/abc", http.StatusBadRequest, ""},
		{"unknown request", "/providers/assign/9999", http.StatusNotFound, service.ErrRequestNotFound.Error()},
		{"no provider", "/providers/assign/" + itoa(noProvider.ID), http.StatusBadRequest, "no available providers"},
		{"not pending", "/providers/assign/" + itoa(assigned.ID), http.StatusConflict, service.ErrAssignmentConflict.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, tt.target)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]interface{}
			decode(t, rec, &body)
			if tt.wantError != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}

	rec := do(router, http.MethodPost, "/providers/assign/"+itoa(noProvider.ID))
	var body model.AssignmentOutcome
	decode(t, rec, &body)
	assert.Equal(t, model.CategoryPlumbing, body.Category)
}

func TestAssignRequest_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryStore())

	rec := do(router, http.MethodGet, "/providers/assign/1")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "method_not_allowed", body["error"])

	rec = do(router, http.MethodPost, "/providers/list")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/providers/unknown").Code)
}

// ─── Schedule & Route ───────────────────────────────────────

func seedSchedule(store *repository.MemoryStore) model.ServiceProvider {
	prop := store.AddProperty(model.Property{Name: "Riverside", Address: "210 Walnut St"})
	prov := store.AddProvider(model.ServiceProvider{ProviderType: model.CategoryPlumbing, Rating: 4, IsAvailable: true})
	for i, p := range []model.Priority{model.PriorityHigh, model.PriorityUrgent} {
		assignedAt := time.Date(2026, 3, 2, 8+i, 0, 0, 0, time.UTC)
		store.AddRequest(model.MaintenanceRequest{
			PropertyID: prop.ID, ServiceProviderID: &prov.ID, Title: string(p),
			Status: model.RequestAssigned, Priority: p, AssignedAt: &assignedAt,
		})
	}
	return prov
}

func TestGetSchedule(t *testing.T) {
	store := repository.NewMemoryStore()
	prov := seedSchedule(store)
	router := newTestRouter(t, store)

	rec := do(router, http.MethodGet, "/providers/schedule/"+itoa(prov.ID)+"?date=2026-03-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ProviderID int64  `json:"provider_id"`
		Date       string `json:"date"`
		TotalJobs  int    `json:"total_jobs"`
		Schedule   []struct {
			RequestID int64  `json:"request_id"`
			Priority  string `json:"priority"`
			Property  struct {
				Name    string `json:"name"`
				Address string `json:"address"`
			} `json:"property"`
		} `json:"schedule"`
	}
	decode(t, rec, &body)
	assert.Equal(t, prov.ID, body.ProviderID)
	assert.Equal(t, "2026-03-02", body.Date)
	assert.Equal(t, 2, body.TotalJobs)
	require.Len(t, body.Schedule, 2)
	assert.Equal(t, "urgent", body.Schedule[0].Priority)
	assert.Equal(t, "210 Walnut St", body.Schedule[0].Property.Address)

	// Missing date defaults to today.
	rec = do(router, http.MethodGet, "/providers/schedule/"+itoa(prov.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "2026-03-02", body.Date)

	// Another day is empty, not an error.
	rec = do(router, http.MethodGet, "/providers/schedule/"+itoa(prov.ID)+"?date=2026-03-05")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"provider_id":`+itoa(prov.ID)+`,"date":"2026-03-05","total_jobs":0,"schedule":[]}`,
		rec.Body.String())
}

func TestGetSchedule_BadInput(t *testing.T) {
	store := repository.NewMemoryStore()
	prov := seedSchedule(store)
	router := newTestRouter(t, store)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/providers/schedule/"+itoa(prov.ID)+"?date=03/02/2026").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/providers/schedule/x").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/providers/schedule/404").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/providers/route/404").Code)
}

func TestGetRoute(t *testing.T) {
	store := repository.NewMemoryStore()
	prov := seedSchedule(store)

	rec := do(newTestRouter(t, store), http.MethodGet, "/providers/route/"+itoa(prov.ID)+"?date=2026-03-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, 4.0, body["estimated_total_time"])
	assert.Equal(t, 20.0, body["total_distance_miles"])
	assert.Equal(t, "placeholder", body["strategy"])
	assert.Len(t, body["optimized_schedule"], 2)
}

// ─── Providers ──────────────────────────────────────────────

func TestListProviders(t *testing.T) {
	store := repository.NewMemoryStore()
	store.AddProvider(model.ServiceProvider{Name: "a", ProviderType: model.CategoryHVAC, Rating: 4.6, IsAvailable: true})
	store.AddProvider(model.ServiceProvider{Name: "b", ProviderType: model.CategoryHVAC, Rating: 4.1, IsAvailable: false})
	store.AddProvider(model.ServiceProvider{Name: "c", ProviderType: model.CategoryGeneral, Rating: 3.0, IsAvailable: true})
	router := newTestRouter(t, store)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"a", "b", "c"}},
		{"?provider_type=hvac", []string{"a", "b"}},
		{"?is_available=true", []string{"a", "c"}},
		{"?min_rating=4.5", []string{"a"}},
		{"?provider_type=hvac&is_available=false", []string{"b"}},
		{"?provider_type=snow_removal", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(router, http.MethodGet, "/providers/list"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			var got model.ProviderList
			decode(t, rec, &got)
			assert.Equal(t, len(tt.want), got.Total)
			assert.NotNil(t, got.Providers)
			names := []string{}
			for _, p := range got.Providers {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestListProviders_BadQuery(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryStore())
	for _, q := range []string{"?provider_type=roofing", "?is_available=maybe", "?min_rating=high", "?min_rating=7"} {
		assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/providers/list"+q).Code, q)
	}
}

func TestTypesAndStats(t *testing.T) {
	store := repository.NewMemoryStore()
	store.AddProvider(model.ServiceProvider{ProviderType: model.CategoryHVAC, Rating: 4, IsAvailable: true, TotalJobs: 2})
	store.AddProvider(model.ServiceProvider{ProviderType: model.CategoryHVAC, Rating: 5})
	router := newTestRouter(t, store)

	rec := do(router, http.MethodGet, "/providers/types")
	require.Equal(t, http.StatusOK, rec.Code)
	var types model.ProviderTypeList
	decode(t, rec, &types)
	assert.Len(t, types.Types, 6)
	assert.Contains(t, rec.Body.String(), `"types":[`)

	rec = do(router, http.MethodGet, "/providers/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats model.ProviderStats
	decode(t, rec, &stats)
	assert.Equal(t, 2, stats.TotalProviders)
	assert.Equal(t, 1, stats.AvailableProviders)
	assert.Equal(t, 4.5, stats.AverageRating)
	assert.Equal(t, 2, stats.TotalJobs)
}

// ─── Health ─────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rec := httptest.NewRecorder()
	NewHealthHandler("postgres", map[string]HealthCheck{"postgres": ok, "redis": ok}).
		Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewHealthHandler("postgres", map[string]HealthCheck{"postgres": ok, "redis": down}).
		Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthResponse
	decode(t, rec, &body)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy: connection refused", body.Services["redis"])
	assert.Equal(t, "healthy", body.Services["postgres"])
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
