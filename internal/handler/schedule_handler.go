package handler

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shiva/propdispatch/internal/service"
)

// ScheduleHandler serves provider daily schedules and routes.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	routes    *service.RouteOptimizer
	now       func() time.Time
	log       *zap.Logger
}

// NewScheduleHandler creates a new schedule handler. now may be nil.
func NewScheduleHandler(schedules *service.ScheduleService, routes *service.RouteOptimizer, now func() time.Time, log *zap.Logger) *ScheduleHandler {
	if now == nil {
		now = time.Now
	}
	return &ScheduleHandler{schedules: schedules, routes: routes, now: now, log: log.Named("handler")}
}

// GetSchedule handles GET /providers/schedule/{provider_id}?date=YYYY-MM-DD
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	providerID, date, ok := h.parse(w, r)
	if !ok {
		return
	}

	schedule, err := h.schedules.DailySchedule(r.Context(), providerID, date)
	if err != nil {
		h.fail(w, providerID, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// GetRoute handles GET /providers/route/{provider_id}?date=YYYY-MM-DD
func (h *ScheduleHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	providerID, date, ok := h.parse(w, r)
	if !ok {
		return
	}

	route, err := h.routes.OptimizeRoute(r.Context(), providerID, date)
	if err != nil {
		h.fail(w, providerID, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (h *ScheduleHandler) parse(w http.ResponseWriter, r *http.Request) (int64, time.Time, bool) {
	providerID, ok := pathID(r, "provider_id")
	if !ok {
		badRequest(w, "invalid provider_id: must be a positive integer")
		return 0, time.Time{}, false
	}
	date, ok := queryDate(r, h.schedules.Location(), h.now)
	if !ok {
		badRequest(w, "invalid date: expected YYYY-MM-DD")
		return 0, time.Time{}, false
	}
	return providerID, date, true
}

func (h *ScheduleHandler) fail(w http.ResponseWriter, providerID int64, err error) {
	if errors.Is(err, service.ErrProviderNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": "Service provider not found.",
		})
		return
	}
	h.log.Error("schedule failed", zap.Int64("provider_id", providerID), zap.Error(err))
	internalError(w)
}
