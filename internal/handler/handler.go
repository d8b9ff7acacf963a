// Package handler contains HTTP request handlers for the dispatch API.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/shiva/propdispatch/internal/service"
)

// Register mounts the provider routes on r, which is expected to be the
// /providers subrouter.
func Register(r *mux.Router, dispatch *DispatchHandler, schedules *ScheduleHandler, providers *ProviderHandler) {
	handle(r, "/assign/{request_id}", http.MethodPost, dispatch.AssignRequest)
	handle(r, "/schedule/{provider_id}", http.MethodGet, schedules.GetSchedule)
	handle(r, "/route/{provider_id}", http.MethodGet, schedules.GetRoute)
	handle(r, "/list", http.MethodGet, providers.List)
	handle(r, "/types", http.MethodGet, providers.Types)
	handle(r, "/stats", http.MethodGet, providers.Stats)
}

// handle mounts h for method on path. Any other method on the same path gets
// 405 with an Allow header; a mux subrouter would otherwise answer 404.
func handle(r *mux.Router, path, method string, h http.HandlerFunc) {
	r.HandleFunc(path, h).Methods(method)
	r.HandleFunc(path, methodNotAllowed(method))
}

func methodNotAllowed(allowed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowed)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error": "method_not_allowed",
		})
	}
}

// pathID parses an integer path variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryDate parses ?date=YYYY-MM-DD in loc. A missing date means today.
func queryDate(r *http.Request, loc *time.Location, now func() time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return now().In(loc), true
	}
	d, err := time.ParseInLocation(service.DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
}

// writeJSON is a helper that writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
