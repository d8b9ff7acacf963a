package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/shiva/propdispatch/internal/handler"
	"github.com/shiva/propdispatch/internal/middleware"
)

// handlers groups the HTTP handlers mounted by newRouter.
type handlers struct {
	dispatch  *handler.DispatchHandler
	schedules *handler.ScheduleHandler
	providers *handler.ProviderHandler
	health    *handler.HealthHandler
}

// newRouter builds the full HTTP handler. The request middleware wraps the
// router rather than being installed with router.Use, so unmatched routes
// still get a request ID and a log line.
func newRouter(h handlers, authSecret []byte, zlog *zap.Logger) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint.
	router.HandleFunc("/health", h.health.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/providers").Subrouter()
	if authSecret != nil {
		api.Use(middleware.Auth(authSecret, zlog))
	}
	handler.Register(api, h.dispatch, h.schedules, h.providers)

	var out http.Handler = middleware.CORS(router)
	out = middleware.Recoverer(zlog)(out)
	out = middleware.RequestLogger(zlog)(out)
	return middleware.RequestID(out)
}
