package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/internal/service"
)

// ProviderHandler serves provider listings, types and statistics.
type ProviderHandler struct {
	providers *service.ProviderService
	log       *zap.Logger
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(providers *service.ProviderService, log *zap.Logger) *ProviderHandler {
	return &ProviderHandler{providers: providers, log: log.Named("handler")}
}

// List handles GET /providers/list?provider_type=&is_available=&min_rating=
//
// Every filter is optional; unknown provider types and unparsable values are
// rejected with 400.
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter model.ProviderFilter

	if v := q.Get("provider_type"); v != "" {
		t := model.Category(v)
		if !t.Valid() {
			badRequest(w, "invalid provider_type")
			return
		}
		filter.ProviderType = &t
	}
	if v := q.Get("is_available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(w, "invalid is_available: expected true or false")
			return
		}
		filter.IsAvailable = &b
	}
	if v := q.Get("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 5 {
			badRequest(w, "invalid min_rating: expected a number between 0 and 5")
			return
		}
		filter.MinRating = &f
	}

	providers, err := h.providers.ListProviders(r.Context(), filter)
	if err != nil {
		h.log.Error("list providers failed", zap.Error(err))
		internalError(w)
		return
	}
	if providers == nil {
		providers = []model.ServiceProvider{}
	}
	writeJSON(w, http.StatusOK, model.ProviderList{Total: len(providers), Providers: providers})
}

// Types handles GET /providers/types
func (h *ProviderHandler) Types(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.ProviderTypeList{Types: h.providers.Types()})
}

// Stats handles GET /providers/stats
func (h *ProviderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.providers.Stats(r.Context())
	if err != nil {
		h.log.Error("provider stats failed", zap.Error(err))
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
