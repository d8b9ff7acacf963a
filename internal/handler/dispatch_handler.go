package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/internal/service"
)

// DispatchHandler handles automatic provider assignment.
type DispatchHandler struct {
	dispatcher *service.DispatchService
	log        *zap.Logger
}

// NewDispatchHandler creates a new dispatch handler.
func NewDispatchHandler(dispatcher *service.DispatchService, log *zap.Logger) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher, log: log.Named("handler")}
}

// AssignRequest handles POST /providers/assign/{request_id}
//
// Triages the request and assigns the best available provider.
//
// Response codes:
//
//	200  Assigned (AssignmentOutcome with provider, category, priority)
//	400  Invalid request_id, or no available provider (body carries category)
//	404  Maintenance request not found
//	409  Request is not pending
//	504  Assignment timed out waiting for a lock
//	500  Unexpected error
func (h *DispatchHandler) AssignRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(r, "request_id")
	if !ok {
		badRequest(w, "invalid request_id: must be a positive integer")
		return
	}

	outcome, err := h.dispatcher.AutoAssign(r.Context(), requestID)
	if err != nil {
		if outcome == nil {
			outcome = &model.AssignmentOutcome{RequestID: requestID, Error: err.Error()}
		}
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			writeJSON(w, http.StatusNotFound, outcome)
		case errors.Is(err, service.ErrNoEligibleProvider):
			writeJSON(w, http.StatusBadRequest, outcome)
		case errors.Is(err, service.ErrAssignmentConflict):
			writeJSON(w, http.StatusConflict, outcome)
		case errors.Is(err, service.ErrAssignTimeout):
			writeJSON(w, http.StatusGatewayTimeout, outcome)
		default:
			h.log.Error("assign failed", zap.Int64("request_id", requestID), zap.Error(err))
			internalError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}
