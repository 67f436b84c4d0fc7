package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexivanou/communes-api/internal/service"
	"go.uber.org/zap"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, messageResponse{Message: message})
}

// statusFor maps service sentinels to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err with its mapped status. Client errors carry the
// error text; server errors carry fallback and are logged.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	switch {
	case status < http.StatusInternalServerError:
		writeError(w, h.logger, status, err.Error())
	case status == http.StatusBadGateway:
		h.logger.Warn(fallback,
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeError(w, h.logger, status, fallback)
	default:
		h.logger.Error(fallback,
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeError(w, h.logger, status, "internal server error")
	}
}
