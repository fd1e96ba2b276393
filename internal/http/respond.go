package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mrirakib04/sks-web/internal/backend"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/mrirakib04/sks-web/pkg/logger"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Get().Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleBackendError turns a failed backend call into an HTTP answer.
func handleBackendError(ctx context.Context, w http.ResponseWriter, err error) {
	var statusErr *backend.StatusError

	switch {
	case errors.Is(err, backend.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, backend.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "backend unavailable, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "backend did not answer in time")
	case errors.Is(err, backend.ErrNotApplied):
		respondError(w, http.StatusConflict, "not_applied", err.Error())
	case errors.As(err, &statusErr):
		switch statusErr.Code {
		case http.StatusUnauthorized:
			respondError(w, http.StatusUnauthorized, "unauthenticated", "backend session expired")
		case http.StatusForbidden:
			respondError(w, http.StatusForbidden, "permission_denied", "not allowed")
		case http.StatusTooManyRequests:
			respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests")
		default:
			respondError(w, http.StatusBadGateway, "backend_error", statusErr.Error())
		}
	default:
		logger.Error(ctx, "request failed", "request_id", middleware.GetReqID(ctx), "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// readOutage reports whether a failed read means the backend could not
// answer, as opposed to answering with a definite 4xx.
func readOutage(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, backend.ErrNotFound) {
		return false
	}
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		return !statusErr.IsClientError()
	}
	return true
}

// handleReadError answers a failed collection read. Once the client has
// spent its retries an outage is shown as an empty list and an error notice;
// definite answers such as 404 keep their status.
func handleReadError(ctx context.Context, w http.ResponseWriter, notifier notify.Notifier, err error, what string, empty any) {
	if !readOutage(err) {
		handleBackendError(ctx, w, err)
		return
	}
	logger.Warn(ctx, "read failed, serving empty result", "request_id", middleware.GetReqID(ctx), "what", what, "error", err)
	notifier.Notify(notify.LevelError, "Could not load "+what+". Please try again.")
	respondJSON(w, http.StatusOK, empty)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
