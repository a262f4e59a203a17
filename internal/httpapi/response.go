package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/repository"
)

// ErrorEnvelope standardizes JSON error responses.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	if id := requestIDFrom(r.Context()); id != "" {
		if meta == nil {
			meta = map[string]string{}
		}
		meta["request_id"] = id
	}
	writeJSON(w, status, &ErrorEnvelope{Code: code, Message: message, Meta: meta})
}

// writeServiceError maps service errors onto HTTP statuses. Client mistakes
// echo the error text; anything else is logged and answered generically.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, domain.ErrDepthExceeded):
		writeError(w, r, http.StatusBadRequest, "DEPTH_EXCEEDED", err.Error(), nil)
	case errors.Is(err, domain.ErrSelfParent):
		writeError(w, r, http.StatusBadRequest, "SELF_PARENT", err.Error(), nil)
	case errors.Is(err, domain.ErrCycle):
		writeError(w, r, http.StatusBadRequest, "CYCLE", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		attrs := []any{"error", err.Error(), "path", r.URL.Path, "request_id", requestIDFrom(r.Context())}
		if errors.Is(err, domain.ErrStructuralIntegrity) {
			attrs = append(attrs, "alarm", "structural_integrity")
		}
		logger.ErrorContext(r.Context(), "request_failed", attrs...)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var rerr *requestError
	if errors.As(err, &rerr) {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", rerr.message, rerr.meta)
		return
	}
	writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
}
