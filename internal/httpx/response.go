package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"account-auth/internal/domain"
	"account-auth/internal/observability/middleware"
)

type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as {"error": kind, "message": msg}. Causes stay in
// the log; unclassified errors are reported as internal.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	kind := domain.KindOf(err)
	if kind == "" {
		kind = domain.KindFatal
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			append(middleware.LogAttrs(r.Context()), "error", err)...)
	} else {
		var de *domain.Error
		if errors.As(err, &de) && de.Err != nil {
			slog.DebugContext(r.Context(), "request rejected",
				append(middleware.LogAttrs(r.Context()), "kind", string(kind), "error", err)...)
		}
	}
	WriteJSON(w, status, ErrorBody{Error: string(kind), Message: domain.MessageOf(err)})
}
