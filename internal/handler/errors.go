package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wayfare-app/backend/internal/domain"
)

// errorResponse is the JSON error envelope shared by every endpoint.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// writeError maps a service error to its HTTP status and error envelope.
// Unrecognized errors become 500 with a generic body; the real cause is
// logged, not leaked.
func writeError(w http.ResponseWriter, err error) {
	var (
		capErr      *domain.CapacityError
		inactiveErr *domain.InactiveItemError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{errorDetail{Code: "not_found", Message: unwrapMessage(err)}})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{errorDetail{Code: "forbidden", Message: unwrapMessage(err)}})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{Code: "validation_error", Message: unwrapMessage(err)}})
	case errors.As(err, &capErr):
		writeJSON(w, http.StatusConflict, errorResponse{errorDetail{Code: "capacity_exceeded", Message: capErr.Error()}})
	case errors.As(err, &inactiveErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{Code: "item_inactive", Message: inactiveErr.Error()}})
	case errors.Is(err, domain.ErrChoiceClosed),
		errors.Is(err, domain.ErrChoiceArchived),
		errors.Is(err, domain.ErrDeadlinePassed),
		errors.Is(err, domain.ErrOptOutExists),
		errors.Is(err, domain.ErrOptOutExclusive),
		errors.Is(err, domain.ErrZeroSpendTotal):
		writeJSON(w, http.StatusConflict, errorResponse{errorDetail{Code: "conflict", Message: unwrapMessage(err)}})
	default:
		slog.Error("handler error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{errorDetail{Code: "internal", Message: "internal server error"}})
	}
}

// badRequest writes a 400 for a request rejected before reaching the
// service layer (missing identity header, malformed body or id).
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{errorDetail{Code: "bad_request", Message: message}})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel
// error, e.g. "service.ChoiceService.Create: validation error: name is
// required" becomes "name is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []string{"validation error: ", "forbidden: "} {
		if i := strings.LastIndex(msg, marker); i >= 0 {
			return msg[i+len(marker):]
		}
	}
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
