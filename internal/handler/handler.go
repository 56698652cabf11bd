package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopkart/internal/middleware"
	"shopkart/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Success: false, Message: message})
}

// writeDomainError maps a business failure to an HTTP status.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	status := http.StatusInternalServerError
	message := err.Error()

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case model.ErrCodeEmptyOrder,
			model.ErrCodeMissingField,
			model.ErrCodeInvalidQuantity,
			model.ErrCodeInvalidJSON,
			model.ErrCodeProductNotFound:
			status = http.StatusBadRequest
		case model.ErrCodeForbidden:
			status = http.StatusForbidden
		case model.ErrCodeOrderNotFound:
			status = http.StatusNotFound
		case model.ErrCodeInsufficientStock:
			// Stock shortfall aborts the whole checkout transaction and
			// surfaces as a server-side failure.
			status = http.StatusInternalServerError
		}
	} else {
		message = "internal server error"
	}

	writeError(w, status, message, logger)
}

// requireUser extracts the authenticated principal, writing a 401 when the
// request carries none.
func requireUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (middleware.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", logger)
		return middleware.Principal{}, false
	}
	return principal, true
}

// requireAdmin extracts the authenticated principal and enforces the admin
// role, writing a 401/403 otherwise.
func requireAdmin(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (middleware.Principal, bool) {
	principal, ok := requireUser(w, r, logger)
	if !ok {
		return middleware.Principal{}, false
	}
	if !principal.Admin {
		writeError(w, http.StatusForbidden, "admin role required", logger)
		return middleware.Principal{}, false
	}
	return principal, true
}
