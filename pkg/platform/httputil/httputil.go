// Package httputil centralizes JSON response writing and request decoding so
// handlers stay thin and error envelopes stay consistent.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "portfolio/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorEnvelope struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError translates a domain error into its HTTP response. Internal
// failures keep their detail out of the response body.
func WriteError(w http.ResponseWriter, err error) {
	code := domainerrors.CodeOf(err)
	envelope := errorEnvelope{Error: string(code)}
	if code != domainerrors.CodeInternal && code != domainerrors.CodeInvalidState {
		var de *domainerrors.Error
		if errors.As(err, &de) {
			envelope.ErrorDescription = de.Message
		}
	}
	WriteJSON(w, domainerrors.ToHTTPStatus(code), envelope)
}

// Decode parses the request body into T, answering bad_request on malformed
// payloads. The bool result reports whether the handler should continue.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var payload T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		logger.WarnContext(r.Context(), "malformed request body", "error", err)
		WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "malformed request body"))
		var zero T
		return zero, false
	}
	return payload, true
}
