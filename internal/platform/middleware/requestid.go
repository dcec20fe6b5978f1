package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"portfolio/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// RequestID takes the caller-supplied request ID or mints one, threads it
// through context, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
