// Package testutil provides common helpers for handler tests.
package testutil

import (
	"net/http"

	"portfolio/pkg/requestcontext"
)

// WithUser adds an acting identity to the request context, simulating what
// the auth middleware does for authenticated requests.
func WithUser(req *http.Request, user string) *http.Request {
	if user == "" {
		return req
	}
	return req.WithContext(requestcontext.WithUser(req.Context(), user))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	if requestID == "" {
		return req
	}
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
