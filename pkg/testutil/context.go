package testutil

import (
	"context"
	"net/http"
	"time"

	"airdrop/pkg/requestcontext"
)

// WithOperator marks the request as coming from an authenticated operator,
// as the admin middleware would.
func WithOperator(req *http.Request, subject string) *http.Request {
	return req.WithContext(requestcontext.WithOperator(req.Context(), subject))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// ContextAt returns a background context whose request time is t.
func ContextAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}
