// Package httpserver builds the *http.Server the API listens with.
package httpserver

import (
	"net/http"
	"time"
)

// Timeouts bound each phase of a connection. Write must outlast the router's
// per-request timeout so handlers can still answer with a 503.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// DefaultTimeouts fits a 30s request timeout plus a 10s verification call.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ReadHeader: 5 * time.Second,
		Read:       10 * time.Second,
		Write:      45 * time.Second,
		Idle:       2 * time.Minute,
	}
}

func New(addr string, handler http.Handler, t Timeouts) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: t.ReadHeader,
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
		IdleTimeout:       t.Idle,
	}
}
