package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"airdrop/internal/platform/middleware"
	"airdrop/pkg/platform/httputil"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func healthHandler(p Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := p.Ping(ctx); err != nil {
			logger.ErrorContext(ctx, "health check failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err,
			)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
