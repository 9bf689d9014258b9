package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"airdrop/internal/platform/metrics"
	"airdrop/internal/platform/middleware"
	"airdrop/pkg/platform/middleware/device"
	"airdrop/pkg/platform/middleware/metadata"
	"airdrop/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// RouterDeps collects everything the router wires together. Optional fields
// disable their routes when nil.
type RouterDeps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Registration RegistrationService
	Audit        AuditService
	Health       Pinger
	CORSOrigins  []string

	// Operator enables /admin when set.
	Operator middleware.OperatorValidator
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter builds the chi router with the shared middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(device.Middleware)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.CORS(middleware.DefaultCORS(deps.CORSOrigins)))
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	NewRegistrationHandler(deps.Registration, logger).Register(r)
	NewAuditHandler(deps.Audit, logger).Register(r)

	if deps.Operator != nil {
		NewAdminHandler(deps.Audit, deps.Operator, logger).Register(r)
	}
	if deps.Health != nil {
		r.Get("/healthz", healthHandler(deps.Health, logger))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	return r
}
