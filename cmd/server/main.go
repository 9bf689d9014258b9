package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"airdrop/internal/auditlog"
	jwttoken "airdrop/internal/jwt_token"
	"airdrop/internal/platform/config"
	"airdrop/internal/platform/httpserver"
	"airdrop/internal/platform/logger"
	"airdrop/internal/platform/metrics"
	"airdrop/internal/recaptcha"
	"airdrop/internal/registration"
	"airdrop/internal/store"
	"airdrop/internal/token"
	httptransport "airdrop/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	backend, closeStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}()

	if cfg.Database.Driver == config.DriverMemory {
		res, err := store.Seed(ctx, backend, store.DefaultSeed())
		if err != nil {
			return err
		}
		log.Warn("using in-memory store with development fixtures", "seeded", res.Created)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	verifier := recaptcha.New(cfg.Recaptcha.Secret, cfg.Recaptcha.VerifyURL,
		recaptcha.WithTimeout(cfg.Recaptcha.Timeout),
		recaptcha.WithLogger(log),
		recaptcha.WithMetrics(m),
	)
	regSvc, err := registration.New(backend, verifier,
		registration.WithLogger(log),
		registration.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	auditSvc, err := auditlog.New(backend, token.New(token.WithTTL(cfg.TokenTTL)),
		auditlog.WithLogger(log),
		auditlog.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	deps := httptransport.RouterDeps{
		Logger:       log,
		Metrics:      m,
		Registration: regSvc,
		Audit:        auditSvc,
		Health:       backend,
		CORSOrigins:  cfg.CORSOrigins,
	}
	if cfg.OperatorJWTKey != "" {
		deps.Operator = jwttoken.NewJWTService(cfg.OperatorJWTKey)
	}
	if cfg.MetricsEnabled {
		deps.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(deps), httpserver.DefaultTimeouts())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting airdrop registry", "addr", cfg.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
