// Package auditlog issues bearer tokens and appends client-reported actions
// to the audit log under them.
package auditlog

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Issuer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"airdrop/internal/platform/metrics"
	"airdrop/internal/store"
	dErrors "airdrop/pkg/domain-errors"
	"airdrop/pkg/platform/sentinel"
	"airdrop/pkg/requestcontext"
)

// ActionCreateToken is recorded under every freshly issued token.
const ActionCreateToken = "create_new_token"

// Store is the slice of the record store the audit workflow needs.
type Store interface {
	InsertToken(ctx context.Context, t store.Token) error
	FindValidToken(ctx context.Context, token string, now time.Time) (*store.Token, error)
	AppendLog(ctx context.Context, token, action string, payload map[string]string) error
	ListLogs(ctx context.Context, token string) ([]store.LogEntry, error)
}

// Issuer mints new bearer tokens.
type Issuer interface {
	Issue(ctx context.Context) store.Token
}

type Service struct {
	store   Store
	issuer  Issuer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(st Store, issuer Issuer, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if issuer == nil {
		return nil, errors.New("issuer is required")
	}
	s := &Service{store: st, issuer: issuer, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateToken issues and persists a token, then records its creation along
// with the caller's request headers. The two writes are not atomic.
func (s *Service) CreateToken(ctx context.Context, headers map[string]string) (string, error) {
	requestID := requestcontext.RequestID(ctx)
	tok := s.issuer.Issue(ctx)

	if err := s.store.InsertToken(ctx, tok); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist token",
			"error", err,
			"request_id", requestID,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create token")
	}
	s.metrics.IncrementTokensIssued()

	if err := s.store.AppendLog(ctx, tok.Token, ActionCreateToken, headers); err != nil {
		s.metrics.IncrementLogEntries("error")
		s.logger.ErrorContext(ctx, "failed to record token creation",
			"error", err,
			"request_id", requestID,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create token")
	}
	s.metrics.IncrementLogEntries("ok")

	s.logger.InfoContext(ctx, "token issued",
		"expires_at", tok.ExpiredAt,
		"request_id", requestID,
	)
	return tok.Token, nil
}

// LogAction appends action and payload verbatim under token, provided the
// token exists and has not expired.
func (s *Service) LogAction(ctx context.Context, token, action string, payload map[string]string) error {
	requestID := requestcontext.RequestID(ctx)

	if token == "" {
		s.metrics.IncrementLogEntries("invalid_token")
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if _, err := s.store.FindValidToken(ctx, token, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementLogEntries("invalid_token")
			s.logger.InfoContext(ctx, "log rejected: invalid token",
				"request_id", requestID,
			)
			return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
		}
		s.metrics.IncrementLogEntries("error")
		s.logger.ErrorContext(ctx, "failed to look up token",
			"error", err,
			"request_id", requestID,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record action")
	}

	if err := s.store.AppendLog(ctx, token, action, payload); err != nil {
		s.metrics.IncrementLogEntries("error")
		s.logger.ErrorContext(ctx, "failed to append log entry",
			"error", err,
			"action", action,
			"request_id", requestID,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record action")
	}
	s.metrics.IncrementLogEntries("ok")
	return nil
}

// Entries returns everything recorded under token, oldest first. Expired
// tokens are still readable.
func (s *Service) Entries(ctx context.Context, token string) ([]store.LogEntry, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "token is required")
	}
	entries, err := s.store.ListLogs(ctx, token)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list log entries",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list entries")
	}
	return entries, nil
}
