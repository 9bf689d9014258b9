// Package registration implements the register and lookup workflows: both
// are gated by a human-verification check before the record store is read.
package registration

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Verifier

import (
	"context"
	"errors"
	"log/slog"

	"airdrop/internal/platform/metrics"
	"airdrop/internal/recaptcha"
	"airdrop/internal/store"
	"airdrop/pkg/platform/sentinel"
	"airdrop/pkg/requestcontext"
)

// Store is the slice of the record store the workflows need.
type Store interface {
	FindUserByAddress(ctx context.Context, address string) (*store.User, error)
	UpdateUser(ctx context.Context, id int64, notResident, termsSigned bool) error
}

// Verifier checks a reCAPTCHA response.
type Verifier interface {
	Verify(ctx context.Context, response, remoteIP string) (*recaptcha.Verdict, error)
}

// RegisterRequest carries the client's self-declared consent flags.
type RegisterRequest struct {
	Address     string
	NotResident bool
	Terms       bool
	Recaptcha   string
	RemoteIP    string
}

// LookupRequest identifies the address to read back.
type LookupRequest struct {
	Address   string
	Recaptcha string
	RemoteIP  string
}

// Service holds no mutable state; concurrent calls are independent.
type Service struct {
	store    Store
	verifier Verifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(st Store, verifier Verifier, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	s := &Service{
		store:    st,
		verifier: verifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register records the caller's consent flags for a pre-provisioned address
// and returns the user as it was before the update. It never creates users.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*store.User, error) {
	user, err := s.register(ctx, req)
	s.record(ctx, "register", req.Address, err)
	return user, err
}

func (s *Service) register(ctx context.Context, req RegisterRequest) (*store.User, error) {
	if !req.NotResident {
		return nil, userIsResident()
	}
	if !req.Terms {
		return nil, termsNotAccepted()
	}
	if err := s.verify(ctx, req.Recaptcha, req.RemoteIP); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateUser(ctx, user.ID, req.NotResident, req.Terms); err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to update user",
				"error", err,
				"address", req.Address,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, userNotFound(err)
	}
	return user, nil
}

// Lookup returns the user only once both consent flags are on record.
func (s *Service) Lookup(ctx context.Context, req LookupRequest) (*store.User, error) {
	user, err := s.lookup(ctx, req)
	s.record(ctx, "lookup", req.Address, err)
	return user, err
}

func (s *Service) lookup(ctx context.Context, req LookupRequest) (*store.User, error) {
	if err := s.verify(ctx, req.Recaptcha, req.RemoteIP); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	if !user.TermsSigned {
		return nil, termsNotAccepted()
	}
	if !user.NotResident {
		return nil, userIsResident()
	}
	return user, nil
}

func (s *Service) verify(ctx context.Context, response, remoteIP string) error {
	verdict, err := s.verifier.Verify(ctx, response, remoteIP)
	if err != nil {
		kind := "unknown"
		var te *recaptcha.TransportError
		if errors.As(err, &te) {
			kind = string(te.Kind)
		}
		s.logger.ErrorContext(ctx, "verification transport failure",
			"error", err,
			"failure_kind", kind,
			"request_id", requestcontext.RequestID(ctx),
		)
		return verificationTransport(err)
	}
	if !verdict.Success {
		return verificationFailed(verdict.ErrorCodes)
	}
	return nil
}

// find collapses every store failure into UserNotFound. Infrastructure
// errors are logged so they stay visible to operators.
func (s *Service) find(ctx context.Context, address string) (*store.User, error) {
	user, err := s.store.FindUserByAddress(ctx, address)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to find user",
				"error", err,
				"address", address,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, userNotFound(err)
	}
	return user, nil
}

func (s *Service) record(ctx context.Context, flow, address string, err error) {
	result := "ok"
	if e, ok := AsError(err); ok {
		result = resultLabel(e.Code)
	}
	s.metrics.IncrementOutcome(flow, result)
	s.logger.InfoContext(ctx, flow+" completed",
		"address", address,
		"result", result,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func resultLabel(code int) string {
	switch code {
	case CodeUserNotFound:
		return "user_not_found"
	case CodeUserIsResident:
		return "user_is_resident"
	case CodeTermsNotAccepted:
		return "terms_not_accepted"
	case CodeVerificationFailed:
		return "verification_failed"
	default:
		return "error"
	}
}
