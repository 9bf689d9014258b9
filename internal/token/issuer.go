// Package token mints bearer tokens for the audit log endpoint.
package token

import (
	"context"
	"time"

	"github.com/google/uuid"

	"airdrop/internal/store"
	"airdrop/pkg/requestcontext"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

// Issuer produces random, unguessable tokens. It holds no secret.
type Issuer struct {
	ttl time.Duration
	now func(ctx context.Context) time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithClock replaces the request-scoped clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = func(context.Context) time.Time { return now() }
	}
}

func New(opts ...Option) *Issuer {
	i := &Issuer{ttl: DefaultTTL, now: requestcontext.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a fresh token stamped with the request time. uuid.New panics
// if the system entropy source fails, which is treated as fatal.
func (i *Issuer) Issue(ctx context.Context) store.Token {
	created := i.now(ctx).UTC()
	return store.Token{
		Token:     uuid.New().String(),
		CreatedAt: created,
		ExpiredAt: created.Add(i.ttl),
	}
}
