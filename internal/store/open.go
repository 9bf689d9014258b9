package store

import (
	"context"
	"time"

	"airdrop/internal/platform/config"
	"airdrop/internal/platform/database"
)

// Backend is the complete record store surface shared by both implementations.
type Backend interface {
	Ping(ctx context.Context) error
	FindUserByAddress(ctx context.Context, address string) (*User, error)
	UpdateUser(ctx context.Context, id int64, notResident, termsSigned bool) error
	CreateUser(ctx context.Context, nu NewUser) (*User, error)
	InsertToken(ctx context.Context, t Token) error
	FindValidToken(ctx context.Context, token string, now time.Time) (*Token, error)
	AppendLog(ctx context.Context, token, action string, payload map[string]string) error
	ListLogs(ctx context.Context, token string) ([]LogEntry, error)
}

var (
	_ Backend = (*SQLStore)(nil)
	_ Backend = (*InMemoryStore)(nil)
)

// Open returns the backend selected by cfg and a func that releases it.
// The schema is applied first when cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg config.Database) (Backend, func() error, error) {
	if cfg.Driver == config.DriverMemory {
		return NewInMemory(), func() error { return nil }, nil
	}

	db, dialect, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := Migrate(ctx, db, dialect); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return NewSQL(db, dialect), db.Close, nil
}
