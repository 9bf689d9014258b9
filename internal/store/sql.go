// Package store is the record store gateway: users, bearer tokens and the
// append-only audit log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"airdrop/internal/platform/database"
	"airdrop/pkg/platform/sentinel"
	"airdrop/pkg/requestcontext"
)

const pqUniqueViolation = "23505"

// SQLStore persists records in PostgreSQL or SQLite. Every method issues a
// single statement; there are no transactions.
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSQL wraps an open pool.
func NewSQL(db *sql.DB, dialect database.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// rebind rewrites $n placeholders for SQLite, which numbers them ?n.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != database.SQLite {
		return query
	}
	return strings.ReplaceAll(query, "$", "?")
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

func (s *SQLStore) FindUserByAddress(ctx context.Context, address string) (*User, error) {
	query := s.rebind(`SELECT id, terms_signed, not_resident, address, amount FROM users WHERE address = $1`)
	var u User
	err := s.db.QueryRowContext(ctx, query, address).Scan(&u.ID, &u.TermsSigned, &u.NotResident, &u.Address, &u.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by address: %w", err)
	}
	return &u, nil
}

func (s *SQLStore) UpdateUser(ctx context.Context, id int64, notResident, termsSigned bool) error {
	query := s.rebind(`UPDATE users SET not_resident = $1, terms_signed = $2 WHERE id = $3`)
	res, err := s.db.ExecContext(ctx, query, notResident, termsSigned, id)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// CreateUser inserts a user. Only the seed path calls it.
func (s *SQLStore) CreateUser(ctx context.Context, nu NewUser) (*User, error) {
	query := s.rebind(`INSERT INTO users (terms_signed, not_resident, address, amount) VALUES ($1, $2, $3, $4) RETURNING id`)
	var id int64
	err := s.db.QueryRowContext(ctx, query, nu.TermsSigned, nu.NotResident, nu.Address, nu.Amount).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &User{
		ID:          id,
		Address:     nu.Address,
		TermsSigned: nu.TermsSigned,
		NotResident: nu.NotResident,
		Amount:      nu.Amount,
	}, nil
}

func (s *SQLStore) InsertToken(ctx context.Context, t Token) error {
	query := s.rebind(`INSERT INTO tokens (token, created_at, expired_at) VALUES ($1, $2, $3)`)
	_, err := s.db.ExecContext(ctx, query, t.Token, t.CreatedAt.UTC(), t.ExpiredAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// FindValidToken returns the token only if it expires strictly after now.
func (s *SQLStore) FindValidToken(ctx context.Context, token string, now time.Time) (*Token, error) {
	query := s.rebind(`SELECT token, created_at, expired_at FROM tokens WHERE token = $1`)
	var t Token
	err := s.db.QueryRowContext(ctx, query, token).Scan(&t.Token, &t.CreatedAt, &t.ExpiredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	if !t.ValidAt(now) {
		return nil, sentinel.ErrNotFound
	}
	return &t, nil
}

func (s *SQLStore) AppendLog(ctx context.Context, token, action string, payload map[string]string) error {
	raw, err := encodePayload(payload)
	if err != nil {
		return err
	}
	query := s.rebind(`INSERT INTO logs (token, action, payload, created_at) VALUES ($1, $2, $3, $4)`)
	if _, err := s.db.ExecContext(ctx, query, token, action, raw, requestcontext.Now(ctx).UTC()); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// ListLogs returns the entries recorded under token, oldest first.
func (s *SQLStore) ListLogs(ctx context.Context, token string) ([]LogEntry, error) {
	query := s.rebind(`SELECT id, token, action, payload, created_at FROM logs WHERE token = $1 ORDER BY id`)
	rows, err := s.db.QueryContext(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var (
			e   LogEntry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.Token, &e.Action, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		if err := json.Unmarshal(raw, &e.Payload); err != nil {
			return nil, fmt.Errorf("decode log payload: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return entries, nil
}

func encodePayload(payload map[string]string) (string, error) {
	if payload == nil {
		payload = map[string]string{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode log payload: %w", err)
	}
	return string(raw), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
