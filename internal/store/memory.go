package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"airdrop/pkg/platform/sentinel"
	"airdrop/pkg/requestcontext"
)

// Error Contract:
// The in-memory store follows the same pattern as SQLStore:
// - ErrNotFound when the user, token or unexpired token does not exist
// - ErrConflict when a token or address is already taken
//

// InMemoryStore keeps records in process memory for dev and tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	users     map[string]*User
	usersByID map[int64]*User
	nextID    int64
	tokens    map[string]Token
	logs      []LogEntry
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		users:     make(map[string]*User),
		usersByID: make(map[int64]*User),
		tokens:    make(map[string]Token),
	}
}

func (s *InMemoryStore) Ping(context.Context) error { return nil }

func (s *InMemoryStore) FindUserByAddress(_ context.Context, address string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryStore) UpdateUser(_ context.Context, id int64, notResident, termsSigned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usersByID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.NotResident = notResident
	u.TermsSigned = termsSigned
	return nil
}

func (s *InMemoryStore) CreateUser(_ context.Context, nu NewUser) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[nu.Address]; ok {
		return nil, sentinel.ErrConflict
	}
	s.nextID++
	u := &User{
		ID:          s.nextID,
		Address:     nu.Address,
		TermsSigned: nu.TermsSigned,
		NotResident: nu.NotResident,
		Amount:      nu.Amount,
	}
	s.users[u.Address] = u
	s.usersByID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *InMemoryStore) InsertToken(_ context.Context, t Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[t.Token]; ok {
		return sentinel.ErrConflict
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *InMemoryStore) FindValidToken(_ context.Context, token string, now time.Time) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[token]
	if !ok || !t.ValidAt(now) {
		return nil, sentinel.ErrNotFound
	}
	return &t, nil
}

func (s *InMemoryStore) AppendLog(ctx context.Context, token, action string, payload map[string]string) error {
	if payload == nil {
		payload = map[string]string{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, LogEntry{
		ID:        int64(len(s.logs) + 1),
		Token:     token,
		Action:    action,
		Payload:   maps.Clone(payload),
		CreatedAt: requestcontext.Now(ctx).UTC(),
	})
	return nil
}

func (s *InMemoryStore) ListLogs(_ context.Context, token string) ([]LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []LogEntry
	for _, e := range s.logs {
		if e.Token == token {
			e.Payload = maps.Clone(e.Payload)
			out = append(out, e)
		}
	}
	return out, nil
}
