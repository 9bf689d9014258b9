package store

import "time"

// User is an address pre-provisioned for the airdrop. Rows are created only
// by the seed path; the registration workflow updates the two consent flags.
type User struct {
	ID          int64
	Address     string
	TermsSigned bool
	NotResident bool
	Amount      int64
}

// NewUser is the seed-time shape of a User.
type NewUser struct {
	Address     string `yaml:"address"`
	TermsSigned bool   `yaml:"terms_signed"`
	NotResident bool   `yaml:"not_resident"`
	Amount      int64  `yaml:"amount"`
}

// Token is an opaque bearer token for the audit log endpoint.
type Token struct {
	Token     string
	CreatedAt time.Time
	ExpiredAt time.Time
}

// ValidAt reports whether the token has not yet expired at now.
func (t Token) ValidAt(now time.Time) bool {
	return t.ExpiredAt.After(now)
}

// LogEntry is one append-only audit record.
type LogEntry struct {
	ID        int64
	Token     string
	Action    string
	Payload   map[string]string
	CreatedAt time.Time
}
