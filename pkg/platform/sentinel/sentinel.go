package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so workflows can translate them into domain errors.
//
//   - ErrNotFound: record does not exist, or a token exists but is no longer valid
//   - ErrConflict: primary-key or unique collision on insert
//   - ErrUnavailable: backing service could not be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
