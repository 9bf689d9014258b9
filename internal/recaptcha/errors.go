package recaptcha

import (
	"errors"
	"fmt"
)

// FailureKind classifies why the endpoint could not produce a verdict.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureNetwork   FailureKind = "network"
	FailureStatus    FailureKind = "status"
	FailureMalformed FailureKind = "malformed"
)

// TransportError means no verdict was obtained. It is distinct from a
// verdict with Success=false.
type TransportError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Kind == FailureStatus {
		return fmt.Sprintf("recaptcha %s: unexpected status %d", e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("recaptcha %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("recaptcha %s", e.Kind)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err carries a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
