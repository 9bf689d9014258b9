package registration

import (
	"errors"
	"fmt"

	"airdrop/internal/recaptcha"
)

// Result codes surfaced to clients. They are part of the public contract.
const (
	CodeUserNotFound       = 404
	CodeUserIsResident     = 901
	CodeTermsNotAccepted   = 902
	CodeVerificationFailed = 906
)

const verificationUnavailable = "verification unavailable"

// Error is a workflow failure tagged with its client-facing code.
type Error struct {
	Code    int
	Reasons []recaptcha.Code
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registration %d: %s: %v", e.Code, e.Message(), e.Err)
	}
	return fmt.Sprintf("registration %d: %s", e.Code, e.Message())
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the human-readable text for the code.
func (e *Error) Message() string {
	switch e.Code {
	case CodeUserNotFound:
		return "User not found"
	case CodeUserIsResident:
		return "User should not be resident"
	case CodeTermsNotAccepted:
		return "User have to accept Terms & Conditions"
	case CodeVerificationFailed:
		if e.Err != nil {
			return verificationUnavailable
		}
		return recaptcha.JoinCodes(e.Reasons)
	default:
		return "unknown error"
	}
}

// AsError extracts a workflow error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func userNotFound(cause error) *Error { return &Error{Code: CodeUserNotFound, Err: cause} }

func userIsResident() *Error { return &Error{Code: CodeUserIsResident} }

func termsNotAccepted() *Error { return &Error{Code: CodeTermsNotAccepted} }

func verificationFailed(codes []recaptcha.Code) *Error {
	return &Error{Code: CodeVerificationFailed, Reasons: codes}
}

func verificationTransport(cause error) *Error {
	return &Error{Code: CodeVerificationFailed, Err: cause}
}
