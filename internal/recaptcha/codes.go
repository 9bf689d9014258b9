package recaptcha

import (
	"airdrop/pkg/platform/strings"
)

// Code is an error code reported by the verification endpoint. Codes the
// service does not recognise are kept verbatim.
type Code string

const (
	MissingInputSecret   Code = "missing-input-secret"
	InvalidInputSecret   Code = "invalid-input-secret"
	MissingInputResponse Code = "missing-input-response"
	InvalidInputResponse Code = "invalid-input-response"
	BadRequest           Code = "bad-request"
)

// Known reports whether c is one of the documented codes.
func (c Code) Known() bool {
	switch c {
	case MissingInputSecret, InvalidInputSecret, MissingInputResponse, InvalidInputResponse, BadRequest:
		return true
	}
	return false
}

func (c Code) String() string { return string(c) }

// ParseCodes converts raw codes, dropping duplicates in first-seen order.
func ParseCodes(raw []string) []Code {
	deduped := strings.Dedupe(raw)
	if len(deduped) == 0 {
		return nil
	}
	codes := make([]Code, len(deduped))
	for i, s := range deduped {
		codes[i] = Code(s)
	}
	return codes
}

// JoinCodes renders codes space-separated, the form surfaced to callers.
func JoinCodes(codes []Code) string {
	var out string
	for i, c := range codes {
		if i > 0 {
			out += " "
		}
		out += string(c)
	}
	return out
}
