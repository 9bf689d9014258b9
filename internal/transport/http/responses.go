package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"airdrop/internal/registration"
	"airdrop/internal/store"
	"airdrop/pkg/platform/httputil"
)

// registryResponse is the envelope for /register and /get. Exactly one of
// Error and User is set.
type registryResponse struct {
	Error *registryError `json:"error"`
	User  *userView      `json:"user"`
}

type registryError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type userView struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

func writeUser(w http.ResponseWriter, u *store.User) {
	httputil.WriteJSON(w, http.StatusOK, registryResponse{
		User: &userView{Address: u.Address, Amount: u.Amount},
	})
}

func writeRegistryError(w http.ResponseWriter, status, code int, message string) {
	httputil.WriteJSON(w, status, registryResponse{
		Error: &registryError{Code: code, Message: message},
	})
}

// writeWorkflowError renders a registration failure. Anything that is not a
// workflow error is reported as not found so store details never leak.
func writeWorkflowError(w http.ResponseWriter, err error) {
	e, ok := registration.AsError(err)
	if !ok {
		e = &registration.Error{Code: registration.CodeUserNotFound, Err: err}
	}
	writeRegistryError(w, statusForCode(e.Code), e.Code, e.Message())
}

func statusForCode(code int) int {
	switch code {
	case registration.CodeUserNotFound:
		return http.StatusNotFound
	case registration.CodeUserIsResident, registration.CodeTermsNotAccepted, registration.CodeVerificationFailed:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// auditResponse is the envelope for /token and /log.
type auditResponse struct {
	Status string `json:"status"`
	Token  string `json:"token,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func writeAuditError(w http.ResponseWriter, status int, reason string) {
	httputil.WriteJSON(w, status, auditResponse{Status: "error", Reason: reason})
}

// maxBodyBytes caps JSON request bodies at the 4 KiB older clients were
// served with.
const maxBodyBytes = 4096

// decodeBody decodes a capped JSON body into v. On failure it returns the
// status to answer with: 413 past the cap, 400 otherwise.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}
	return 0, nil
}

func bodyErrorMessage(status int) string {
	if status == http.StatusRequestEntityTooLarge {
		return "request body too large"
	}
	return "invalid request body"
}
