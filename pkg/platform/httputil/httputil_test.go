package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "airdrop/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		code        string
		description string
	}{
		{"internal hides cause", dErrors.New(dErrors.CodeInternal, "insert token: db failed"), http.StatusInternalServerError, "internal_error", ""},
		{"unauthorized explains", dErrors.New(dErrors.CodeUnauthorized, "invalid token"), http.StatusUnauthorized, "unauthorized", "invalid token"},
		{"bad request explains", dErrors.New(dErrors.CodeBadRequest, "token is required"), http.StatusBadRequest, "bad_request", "token is required"},
		{"plain error is internal", errors.New("boom"), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.code, body["error"])
			desc, ok := body["error_description"]
			if tt.description == "" {
				assert.False(t, ok, "description must be omitted")
			} else {
				assert.Equal(t, tt.description, desc)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(dErrors.CodeNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(dErrors.CodeConflict))
	assert.Equal(t, http.StatusGatewayTimeout, StatusFor(dErrors.CodeTimeout))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(dErrors.Code("something_else")))
}
