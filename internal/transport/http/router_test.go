package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/suite"

	"airdrop/internal/auditlog"
	jwttoken "airdrop/internal/jwt_token"
	"airdrop/internal/platform/metrics"
	"airdrop/internal/recaptcha"
	"airdrop/internal/registration"
	"airdrop/internal/store"
	"airdrop/internal/token"
	"airdrop/pkg/testutil"
)

// Handler tests run real services over the in-memory store; only the
// verification endpoint is stubbed.

type fakeVerifier struct {
	verdict  *recaptcha.Verdict
	err      error
	remoteIP string
}

func (f *fakeVerifier) Verify(_ context.Context, _ string, remoteIP string) (*recaptcha.Verdict, error) {
	f.remoteIP = remoteIP
	return f.verdict, f.err
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db down") }

type RouterSuite struct {
	suite.Suite
	store    *store.InMemoryStore
	verifier *fakeVerifier
	jwt      *jwttoken.JWTService
	router   http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	s.store = store.NewInMemory()
	_, err := store.Seed(context.Background(), s.store, store.DefaultSeed())
	s.Require().NoError(err)

	s.verifier = &fakeVerifier{verdict: &recaptcha.Verdict{Success: true}}
	regSvc, err := registration.New(s.store, s.verifier, registration.WithLogger(logger), registration.WithMetrics(m))
	s.Require().NoError(err)
	auditSvc, err := auditlog.New(s.store, token.New(), auditlog.WithLogger(logger), auditlog.WithMetrics(m))
	s.Require().NoError(err)
	s.jwt = jwttoken.NewJWTService("operator-key")

	s.router = NewRouter(RouterDeps{
		Logger:         logger,
		Metrics:        m,
		Registration:   regSvc,
		Audit:          auditSvc,
		Health:         s.store,
		CORSOrigins:    []string{"https://airdrop.example"},
		Operator:       s.jwt,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

// =============================================================================
// Lookup
// =============================================================================

func (s *RouterSuite) TestLookupTermsNotAccepted() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/get?address=0xFOO&recaptcha=ok", ""))

	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	resp := testutil.UnmarshalResponse[registryResponse](s.T(), rr)
	s.Nil(resp.User)
	s.Require().NotNil(resp.Error)
	s.Equal(902, resp.Error.Code)
	s.Equal("User have to accept Terms & Conditions", resp.Error.Message)
}

func (s *RouterSuite) TestLookupSuccess() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/get?address=0xBOO&recaptcha=ok", ""))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[registryResponse](s.T(), rr)
	s.Nil(resp.Error)
	s.Require().NotNil(resp.User)
	s.Equal(userView{Address: "0xBOO", Amount: 800}, *resp.User)
}

func (s *RouterSuite) TestLookupLegacyRoute() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/1.0/get?address=0xMISSING&recaptcha=ok", ""))

	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	resp := testutil.UnmarshalResponse[registryResponse](s.T(), rr)
	s.Equal(404, resp.Error.Code)
	s.Equal("User not found", resp.Error.Message)
	s.Equal("true", rr.Header().Get("Deprecation"))
}

func (s *RouterSuite) TestCurrentRoutesAreNotDeprecated() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/get?address=0xBOO&recaptcha=ok", ""))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Empty(rr.Header().Get("Deprecation"))
}

func (s *RouterSuite) TestLookupMissingParams() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/get?address=0xFOO", ""))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *RouterSuite) TestLookupForwardsClientIP() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodGet, "/get?address=0xBOO&recaptcha=ok", "")
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	testutil.DoRequest(s.router, req)

	s.Equal("203.0.113.5", s.verifier.remoteIP)
}

func (s *RouterSuite) TestLookupVerificationFailed() {
	s.verifier.verdict = &recaptcha.Verdict{ErrorCodes: []recaptcha.Code{recaptcha.InvalidInputResponse, "brand-new-code"}}

	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/get?address=0xBOO&recaptcha=bad", ""))

	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	resp := testutil.UnmarshalResponse[registryResponse](s.T(), rr)
	s.Equal(906, resp.Error.Code)
	s.Equal("invalid-input-response brand-new-code", resp.Error.Message)
}

func (s *RouterSuite) TestLookupVerificationUnavailable() {
	s.verifier.verdict = nil
	s.verifier.err = &recaptcha.TransportError{Kind: recaptcha.FailureStatus, StatusCode: 502}

	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/get?address=0xBOO&recaptcha=ok", ""))

	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	resp := testutil.UnmarshalResponse[registryResponse](s.T(), rr)
	s.Equal(906, resp.Error.Code)
	s.Equal("verification unavailable", resp.Error.Message)
}

// =============================================================================
// Register
// =============================================================================

func (s *RouterSuite) TestRegisterFlow() {
	body := map[string]any{"not_resident": true, "terms": true, "address": "0xBAR", "recaptcha": "ok"}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/register", body))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[registryResponse](s.T(), rr)
	s.Equal(userView{Address: "0xBAR", Amount: 42}, *resp.User)

	u, err := s.store.FindUserByAddress(context.Background(), "0xBAR")
	s.Require().NoError(err)
	s.True(u.TermsSigned)
	s.True(u.NotResident)
}

func (s *RouterSuite) TestRegisterLegacyRoute() {
	body := map[string]any{"not_resident": false, "terms": true, "address": "0xBAR", "recaptcha": "ok"}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/1.0/", body))

	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	resp := testutil.UnmarshalResponse[registryResponse](s.T(), rr)
	s.Equal(901, resp.Error.Code)
}

func (s *RouterSuite) TestRegisterUnknownAddress() {
	body := map[string]any{"not_resident": true, "terms": true, "address": "0xNEW", "recaptcha": "ok"}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/register", body))

	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	_, err := s.store.FindUserByAddress(context.Background(), "0xNEW")
	s.Error(err)
}

func (s *RouterSuite) TestRegisterInvalidBody() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/register", "not json"))

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	resp := testutil.UnmarshalResponse[registryResponse](s.T(), rr)
	s.Equal(400, resp.Error.Code)
}

func (s *RouterSuite) TestRegisterOversizedBody() {
	body := map[string]any{"not_resident": true, "terms": true, "address": strings.Repeat("0", maxBodyBytes), "recaptcha": "ok"}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/register", body))

	testutil.AssertStatus(s.T(), rr, http.StatusRequestEntityTooLarge)
	resp := testutil.UnmarshalResponse[registryResponse](s.T(), rr)
	s.Equal(http.StatusRequestEntityTooLarge, resp.Error.Code)
	s.Equal("request body too large", resp.Error.Message)
}

// =============================================================================
// Audit
// =============================================================================

func (s *RouterSuite) createToken() string {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/token?token=legacy-echo", "")
	req.Header.Set("User-Agent", "airdrop-web/1.0")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[auditResponse](s.T(), rr)
	s.Equal("ok", resp.Status)
	s.Require().NotEmpty(resp.Token)
	s.NotEqual("legacy-echo", resp.Token)
	return resp.Token
}

func (s *RouterSuite) TestCreateTokenRecordsHeaders() {
	tok := s.createToken()

	entries, err := s.store.ListLogs(context.Background(), tok)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(auditlog.ActionCreateToken, entries[0].Action)
	s.Equal("airdrop-web/1.0", entries[0].Payload["User-Agent"])
}

func (s *RouterSuite) TestLogWithValidToken() {
	tok := s.createToken()
	body := map[string]any{"token": tok, "action": "claim_clicked", "payload": map[string]string{"step": "2"}}

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/log", body))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[auditResponse](s.T(), rr)
	s.Equal(auditResponse{Status: "ok"}, *resp)
}

func (s *RouterSuite) TestLogOversizedPayloadIsNotStored() {
	tok := s.createToken()
	body := map[string]any{
		"token":   tok,
		"action":  "claim_clicked",
		"payload": map[string]string{"blob": strings.Repeat("x", 8*maxBodyBytes)},
	}

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/log", body))

	testutil.AssertStatus(s.T(), rr, http.StatusRequestEntityTooLarge)
	resp := testutil.UnmarshalResponse[auditResponse](s.T(), rr)
	s.Equal(auditResponse{Status: "error", Reason: "request body too large"}, *resp)

	entries, err := s.store.ListLogs(context.Background(), tok)
	s.Require().NoError(err)
	s.Require().Len(entries, 1, "only the token issuance entry is recorded")
	s.Equal(auditlog.ActionCreateToken, entries[0].Action)
}

func (s *RouterSuite) TestLogWithUnknownToken() {
	body := map[string]any{"token": "nope", "action": "x", "payload": map[string]string{}}

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/log", body))

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	resp := testutil.UnmarshalResponse[auditResponse](s.T(), rr)
	s.Equal(auditResponse{Status: "error", Reason: "invalid token"}, *resp)
}

func (s *RouterSuite) TestLogWithExpiredToken() {
	past := time.Now().Add(-48 * time.Hour)
	s.Require().NoError(s.store.InsertToken(context.Background(), store.Token{
		Token:     "stale",
		CreatedAt: past,
		ExpiredAt: past.Add(time.Hour),
	}))
	body := map[string]any{"token": "stale", "action": "x", "payload": map[string]string{}}

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/log", body))

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

// =============================================================================
// Admin, health, metrics, CORS
// =============================================================================

func (s *RouterSuite) TestAdminLogsRequiresOperator() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/admin/logs/anything", ""))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *RouterSuite) TestAdminLogsReadBack() {
	tok := s.createToken()
	payload := map[string]string{"k": "v", "n": "007"}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/log",
		map[string]any{"token": tok, "action": "act", "payload": payload}))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	bearer, err := s.jwt.GenerateOperatorToken("ops", time.Hour)
	s.Require().NoError(err)
	req := testutil.NewRequestWithBody(s.T(), http.MethodGet, "/admin/logs/"+tok, "")
	req.Header.Set("Authorization", "Bearer "+bearer)
	rr = testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[logsResponse](s.T(), rr)
	s.Equal(tok, resp.Token)
	s.Require().Len(resp.Entries, 2)
	s.Equal("act", resp.Entries[1].Action)
	s.Equal(payload, resp.Entries[1].Payload)
}

func (s *RouterSuite) TestHealth() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/healthz", ""))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	down := NewRouter(RouterDeps{Health: failingPinger{}})
	rr = testutil.DoRequest(down, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/healthz", ""))
	testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
}

func (s *RouterSuite) TestMetricsEndpoint() {
	testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/get?address=0xBOO&recaptcha=ok", ""))

	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/metrics", ""))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Contains(rr.Body.String(), "airdrop_workflow_outcomes_total")
}

func (s *RouterSuite) TestCORSPreflight() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodOptions, "/register", "")
	req.Header.Set("Origin", "https://airdrop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal("https://airdrop.example", rr.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("3600", rr.Header().Get("Access-Control-Max-Age"))
}

func (s *RouterSuite) TestAdminDisabledWithoutOperator() {
	r := NewRouter(RouterDeps{Audit: nil})
	rr := testutil.DoRequest(r, testutil.NewRequestWithBody(s.T(), http.MethodGet, "/admin/logs/x", ""))
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
}
