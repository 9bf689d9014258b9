// Package recaptcha verifies reCAPTCHA responses against the remote
// siteverify endpoint.
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"airdrop/internal/platform/metrics"
	"airdrop/pkg/requestcontext"
)

const (
	// DefaultTimeout bounds a verification call when WithTimeout is not given.
	DefaultTimeout = 10 * time.Second

	// maxBodyBytes caps how much of the endpoint's reply is read.
	maxBodyBytes = 1 << 16
)

// Verdict is the decoded result of one verification.
type Verdict struct {
	Success     bool
	ErrorCodes  []Code
	Hostname    string
	ChallengeTS time.Time
}

type verifyResponse struct {
	Success     bool     `json:"success"`
	ErrorCodes  []string `json:"error-codes"`
	Hostname    string   `json:"hostname"`
	ChallengeTS string   `json:"challenge_ts"`
}

// Client performs one outbound verification per call. It never retries.
type Client struct {
	secret    string
	verifyURL string
	http      *http.Client
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport. The client is never modified; a
// WithTimeout value is applied to a copy.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout bounds each verification call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) { cl.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

// New builds a Client for the given secret and endpoint.
func New(secret, verifyURL string, opts ...Option) *Client {
	c := &Client{
		secret:    secret,
		verifyURL: verifyURL,
		http:      &http.Client{Timeout: DefaultTimeout},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.timeout != c.http.Timeout {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// BuildURL encodes the verification request as query parameters on endpoint.
// remoteip is omitted when empty.
func BuildURL(endpoint, secret, response, remoteIP string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse verify url: %w", err)
	}
	q := u.Query()
	q.Set("secret", secret)
	q.Set("response", response)
	if remoteIP != "" {
		q.Set("remoteip", remoteIP)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Verify asks the endpoint whether response is a genuine solve. A nil error
// means a verdict was obtained, which may still be unsuccessful.
func (c *Client) Verify(ctx context.Context, response, remoteIP string) (*Verdict, error) {
	start := time.Now()
	defer c.metrics.ObserveVerification(start)

	verdict, err := c.verify(ctx, response, remoteIP)
	switch {
	case err != nil:
		c.metrics.IncrementVerification("transport_error")
		c.logger.WarnContext(ctx, "recaptcha verification transport failure",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	case verdict.Success:
		c.metrics.IncrementVerification("passed")
	default:
		c.metrics.IncrementVerification("rejected")
		c.logger.InfoContext(ctx, "recaptcha verification rejected",
			"error_codes", JoinCodes(verdict.ErrorCodes),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return verdict, err
}

func (c *Client) verify(ctx context.Context, response, remoteIP string) (*Verdict, error) {
	target, err := BuildURL(c.verifyURL, c.secret, response, remoteIP)
	if err != nil {
		return nil, &TransportError{Kind: FailureNetwork, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return nil, &TransportError{Kind: FailureNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &TransportError{Kind: FailureStatus, StatusCode: resp.StatusCode}
	}

	var body verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		if isTimeout(err) {
			return nil, &TransportError{Kind: FailureTimeout, Err: err}
		}
		return nil, &TransportError{Kind: FailureMalformed, Err: err}
	}
	return body.toVerdict(), nil
}

// toVerdict trusts success=true regardless of any codes also present.
func (r verifyResponse) toVerdict() *Verdict {
	return &Verdict{
		Success:     r.Success,
		ErrorCodes:  ParseCodes(r.ErrorCodes),
		Hostname:    r.Hostname,
		ChallengeTS: parseChallengeTS(r.ChallengeTS),
	}
}

// parseChallengeTS tolerates absent or unparseable timestamps; the field is
// informational and never affects the verdict.
func parseChallengeTS(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func classify(err error) FailureKind {
	if isTimeout(err) {
		return FailureTimeout
	}
	return FailureNetwork
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
