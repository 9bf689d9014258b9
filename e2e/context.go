package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext holds per-scenario HTTP state against a running server.
type TestContext struct {
	baseURL    string
	client     *http.Client
	lastStatus int
	lastBody   map[string]any
	token      string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (tc *TestContext) reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.token = ""
}

func (tc *TestContext) POST(path string, body any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tc.lastBody); err != nil {
			return fmt.Errorf("decode response %q: %w", raw, err)
		}
	}
	return nil
}

func (tc *TestContext) StatusCode() int { return tc.lastStatus }

// GetResponseField resolves a dotted path such as "error.code".
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var cur any = tc.lastBody
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %v is not an object", field, cur)
		}
		if cur, ok = m[part]; !ok {
			return nil, fmt.Errorf("field %q not found in response %v", field, tc.lastBody)
		}
	}
	return cur, nil
}

func (tc *TestContext) GetToken() string { return tc.token }

func (tc *TestContext) SetToken(token string) { tc.token = token }
