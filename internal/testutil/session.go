package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/session"
)

const TestSecret = "test-session-secret-0123456789abcdef"

// NewTokens returns the token signer used by router tests.
func NewTokens() *session.Tokens {
	return session.NewTokens(TestSecret, time.Hour)
}

// RoleToken issues a session token for role.
func RoleToken(t *testing.T, tokens *session.Tokens, role session.Role) string {
	t.Helper()

	var g session.Gate
	if err := g.Select(role); err != nil {
		t.Fatalf("Failed to select role %q: %v", role, err)
	}
	tok, _, err := tokens.Issue(&g)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return tok
}

// NewJSONRequest builds a request with an optional JSON body and bearer token.
func NewJSONRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// DecodeJSON decodes a recorder body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("Failed to decode response: %v (body=%q)", err, rec.Body.String())
	}
}
