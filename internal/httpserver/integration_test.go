//go:build integration

package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"
)

////////////////////////////////////////////////////////////////////////////////
// INTEGRATION TEST SUITE
//
// These tests run against a live portal API:
//
//   Client → HTTP API → Form gate → (test mode) → Submission log → Admin count
//
// The service must already be running with SEND_REAL_EMAILS=false, a DB_URL and
// ADMIN_API_KEYS containing ADMIN_KEY.
//
//   go test -tags integration ./internal/httpserver/
//
// Optional environment overrides:
//
//   BASE_URL  default http://localhost:8080
//   ADMIN_KEY default staff-key-123
//
////////////////////////////////////////////////////////////////////////////////

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func adminKey() string {
	if v := os.Getenv("ADMIN_KEY"); v != "" {
		return v
	}
	return "staff-key-123"
}

// unique generates a unique string so tests never collide with previous runs.
func unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// waitReady polls /ready until the server and submission log are up.
func waitReady(t *testing.T) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(30 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL() + "/ready")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(300 * time.Millisecond)
	}

	t.Fatalf("service not ready after 30s")
}

func do(t *testing.T, method, path, apiKey string, payload any) (int, http.Header, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}

	req, _ := http.NewRequest(method, baseURL()+path, body)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, resp.Header, out
}

func countSignups(t *testing.T, from, to time.Time) int64 {
	t.Helper()

	q := url.Values{}
	q.Set("form", "signup")
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))

	s, _, b := do(t, http.MethodGet, "/api/admin/submissions/count?"+q.Encode(), adminKey(), nil)
	if s != http.StatusOK {
		t.Fatalf("count expected 200 got %d: %s", s, b)
	}

	var r struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatalf("invalid count JSON: %v", err)
	}
	return r.Count
}

////////////////////////////////////////////////////////////////////////////////
// HEALTH & READINESS TESTS
////////////////////////////////////////////////////////////////////////////////

func TestHealth_ReturnsOK(t *testing.T) {
	s, _, _ := do(t, http.MethodGet, "/health", "", nil)
	if s != http.StatusOK {
		t.Fatalf("health expected 200 got %d", s)
	}
}

func TestReady_ReturnsOK(t *testing.T) {
	waitReady(t)
	s, _, _ := do(t, http.MethodGet, "/ready", "", nil)
	if s != http.StatusOK {
		t.Fatalf("ready expected 200 got %d", s)
	}
}

////////////////////////////////////////////////////////////////////////////////
// FORM CONTRACT TESTS
////////////////////////////////////////////////////////////////////////////////

func TestForms_PreflightAndMethods(t *testing.T) {
	waitReady(t)

	for _, path := range []string{"/api/signup", "/api/suggestion"} {
		s, h, b := do(t, http.MethodOptions, path, "", nil)
		if s != http.StatusOK || len(b) != 0 {
			t.Fatalf("OPTIONS %s expected empty 200 got %d %q", path, s, b)
		}
		if h.Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("OPTIONS %s missing CORS origin header", path)
		}

		s, _, _ = do(t, http.MethodGet, path, "", nil)
		if s != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s expected 405 got %d", path, s)
		}
	}
}

func TestSignup_BadRequestOnMissingFields(t *testing.T) {
	waitReady(t)

	s, _, _ := do(t, http.MethodPost, "/api/signup", "", map[string]any{"fullName": "Only Name"})
	if s != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", s)
	}
}

////////////////////////////////////////////////////////////////////////////////
// SUBMISSION LOG TESTS
////////////////////////////////////////////////////////////////////////////////

func TestAdmin_UnauthorizedWithoutAPIKey(t *testing.T) {
	waitReady(t)

	s, _, _ := do(t, http.MethodGet, "/api/admin/submissions/count?form=signup&from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z", "", nil)
	if s != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", s)
	}
}

// A test-mode signup is still written to the submission log.
func TestSignup_TestModeIsRecorded(t *testing.T) {
	waitReady(t)

	from := time.Now().UTC().Add(-time.Minute)
	to := time.Now().UTC().Add(time.Hour)
	before := countSignups(t, from, to)

	s, _, b := do(t, http.MethodPost, "/api/signup", "", map[string]any{
		"fullName": unique("cadet"),
		"schoolId": unique("id"),
		"grade":    "10",
		"email":    "cadet@example.org",
	})
	if s != http.StatusOK {
		t.Fatalf("signup expected 200 got %d: %s", s, b)
	}

	var resp struct {
		TestMode bool `json:"test_mode"`
	}
	if err := json.Unmarshal(b, &resp); err != nil || !resp.TestMode {
		t.Fatalf("expected test_mode response, got %s", b)
	}

	if after := countSignups(t, from, to); after != before+1 {
		t.Fatalf("expected count %d got %d", before+1, after)
	}
}
