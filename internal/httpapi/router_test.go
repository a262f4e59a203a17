package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_RequiresAPIKey(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name string
		key  string
	}{
		{"missing", ""},
		{"wrong", "guess"},
		{"prefix of real key", testAPIKey[:3]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(t, http.MethodGet, "/api/v1/activities", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, req)
			requireAPIError(t, rec, http.StatusForbidden, "FORBIDDEN")
		})
	}
}

func TestRouter_MetricsNeedNoKey(t *testing.T) {
	s := setupServer(t)
	s.createActivity(t, "Food", nil)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, newRequest(t, http.MethodGet, "/metrics", nil))
	requireStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `orgdir_service_use_cases_total{outcome="ok",use_case="activity.create"} 1`)
}

func TestRouter_RequestIDEchoedInErrors(t *testing.T) {
	s := setupServer(t)

	req := newRequest(t, http.MethodGet, "/api/v1/activities/missing", nil)
	req.Header.Set(APIKeyHeader, testAPIKey)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	env := requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND")
	assert.Equal(t, "req-42", env.Meta["request_id"])
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = s.do(t, http.MethodGet, "/api/v1/activities", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	s := setupServer(t)

	rec := s.do(t, http.MethodGet, "/nowhere", nil)
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND")

	for _, path := range []string{
		"/api/v1/activities",
		"/api/v1/activities/some-id",
		"/api/v1/buildings",
		"/api/v1/organizations/search",
	} {
		rec = s.do(t, http.MethodPatch, path, nil)
		requireAPIError(t, rec, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
	}
	rec = s.do(t, http.MethodPost, "/api/v1/activities/some-id/descendants", nil)
	requireAPIError(t, rec, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
}

func TestRouter_CORS(t *testing.T) {
	cfg := testConfig()
	cfg.CORSOrigins = []string{"https://app.example.com"}
	s := newTestServer(t, cfg)

	// Browsers send preflight header names lowercased and sorted.
	for _, headers := range []string{
		strings.ToLower(APIKeyHeader),
		"content-type," + strings.ToLower(APIKeyHeader),
	} {
		req := newRequest(t, http.MethodOptions, "/api/v1/activities", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", headers)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code, headers)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"), headers)
	}

	req := newRequest(t, http.MethodOptions, "/api/v1/activities", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-not-allowed")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = newRequest(t, http.MethodGet, "/api/v1/activities", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set(APIKeyHeader, testAPIKey)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusOK)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeListener_ShutsDownOnCancel(t *testing.T) {
	s := setupServer(t)
	cfg := testConfig()
	cfg.ShutdownTimeout = time.Second

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeListener(ctx, cfg, ln, s.handler, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	req, err := http.NewRequest(http.MethodGet, "http://"+ln.Addr().String()+"/api/v1/activities", nil)
	require.NoError(t, err)
	req.Header.Set(APIKeyHeader, testAPIKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
