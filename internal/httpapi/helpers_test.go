package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexanderramin/orgdir/internal/app"
	"github.com/alexanderramin/orgdir/internal/config"
	"github.com/alexanderramin/orgdir/internal/service"
	"github.com/alexanderramin/orgdir/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "secret"

type testServer struct {
	handler http.Handler
	dir     *app.Directory
}

func testConfig() *config.Config {
	return &config.Config{
		APIKey:           testAPIKey,
		APIPrefix:        "/api/v1",
		MetricsPath:      "/metrics",
		DefaultPageLimit: 100,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	dir := app.New(testutil.NewTestDB(t), service.NewMetricsUseCaseObserver(reg))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewRouter(cfg, Services{
		Activities:    dir.Activities,
		Buildings:     dir.Buildings,
		Organizations: dir.Organizations,
	}, reg, logger)
	return &testServer{handler: h, dir: dir}
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServer(t, testConfig())
}

// do sends an authenticated request; body is JSON-encoded unless it is a string.
func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, path, body)
	req.Header.Set(APIKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func newRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, "body: %s", rec.Body.String())
}

func requireAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) ErrorEnvelope {
	t.Helper()
	requireStatus(t, rec, status)
	env := decode[ErrorEnvelope](t, rec)
	require.Equal(t, code, env.Code, "message: %s", env.Message)
	return env
}

func (s *testServer) createActivity(t *testing.T, name string, parentID *string) activityResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/activities", map[string]any{"name": name, "parent_id": parentID})
	requireStatus(t, rec, http.StatusCreated)
	return decode[activityResponse](t, rec)
}

func (s *testServer) createBuilding(t *testing.T, name string, lat, lon float64) buildingResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/buildings", map[string]any{
		"name": name, "address": name + " street 1", "latitude": lat, "longitude": lon,
	})
	requireStatus(t, rec, http.StatusCreated)
	return decode[buildingResponse](t, rec)
}

func (s *testServer) createOrganization(t *testing.T, name, buildingID string, activityIDs ...string) organizationResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/organizations", map[string]any{
		"name":          name,
		"building_id":   buildingID,
		"phone_numbers": []string{"8-800-555-35-35"},
		"activity_ids":  activityIDs,
	})
	requireStatus(t, rec, http.StatusCreated)
	return decode[organizationResponse](t, rec)
}

func organizationNames(list []organizationResponse) []string {
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, o.Name)
	}
	return out
}
