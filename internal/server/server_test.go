package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/handlers"
	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

type fakePipeline struct{}

func (p *fakePipeline) Execute(ctx context.Context, linter string, format models.OutputFormat, req *models.LintRequest) (*models.LintResponse, error) {
	return &models.LintResponse{
		Success: true,
		Linter:  linter,
		Format:  format,
		Issues:  []models.Issue{},
	}, nil
}

type fakeJobs struct{}

func (s *fakeJobs) Submit(ctx context.Context, linter string, format models.OutputFormat, req *models.LintRequest) (string, error) {
	return "job_1", nil
}

func (s *fakeJobs) Status(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	if jobID != "job_1" {
		return nil, &models.JobNotFoundError{JobID: jobID}
	}
	return &models.JobSnapshot{ID: jobID, Status: models.JobStatusCompleted}, nil
}

func (s *fakeJobs) Cancel(ctx context.Context, jobID string) (bool, error) { return true, nil }

func (s *fakeJobs) Stats(ctx context.Context) (*models.JobStats, error) {
	return &models.JobStats{}, nil
}

type fakeCache struct{}

func (c *fakeCache) ContentHash(data []byte) string                            { return "hash" }
func (c *fakeCache) OptionsHash(opts *models.LintOptions) (string, error)      { return "opts", nil }
func (c *fakeCache) Put(ctx context.Context, entry *models.CacheEntry) error   { return nil }
func (c *fakeCache) Stats(ctx context.Context) (*models.CacheStats, error)     { return &models.CacheStats{}, nil }
func (c *fakeCache) Invalidate(ctx context.Context, ch, l string) (int, error) { return 0, nil }
func (c *fakeCache) Get(ctx context.Context, linter, format, contentHash, optionsHash string) *models.CacheEntry {
	return nil
}

type fakeRunner struct{}

func (r *fakeRunner) Run(ctx context.Context, linter string, workspace *models.Workspace, opts *models.NormalizedOptions) (*models.LinterResult, error) {
	return nil, nil
}
func (r *fakeRunner) Known(linter string) bool                         { return true }
func (r *fakeRunner) List(ctx context.Context) []interfaces.LinterInfo { return nil }

type fakeStorage struct{}

func (m *fakeStorage) CacheStorage() interfaces.CacheStorage   { return nil }
func (m *fakeStorage) JobStorage() interfaces.JobStorage       { return nil }
func (m *fakeStorage) MetricStorage() interfaces.MetricStorage { return nil }
func (m *fakeStorage) Ping(ctx context.Context) error          { return nil }
func (m *fakeStorage) Close() error                            { return nil }

func testHandlers() *Handlers {
	logger := arbor.NewLogger()
	return &Handlers{
		Lint:    handlers.NewLintHandler(&fakePipeline{}, &fakeJobs{}, nil, logger),
		Jobs:    handlers.NewJobHandler(&fakeJobs{}, logger),
		Cache:   handlers.NewCacheHandler(&fakeCache{}, logger),
		Linters: handlers.NewLintersHandler(&fakeRunner{}, logger),
		Status:  handlers.NewStatusHandler(&fakeStorage{}, &fakeJobs{}, &fakeRunner{}, logger),
	}
}

func newTestServer(t *testing.T, mutate func(cfg *common.Config)) (*Server, *httptest.Server) {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	s := New(cfg, testHandlers(), nil, arbor.NewLogger())
	ts := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func TestRouteDispatch(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/linters", "", http.StatusOK},
		{http.MethodGet, "/cache/stats", "", http.StatusOK},
		{http.MethodDelete, "/cache", "", http.StatusOK},
		{http.MethodGet, "/jobs/stats", "", http.StatusOK},
		{http.MethodGet, "/jobs/job_1", "", http.StatusOK},
		{http.MethodDelete, "/jobs/job_1", "", http.StatusOK},
		{http.MethodPost, "/eslint/json", `{"content":"var x"}`, http.StatusOK},
		{http.MethodPost, "/eslint/json/async", `{"content":"var x"}`, http.StatusAccepted},
	}

	client := ts.Client()
	for _, tc := range tests {
		var req *http.Request
		var err error
		if tc.body == "" {
			req, err = http.NewRequest(tc.method, ts.URL+tc.path, nil)
		} else {
			req, err = http.NewRequest(tc.method, ts.URL+tc.path, strings.NewReader(tc.body))
		}
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tc.status, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestJobRouteBeatsLintWildcard(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := ts.Client().Get(ts.URL + "/jobs/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var envelope models.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, models.ErrCodeJobNotFound, envelope.Error.Code)
}

func TestRequestIDAssignedAndEchoed(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "caller-supplied")

	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "caller-supplied", resp.Header.Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/eslint/json", nil)
	require.NoError(t, err)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimitRejects(t *testing.T) {
	_, ts := newTestServer(t, func(cfg *common.Config) {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RequestsPerSecond = 1
		cfg.RateLimit.Burst = 1
	})

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var envelope models.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, models.ErrCodeRateLimitExceeded, envelope.Error.Code)
}

func TestDrainRejectsNewRequests(t *testing.T) {
	s, ts := newTestServer(t, nil)
	s.draining.Store(true)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})
	h := withMiddleware(panicking, recoveryMiddleware(arbor.NewLogger()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path  string
		label string
	}{
		{"/health", "/health"},
		{"/cache/stats", "/cache"},
		{"/jobs/job_abc", "/jobs/{id}"},
		{"/jobs/stats", "/jobs/stats"},
		{"/eslint/json", "/{linter}/{format}"},
		{"/eslint/json/async", "/{linter}/{format}/async"},
		{"/eslint/json/eJxLy88vUQ", "/{linter}/{format}/{encoded}"},
	}
	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodGet, tc.path, nil)
		assert.Equal(t, tc.label, routeLabel(r), tc.path)
	}
}

func TestMetricsObserverRecords(t *testing.T) {
	type observation struct {
		route  string
		status int
	}
	var seen []observation

	cfg := common.NewDefaultConfig()
	cfg.RateLimit.Enabled = false

	observe := func(r *http.Request, route string, status int, duration time.Duration, cacheHit bool) {
		seen = append(seen, observation{route: route, status: status})
	}

	s := New(cfg, testHandlers(), observe, arbor.NewLogger())
	ts := httptest.NewServer(s.httpServer.Handler)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, seen, 1)
	assert.Equal(t, "/health", seen[0].route)
	assert.Equal(t, http.StatusOK, seen[0].status)
}
