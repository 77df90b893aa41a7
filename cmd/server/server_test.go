package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0unveiled/github-analyzer/internal/analyzer"
	"github.com/0unveiled/github-analyzer/internal/cache"
	"github.com/0unveiled/github-analyzer/internal/config"
	"github.com/0unveiled/github-analyzer/internal/middleware"
	"github.com/0unveiled/github-analyzer/internal/monitoring"
	"github.com/0unveiled/github-analyzer/internal/ratelimit"
	"github.com/0unveiled/github-analyzer/internal/types"
)

type fakeService struct {
	calls  int
	result *types.RepositoryAnalysis
}

func (f *fakeService) AnalyzeRepository(ctx context.Context, owner, repo string, opts analyzer.Options) *types.RepositoryAnalysis {
	f.calls++
	return f.result
}

type fakeGitHub struct {
	rateLimit map[string]interface{}
	err       error
}

func (f *fakeGitHub) GetRateLimit(ctx context.Context) (map[string]interface{}, error) {
	return f.rateLimit, f.err
}

func (f *fakeGitHub) GetPoolStats() map[string]interface{} {
	return map[string]interface{}{"active_connections": 0}
}

func completedResult() *types.RepositoryAnalysis {
	return &types.RepositoryAnalysis{
		AnalysisID:   "test-analysis",
		Repository:   types.Repository{Name: "hello-world", FullName: "octocat/hello-world"},
		AnalyzedAt:   time.Now().UTC(),
		OverallScore: 82.5,
		Status:       types.StatusCompleted,
	}
}

func newTestServer(t *testing.T, svc analysisService, gh githubAPI) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rc, err := ratelimit.NewRedisClient("")
	require.NoError(t, err)

	return &server{
		settings: &config.Settings{
			CORSOrigins: []string{"http://localhost:3000"},
		},
		metrics: monitoring.NewMetrics(),
		logger:  monitoring.NewLogger(),
		github:  gh,
		service: svc,
		results: cache.New(time.Minute, nil),
		limiter: ratelimit.NewRateLimiter(rc, ratelimit.Config{
			Requests: 1000,
			Window:   time.Hour,
		}, nil),
		redis:       rc,
		compression: middleware.NewCompression(middleware.DefaultCompressionConfig()),
	}
}

func postAnalyze(router *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeService{result: completedResult()}, &fakeGitHub{})
	router := srv.router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	svc := &fakeService{result: completedResult()}
	router := newTestServer(t, svc, &fakeGitHub{}).router()

	w := postAnalyze(router, map[string]interface{}{
		"owner": "octocat",
		"repo":  "hello-world",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result types.RepositoryAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, types.StatusCompleted, result.Status)
	assert.Equal(t, "octocat/hello-world", result.Repository.FullName)
	assert.Equal(t, 1, svc.calls)
}

func TestAnalyzeEndpointCachesCompletedResults(t *testing.T) {
	svc := &fakeService{result: completedResult()}
	router := newTestServer(t, svc, &fakeGitHub{}).router()

	body := map[string]interface{}{"owner": "octocat", "repo": "hello-world"}

	first := postAnalyze(router, body)
	second := postAnalyze(router, body)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, svc.calls)
}

func TestAnalyzeEndpointDoesNotCacheFailures(t *testing.T) {
	failed := completedResult()
	failed.Status = types.StatusFailed
	failed.ErrorMessage = "repository not found"

	svc := &fakeService{result: failed}
	router := newTestServer(t, svc, &fakeGitHub{}).router()

	body := map[string]interface{}{"owner": "octocat", "repo": "missing"}

	postAnalyze(router, body)
	postAnalyze(router, body)

	assert.Equal(t, 2, svc.calls)
}

func TestAnalyzeEndpointTokenBypassesCache(t *testing.T) {
	svc := &fakeService{result: completedResult()}
	router := newTestServer(t, svc, &fakeGitHub{}).router()

	body := map[string]interface{}{
		"owner":        "octocat",
		"repo":         "private-repo",
		"access_token": "ghp_testtoken123",
	}

	postAnalyze(router, body)
	postAnalyze(router, body)

	assert.Equal(t, 2, svc.calls)
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	svc := &fakeService{result: completedResult()}
	router := newTestServer(t, svc, &fakeGitHub{}).router()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing repo", map[string]interface{}{"owner": "octocat"}},
		{"path traversal owner", map[string]interface{}{"owner": "../etc", "repo": "passwd"}},
		{"invalid repo characters", map[string]interface{}{"owner": "octocat", "repo": "re po"}},
		{"malformed token", map[string]interface{}{"owner": "octocat", "repo": "hello", "access_token": "bad token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postAnalyze(router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	assert.Equal(t, 0, svc.calls)
}

func TestTokenPoolRotationFlag(t *testing.T) {
	settings := &config.Settings{
		GitHubToken:  "ghp_static",
		GitHubTokens: []string{"ghp_one", "ghp_two"},
	}

	assert.Nil(t, newTokenPool(settings))

	settings.GitHubTokenRotation = true
	pool := newTokenPool(settings)
	require.NotNil(t, pool)
	assert.Equal(t, 3, pool.Size())
}

func TestRateLimitEndpoint(t *testing.T) {
	gh := &fakeGitHub{rateLimit: map[string]interface{}{
		"resources": map[string]interface{}{
			"core": map[string]interface{}{"limit": 5000, "remaining": 4970},
		},
	}}
	router := newTestServer(t, &fakeService{result: completedResult()}, gh).router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rate_limit", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "resources")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestServer(t, &fakeService{result: completedResult()}, &fakeGitHub{}).router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "metrics")
	assert.Contains(t, body, "cache")
	assert.Contains(t, body, "rate_limiter")
}

func TestSecurityHeadersApplied(t *testing.T) {
	router := newTestServer(t, &fakeService{result: completedResult()}, &fakeGitHub{}).router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
