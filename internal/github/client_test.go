package github

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0unveiled/github-analyzer/internal/errors"
	"github.com/0unveiled/github-analyzer/internal/rotator"
)

func newTestClient(serverURL string, tokens []string) (*Client, *rotator.Pool) {
	pool := rotator.NewPool(tokens)
	client := NewClient(Config{
		APIURL:         serverURL,
		RequestTimeout: 5 * time.Second,
	}, pool, nil)
	return client, pool
}

func writeRateHeaders(w http.ResponseWriter, remaining int) {
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
}

func TestGetRepositoryParsesMetadata(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		writeRateHeaders(w, 4500)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 42,
			"name": "demo",
			"full_name": "octocat/demo",
			"description": "a demo",
			"private": false,
			"fork": false,
			"html_url": "https://github.com/octocat/demo",
			"clone_url": "https://github.com/octocat/demo.git",
			"default_branch": "main",
			"language": "Go",
			"size": 128,
			"stargazers_count": 7,
			"forks_count": 2,
			"open_issues_count": 1,
			"created_at": "2024-01-01T00:00:00Z",
			"updated_at": "2024-06-01T00:00:00Z",
			"topics": ["cli"],
			"license": {"name": "MIT License"}
		}`))
	}))
	defer srv.Close()

	client, pool := newTestClient(srv.URL, []string{"ghp_testtoken1"})

	repo, err := client.GetRepository(context.Background(), "octocat", "demo")
	require.NoError(t, err)

	assert.Equal(t, int64(42), repo.ID)
	assert.Equal(t, "octocat/demo", repo.FullName)
	assert.Equal(t, "Go", repo.Language)
	assert.Equal(t, 7, repo.StargazersCount)
	assert.Equal(t, "MIT License", repo.License)
	assert.Equal(t, "Bearer ghp_testtoken1", gotAuth)

	// Quota headers must flow back into the pool
	remaining, unblocked := pool.Capacity()
	assert.Equal(t, 4500, remaining)
	assert.Equal(t, 1, unblocked)
}

func TestTokenSchemeForLegacyTokens(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeRateHeaders(w, 4999)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"gho_legacy99"})

	_, err := client.GetLanguages(context.Background(), "octocat", "demo")
	require.NoError(t, err)
	assert.Equal(t, "token gho_legacy99", gotAuth)
}

func TestUnauthenticatedMode(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeRateHeaders(w, 59)
		w.Write([]byte(`{"Go": 1000}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, nil)

	langs, err := client.GetLanguages(context.Background(), "octocat", "demo")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Go": 1000}, langs)
	assert.Empty(t, gotAuth)
	assert.False(t, client.IsConfigured())
}

func TestRotatesOnRateLimit(t *testing.T) {
	var tokensSeen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		tokensSeen = append(tokensSeen, auth)

		if auth == "Bearer ghp_exhausted1" {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message": "API rate limit exceeded"}`))
			return
		}

		writeRateHeaders(w, 4000)
		w.Write([]byte(`{"Go": 1}`))
	}))
	defer srv.Close()

	pool := rotator.NewPool([]string{"ghp_exhausted1", "ghp_fresh002"})
	// Make the exhausted token win the first selection
	pool.Record("ghp_fresh002", intPtr(3000), nil, true)

	client := NewClient(Config{APIURL: srv.URL, RequestTimeout: 5 * time.Second}, pool, nil)

	langs, err := client.GetLanguages(context.Background(), "octocat", "demo")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Go": 1}, langs)

	require.Len(t, tokensSeen, 2)
	assert.Equal(t, "Bearer ghp_exhausted1", tokensSeen[0])
	assert.Equal(t, "Bearer ghp_fresh002", tokensSeen[1])
}

func TestQuotaExhaustedWhenAllTokensLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "API rate limit exceeded"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"ghp_aaaa0001", "ghp_bbbb0002"})

	_, err := client.GetLanguages(context.Background(), "octocat", "demo")
	require.Error(t, err)
	assert.True(t, errors.IsQuotaExhausted(err))
}

func TestNotFoundFailsFast(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeRateHeaders(w, 4000)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Not Found"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"ghp_testtoken1"})

	_, err := client.GetRepository(context.Background(), "octocat", "missing")
	require.Error(t, err)

	appErr := errors.ToAppError(err)
	assert.Equal(t, errors.CategoryNotFound, appErr.Category)
	assert.Equal(t, 1, calls)
}

func TestServerErrorFailsFast(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"ghp_testtoken1"})

	_, err := client.GetLanguages(context.Background(), "octocat", "demo")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetFileContentDecodesBase64(t *testing.T) {
	content := "package main\n\nfunc main() {}\n"
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRateHeaders(w, 4000)
		w.Write([]byte(`{
			"name": "main.go",
			"path": "main.go",
			"sha": "abc123",
			"size": 29,
			"type": "file",
			"encoding": "base64",
			"content": "` + encoded + `"
		}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"ghp_testtoken1"})

	got, err := client.GetFileContent(context.Background(), "octocat", "demo", "main.go")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestGetFileContentRejectsUnknownEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRateHeaders(w, 4000)
		w.Write([]byte(`{"encoding": "none", "content": ""}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"ghp_testtoken1"})

	_, err := client.GetFileContent(context.Background(), "octocat", "demo", "bin/blob")
	require.Error(t, err)
}

func TestListContentsSingleFileFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRateHeaders(w, 4000)
		w.Write([]byte(`{"name": "README.md", "path": "README.md", "type": "file", "size": 10, "sha": "s1"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"ghp_testtoken1"})

	items, err := client.ListContents(context.Background(), "octocat", "demo", "README.md")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "README.md", items[0].Path)
}

func TestGetCommitsPaginates(t *testing.T) {
	pages := map[string]string{
		"1": `[{"sha": "a"}, {"sha": "b"}]`,
		"2": `[{"sha": "c"}]`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRateHeaders(w, 4000)
		w.Write([]byte(pages[r.URL.Query().Get("page")]))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"ghp_testtoken1"})

	commits, err := client.GetCommits(context.Background(), "octocat", "demo", 2, 5)
	require.NoError(t, err)
	assert.Len(t, commits, 3)
}

func TestWithTokenOverridesPool(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeRateHeaders(w, 4000)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"ghp_pooltoken1"})

	scoped := client.WithToken("ghp_usertoken9")
	_, err := scoped.GetLanguages(context.Background(), "octocat", "demo")
	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_usertoken9", gotAuth)

	// Original client still uses the pool
	_, err = client.GetLanguages(context.Background(), "octocat", "demo")
	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_pooltoken1", gotAuth)
}

func TestGetRateLimitIncludesRotation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRateHeaders(w, 4000)
		w.Write([]byte(`{"rate": {"remaining": 4000}}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, []string{"ghp_testtoken1"})

	status, err := client.GetRateLimit(context.Background())
	require.NoError(t, err)
	assert.Contains(t, status, "rate")
	assert.Contains(t, status, "token_rotation")
}

func intPtr(v int) *int { return &v }
