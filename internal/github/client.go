package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/0unveiled/github-analyzer/internal/errors"
	"github.com/0unveiled/github-analyzer/internal/monitoring"
	"github.com/0unveiled/github-analyzer/internal/resilience"
	"github.com/0unveiled/github-analyzer/internal/rotator"
	"github.com/0unveiled/github-analyzer/internal/types"
)

const (
	userAgent    = "0Unveiled-Analyzer/1.0"
	acceptHeader = "application/vnd.github.v3+json"

	// maxRequestRetries bounds token rotation attempts per request
	maxRequestRetries = 3
)

// Config holds GitHub client configuration
type Config struct {
	APIURL         string
	StaticToken    string
	RequestTimeout time.Duration
}

// Client is a rate-limit aware GitHub REST client with credential rotation
type Client struct {
	apiURL        string
	staticToken   string
	overrideToken string
	pool          *rotator.Pool
	httpPool      *resilience.ConnectionPool
	metrics       *monitoring.Metrics
	logger        *monitoring.Logger
}

// NewClient creates a GitHub client backed by the given credential pool.
// pool may be empty; the client then falls back to the static token or
// unauthenticated requests.
func NewClient(cfg Config, pool *rotator.Pool, metrics *monitoring.Metrics) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.github.com"
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	})

	httpPool := resilience.NewConnectionPool(10, 20, 30*time.Second, cfg.RequestTimeout, cb)

	c := &Client{
		apiURL:      strings.TrimRight(cfg.APIURL, "/"),
		staticToken: cfg.StaticToken,
		pool:        pool,
		httpPool:    httpPool,
		metrics:     metrics,
		logger:      monitoring.NewLogger(),
	}

	if pool != nil && pool.Size() > 0 {
		remaining, count := pool.Capacity()
		slog.Info("GitHub client initialized", "tokens", count, "total_remaining", remaining)
	} else if cfg.StaticToken != "" {
		slog.Info("GitHub client initialized with single token")
	} else {
		slog.Warn("GitHub client initialized without credentials")
	}

	return c
}

// WithToken returns a copy of the client that authenticates every request
// with the given token instead of the pool
func (c *Client) WithToken(token string) *Client {
	if token == "" {
		return c
	}
	clone := *c
	clone.overrideToken = token
	return &clone
}

// IsConfigured reports whether any credential is available
func (c *Client) IsConfigured() bool {
	if c.overrideToken != "" || c.staticToken != "" {
		return true
	}
	return c.pool != nil && c.pool.Size() > 0
}

// selectToken picks the credential for the next attempt. The bool reports
// whether the token came from the rotation pool.
func (c *Client) selectToken() (string, bool, error) {
	if c.overrideToken != "" {
		return c.overrideToken, false, nil
	}

	if c.pool != nil && c.pool.Size() > 0 {
		token := c.pool.Select()
		if token == "" {
			return "", false, errors.NewQuotaExhaustedError(c.pool.EarliestReset())
		}
		return token, true, nil
	}

	return c.staticToken, false, nil
}

func buildHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)

	if token == "" {
		return
	}

	// Fine-grained and classic ghp_ tokens take the Bearer scheme, older
	// OAuth tokens use the token scheme
	if strings.HasPrefix(token, "ghp_") || strings.HasPrefix(token, "github_pat_") {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("Authorization", "token "+token)
	}
}

// makeRequest executes one GitHub API call with quota accounting and
// rotation retry. Returns the raw response body.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	reqURL := c.apiURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error

	for attempt := 0; attempt < maxRequestRetries; attempt++ {
		token, fromPool, err := c.selectToken()
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
		if err != nil {
			return nil, errors.NewInternalError("failed to build request", err)
		}
		buildHeaders(req, token)

		if c.metrics != nil {
			c.metrics.IncrementGitHubCalls()
		}

		reqStart := time.Now()
		resp, err := c.httpPool.Do(req)
		if err != nil {
			lastErr = errors.NewNetworkError("GitHub request failed", err)
			if fromPool {
				c.pool.Record(token, nil, nil, false)
			}
			if attempt < maxRequestRetries-1 {
				slog.Info("Retrying request", "url", reqURL, "attempt", attempt+1)
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = errors.NewNetworkError("failed to read response body", readErr)
			if fromPool {
				c.pool.Record(token, nil, nil, false)
			}
			continue
		}

		remaining, resetUnix := parseRateHeaders(resp.Header)

		c.logger.ExternalAPILogger("GitHub", method, endpoint,
			resp.StatusCode, time.Since(reqStart), resp.StatusCode < 400)

		if resp.StatusCode == http.StatusForbidden && strings.Contains(strings.ToLower(string(body)), "rate limit") {
			slog.Warn("Rate limit hit", "url", reqURL, "attempt", attempt+1)
			if fromPool {
				zero := 0
				c.pool.Record(token, &zero, resetUnix, false)
				if c.metrics != nil {
					c.metrics.IncrementTokenRotation()
				}
				_, unblocked := c.pool.Capacity()
				c.logger.RotationLogger("rate_limited", tokenSuffix(token), 0, unblocked)
			}
			if attempt < maxRequestRetries-1 {
				continue
			}
			var resetAt time.Time
			if c.pool != nil {
				resetAt = c.pool.EarliestReset()
			}
			return nil, errors.NewQuotaExhaustedError(resetAt)
		}

		if fromPool {
			c.pool.Record(token, remaining, resetUnix, resp.StatusCode < 500)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, errors.NewNotFoundError(reqURL)
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		default:
			// Non-rate-limit errors fail fast
			return nil, errors.NewExternalAPIError("GitHub",
				fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)))
		}
	}

	return nil, lastErr
}

func parseRateHeaders(h http.Header) (*int, *int64) {
	var remaining *int
	var reset *int64

	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = &n
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			reset = &ts
		}
	}
	return remaining, reset
}

func tokenSuffix(token string) string {
	if len(token) <= 4 {
		return token
	}
	return token[len(token)-4:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type repoResponse struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	FullName      string       `json:"full_name"`
	Description   string       `json:"description"`
	Private       bool         `json:"private"`
	Fork          bool         `json:"fork"`
	HTMLURL       string       `json:"html_url"`
	CloneURL      string       `json:"clone_url"`
	DefaultBranch string       `json:"default_branch"`
	Language      string       `json:"language"`
	Size          int          `json:"size"`
	Stargazers    int          `json:"stargazers_count"`
	Watchers      int          `json:"watchers_count"`
	Forks         int          `json:"forks_count"`
	OpenIssues    int          `json:"open_issues_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	PushedAt      *time.Time   `json:"pushed_at"`
	Topics        []string     `json:"topics"`
	License       *licenseInfo `json:"license"`
	Archived      bool         `json:"archived"`
	Disabled      bool         `json:"disabled"`
}

type licenseInfo struct {
	Name string `json:"name"`
}

// ContentItem is a single entry from the contents API
type ContentItem struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
	Type     string `json:"type"` // file or dir
	Content  string `json:"content,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// Commit is a single entry from the commits API
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
		Message string `json:"message"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
}

// Contributor is a single entry from the contributors API
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// GetRepository fetches repository metadata
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*types.Repository, error) {
	slog.Info("Fetching repository info", "owner", owner, "repo", repo)

	body, err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("repos/%s/%s", owner, repo), nil)
	if err != nil {
		return nil, err
	}

	var data repoResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.NewExternalAPIError("GitHub", fmt.Errorf("decode repository: %w", err))
	}

	r := &types.Repository{
		ID:              data.ID,
		Name:            data.Name,
		FullName:        data.FullName,
		Description:     data.Description,
		Private:         data.Private,
		Fork:            data.Fork,
		HTMLURL:         data.HTMLURL,
		CloneURL:        data.CloneURL,
		DefaultBranch:   data.DefaultBranch,
		Language:        data.Language,
		Languages:       map[string]int{},
		Size:            data.Size,
		StargazersCount: data.Stargazers,
		WatchersCount:   data.Watchers,
		ForksCount:      data.Forks,
		OpenIssuesCount: data.OpenIssues,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
		PushedAt:        data.PushedAt,
		Topics:          data.Topics,
		Archived:        data.Archived,
		Disabled:        data.Disabled,
	}
	if data.License != nil {
		r.License = data.License.Name
	}

	return r, nil
}

// GetLanguages fetches the language byte-count breakdown
func (c *Client) GetLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("repos/%s/%s/languages", owner, repo), nil)
	if err != nil {
		return nil, err
	}

	languages := make(map[string]int)
	if err := json.Unmarshal(body, &languages); err != nil {
		return nil, errors.NewExternalAPIError("GitHub", fmt.Errorf("decode languages: %w", err))
	}
	return languages, nil
}

// ListContents lists a single directory level of the repository tree
func (c *Client) ListContents(ctx context.Context, owner, repo, path string) ([]ContentItem, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("repos/%s/%s/contents/%s", owner, repo, path), nil)
	if err != nil {
		return nil, err
	}

	// A file path returns a single object instead of an array
	var items []ContentItem
	if err := json.Unmarshal(body, &items); err != nil {
		var single ContentItem
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return nil, errors.NewExternalAPIError("GitHub", fmt.Errorf("decode contents: %w", err))
		}
		items = []ContentItem{single}
	}
	return items, nil
}

// GetFileContent fetches and decodes a single file
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("repos/%s/%s/contents/%s", owner, repo, path), nil)
	if err != nil {
		return "", err
	}

	var item ContentItem
	if err := json.Unmarshal(body, &item); err != nil {
		return "", errors.NewExternalAPIError("GitHub", fmt.Errorf("decode file content: %w", err))
	}

	if item.Encoding != "base64" {
		return "", errors.NewExternalAPIError("GitHub",
			fmt.Errorf("unsupported encoding %q for %s", item.Encoding, path))
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(item.Content, "\n", ""))
	if err != nil {
		return "", errors.NewExternalAPIError("GitHub", fmt.Errorf("decode base64 for %s: %w", path, err))
	}

	return string(decoded), nil
}

// GetCommits fetches commits with bounded pagination
func (c *Client) GetCommits(ctx context.Context, owner, repo string, perPage, maxPages int) ([]Commit, error) {
	if perPage <= 0 {
		perPage = 100
	}
	if maxPages <= 0 {
		maxPages = 10
	}

	var all []Commit
	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))

		body, err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("repos/%s/%s/commits", owner, repo), params)
		if err != nil {
			// Partial history is still useful
			slog.Warn("Failed to fetch commits page", "page", page, "error", err)
			break
		}

		var commits []Commit
		if err := json.Unmarshal(body, &commits); err != nil {
			slog.Warn("Failed to decode commits page", "page", page, "error", err)
			break
		}

		if len(commits) == 0 {
			break
		}

		all = append(all, commits...)

		if len(commits) < perPage {
			break
		}
	}

	slog.Info("Fetched commits", "owner", owner, "repo", repo, "count", len(all))
	return all, nil
}

// GetContributors fetches the contributor list
func (c *Client) GetContributors(ctx context.Context, owner, repo string) ([]Contributor, error) {
	params := url.Values{}
	params.Set("per_page", "100")

	body, err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("repos/%s/%s/contributors", owner, repo), params)
	if err != nil {
		return nil, err
	}

	var contributors []Contributor
	if err := json.Unmarshal(body, &contributors); err != nil {
		return nil, errors.NewExternalAPIError("GitHub", fmt.Errorf("decode contributors: %w", err))
	}
	return contributors, nil
}

// GetRateLimit fetches the live rate limit status plus pool state
func (c *Client) GetRateLimit(ctx context.Context) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	body, err := c.makeRequest(ctx, http.MethodGet, "rate_limit", nil)
	if err == nil {
		if jsonErr := json.Unmarshal(body, &result); jsonErr != nil {
			result = map[string]interface{}{}
		}
	}

	if c.pool != nil && c.pool.Size() > 0 {
		remaining, active := c.pool.Capacity()
		result["token_rotation"] = map[string]interface{}{
			"active_tokens":   active,
			"total_remaining": remaining,
			"token_status":    c.pool.Status(),
		}
	}

	if len(result) == 0 && err != nil {
		return nil, err
	}
	return result, nil
}

// GetPoolStats returns connection pool statistics
func (c *Client) GetPoolStats() map[string]interface{} {
	return c.httpPool.GetStats()
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	return c.httpPool.Close()
}
