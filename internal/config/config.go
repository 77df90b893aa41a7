package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds all runtime configuration loaded from the environment
type Settings struct {
	Environment string
	Host        string
	Port        string
	CORSOrigins []string

	// GitHub integration
	GitHubToken         string
	GitHubTokens        []string
	GitHubTokenRotation bool
	GitHubAPIURL        string

	// Insight generation (Vertex AI)
	VertexProject  string
	VertexLocation string
	VertexModel    string

	// Analysis
	MaxFileSize      int
	MaxFilesPerRepo  int
	FetchConcurrency int
	RequestTimeout   time.Duration

	// Cache
	CacheTTL time.Duration
	RedisURL string

	// Inbound rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads settings from the environment, with .env autoload for local runs
func Load() *Settings {
	_ = godotenv.Load()

	s := &Settings{
		Environment: getEnv("ENVIRONMENT", "development"),
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		GitHubTokens:        splitList(os.Getenv("GITHUB_TOKENS")),
		GitHubTokenRotation: getEnvBool("GITHUB_TOKEN_ROTATION", true),
		GitHubAPIURL:        getEnv("GITHUB_API_URL", "https://api.github.com"),

		VertexProject:  os.Getenv("VERTEX_PROJECT"),
		VertexLocation: getEnv("VERTEX_LOCATION", "us-central1"),
		VertexModel:    getEnv("VERTEX_MODEL", "gemini-1.5-flash"),

		MaxFileSize:      getEnvInt("MAX_FILE_SIZE", 1024*1024),
		MaxFilesPerRepo:  getEnvInt("MAX_FILES_PER_REPO", 1000),
		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 8),
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT", 30)) * time.Second,

		CacheTTL: time.Duration(getEnvInt("CACHE_TTL", 3600)) * time.Second,
		RedisURL: os.Getenv("REDIS_URL"),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(getEnvInt("RATE_LIMIT_WINDOW", 3600)) * time.Second,
	}

	if s.Environment == "production" {
		s.CORSOrigins = filterLocalhost(s.CORSOrigins)
	}

	return s
}

// AllTokens returns the rotation pool plus the single-token fallback
func (s *Settings) AllTokens() []string {
	tokens := make([]string, 0, len(s.GitHubTokens)+1)
	seen := make(map[string]bool)
	for _, t := range s.GitHubTokens {
		if t != "" && !seen[t] {
			tokens = append(tokens, t)
			seen[t] = true
		}
	}
	if s.GitHubToken != "" && !seen[s.GitHubToken] {
		tokens = append(tokens, s.GitHubToken)
	}
	return tokens
}

// InsightsConfigured reports whether the assisted insight path can run
func (s *Settings) InsightsConfigured() bool {
	return s.VertexProject != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func filterLocalhost(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if !strings.Contains(o, "localhost") {
			out = append(out, o)
		}
	}
	return out
}
