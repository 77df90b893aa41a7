package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s := Load()

	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, "https://api.github.com", s.GitHubAPIURL)
	assert.True(t, s.GitHubTokenRotation)
	assert.Equal(t, 1024*1024, s.MaxFileSize)
	assert.Equal(t, 1000, s.MaxFilesPerRepo)
	assert.Equal(t, 8, s.FetchConcurrency)
	assert.Equal(t, time.Hour, s.CacheTTL)
}

func TestTokenListParsing(t *testing.T) {
	t.Setenv("GITHUB_TOKENS", "ghp_aaa, ghp_bbb ,, ghp_ccc")
	t.Setenv("GITHUB_TOKEN", "ghp_primary")

	s := Load()

	assert.Equal(t, []string{"ghp_aaa", "ghp_bbb", "ghp_ccc"}, s.GitHubTokens)
	assert.Equal(t, []string{"ghp_aaa", "ghp_bbb", "ghp_ccc", "ghp_primary"}, s.AllTokens())
}

func TestAllTokensDeduplicates(t *testing.T) {
	t.Setenv("GITHUB_TOKENS", "ghp_aaa,ghp_aaa,ghp_bbb")
	t.Setenv("GITHUB_TOKEN", "ghp_bbb")

	s := Load()

	assert.Equal(t, []string{"ghp_aaa", "ghp_bbb"}, s.AllTokens())
}

func TestProductionFiltersLocalhostOrigins(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://app.example.com")

	s := Load()

	require.Len(t, s.CORSOrigins, 1)
	assert.Equal(t, "https://app.example.com", s.CORSOrigins[0])
}

func TestInsightsConfigured(t *testing.T) {
	s := Load()
	assert.False(t, s.InsightsConfigured())

	t.Setenv("VERTEX_PROJECT", "my-project")
	s = Load()
	assert.True(t, s.InsightsConfigured())
}
