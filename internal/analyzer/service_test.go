package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0unveiled/github-analyzer/internal/github"
	"github.com/0unveiled/github-analyzer/internal/insights"
	"github.com/0unveiled/github-analyzer/internal/types"
)

type fakeClient struct {
	repoErr      error
	listErr      error
	commits      []github.Commit
	contributors []github.Contributor
}

func (f *fakeClient) GetRepository(_ context.Context, owner, repo string) (*types.Repository, error) {
	if f.repoErr != nil {
		return nil, f.repoErr
	}
	return &types.Repository{
		ID:              42,
		Name:            repo,
		FullName:        owner + "/" + repo,
		DefaultBranch:   "main",
		StargazersCount: 10,
		CreatedAt:       time.Now().AddDate(-1, 0, 0),
	}, nil
}

func (f *fakeClient) GetLanguages(context.Context, string, string) (map[string]int, error) {
	return map[string]int{"Go": 60000}, nil
}

func (f *fakeClient) ListContents(_ context.Context, _, _, path string) ([]github.ContentItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if path != "" {
		return nil, nil
	}
	return []github.ContentItem{
		{Name: "main.go", Path: "main.go", Size: 100, Type: "file"},
		{Name: "README.md", Path: "README.md", Size: 40, Type: "file"},
	}, nil
}

func (f *fakeClient) GetFileContent(_ context.Context, _, _, path string) (string, error) {
	if path == "main.go" {
		return "package main\n\nfunc main() {}\n", nil
	}
	return "# readme\n", nil
}

func (f *fakeClient) GetCommits(context.Context, string, string, int, int) ([]github.Commit, error) {
	return f.commits, nil
}

func (f *fakeClient) GetContributors(context.Context, string, string) ([]github.Contributor, error) {
	return f.contributors, nil
}

func commitAt(daysAgo int) github.Commit {
	var c github.Commit
	c.Commit.Author.Date = time.Now().AddDate(0, 0, -daysAgo)
	return c
}

func TestAnalyzeRepositoryCompletes(t *testing.T) {
	client := &fakeClient{
		commits:      []github.Commit{commitAt(1), commitAt(40), commitAt(200)},
		contributors: []github.Contributor{{Login: "alice", Contributions: 80}, {Login: "bob", Contributions: 20}},
	}
	svc := NewService(client, insights.NewRuleBased(), Config{MaxFiles: 50})

	result := svc.AnalyzeRepository(context.Background(), "octocat", "hello", Options{})

	require.NotNil(t, result)
	assert.Equal(t, types.StatusCompleted, result.Status)
	assert.NotEmpty(t, result.AnalysisID)
	assert.Equal(t, "octocat/hello", result.Repository.FullName)
	assert.Equal(t, 1, result.FilesAnalyzed)
	assert.Len(t, result.FilesDiscovered, 2)
	assert.Greater(t, result.TotalLinesAnalyzed, 0)
	assert.Equal(t, result.Insights.OverallQualityScore, result.OverallScore)

	assert.Equal(t, 100, result.ContributionStats.TotalCommits)
	assert.Equal(t, "alice", result.ContributionStats.PrimaryAuthor)
	assert.InDelta(t, 80.0, result.ContributionStats.PrimaryAuthorPercentage, 0.001)
	assert.Equal(t, 1, result.ContributionStats.CommitsLast30Days)
	assert.Equal(t, 2, result.ContributionStats.CommitsLast90Days)
}

func TestAnalyzeRepositoryMetadataFailure(t *testing.T) {
	client := &fakeClient{repoErr: errors.New("boom")}
	svc := NewService(client, insights.NewRuleBased(), Config{MaxFiles: 50})

	result := svc.AnalyzeRepository(context.Background(), "octocat", "gone", Options{})

	require.NotNil(t, result)
	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Equal(t, "boom", result.ErrorMessage)
	assert.Equal(t, "octocat/gone", result.Repository.FullName)
	assert.Equal(t, 0.0, result.OverallScore)
	assert.Contains(t, result.Insights.CodeStyleAssessment, "Analysis failed")
	assert.Equal(t, "unknown", result.Insights.ProjectMaturity)
	assert.NotNil(t, result.FilesDiscovered)
}

func TestAnalyzeRepositoryDiscoveryFailure(t *testing.T) {
	client := &fakeClient{listErr: errors.New("tree unavailable")}
	svc := NewService(client, insights.NewRuleBased(), Config{MaxFiles: 50})

	result := svc.AnalyzeRepository(context.Background(), "octocat", "hello", Options{})

	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Equal(t, "tree unavailable", result.ErrorMessage)
}

func TestMaxFilesClampedToServiceLimit(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, insights.NewRuleBased(), Config{MaxFiles: 10})

	result := svc.AnalyzeRepository(context.Background(), "octocat", "hello", Options{MaxFiles: 5000})
	assert.Equal(t, types.StatusCompleted, result.Status)
}

func TestBuildContributionStats(t *testing.T) {
	now := time.Now()
	commits := []github.Commit{commitAt(1), commitAt(10), commitAt(70)}
	contributors := []github.Contributor{
		{Login: "carol", Contributions: 30},
		{Login: "dan", Contributions: 10},
	}

	stats := buildContributionStats(commits, contributors, now)

	assert.Equal(t, 40, stats.TotalCommits)
	assert.Equal(t, 2, stats.TotalAuthors)
	assert.Equal(t, "carol", stats.PrimaryAuthor)
	assert.InDelta(t, 75.0, stats.PrimaryAuthorPercentage, 0.001)
	assert.Equal(t, 2, stats.CommitsLast30Days)
	assert.Equal(t, 3, stats.CommitsLast90Days)
	// 3 commits over roughly 10 weeks
	assert.InDelta(t, 0.3, stats.DevelopmentVelocity, 0.05)
}

func TestBuildContributionStatsNoContributors(t *testing.T) {
	stats := buildContributionStats([]github.Commit{commitAt(3)}, nil, time.Now())

	assert.Equal(t, 1, stats.TotalCommits)
	assert.Empty(t, stats.PrimaryAuthor)
	assert.Equal(t, 1.0, stats.DevelopmentVelocity)
}
