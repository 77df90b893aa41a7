// Package analyzer orchestrates a full repository analysis: metadata,
// discovery, the metric analyzers and insight generation. AnalyzeRepository
// never returns an error; failures produce a degraded result with status
// "failed" so API callers always get a well-formed response.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/0unveiled/github-analyzer/internal/analysis"
	"github.com/0unveiled/github-analyzer/internal/discovery"
	"github.com/0unveiled/github-analyzer/internal/github"
	"github.com/0unveiled/github-analyzer/internal/insights"
	"github.com/0unveiled/github-analyzer/internal/types"
)

// Client is the slice of the GitHub client the orchestrator needs
type Client interface {
	GetRepository(ctx context.Context, owner, repo string) (*types.Repository, error)
	GetLanguages(ctx context.Context, owner, repo string) (map[string]int, error)
	ListContents(ctx context.Context, owner, repo, path string) ([]github.ContentItem, error)
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
	GetCommits(ctx context.Context, owner, repo string, perPage, maxPages int) ([]github.Commit, error)
	GetContributors(ctx context.Context, owner, repo string) ([]github.Contributor, error)
}

// tokenScoper is implemented by clients that can rebind to a caller token
type tokenScoper interface {
	WithToken(token string) *github.Client
}

// Config bounds discovery for each analysis run
type Config struct {
	MaxFiles    int
	MaxFileSize int
	Concurrency int
}

// Options are per-request overrides
type Options struct {
	AccessToken string
	MaxFiles    int
}

// Service wires the client, analyzers and insight generator together
type Service struct {
	client   Client
	insights insights.Generator
	cfg      Config

	code     *analysis.CodeAnalyzer
	quality  *analysis.QualityAnalyzer
	security *analysis.SecurityAnalyzer
	stack    *analysis.TechStackAnalyzer
}

func NewService(client Client, gen insights.Generator, cfg Config) *Service {
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 200
	}
	return &Service{
		client:   client,
		insights: gen,
		cfg:      cfg,
		code:     analysis.NewCodeAnalyzer(),
		quality:  analysis.NewQualityAnalyzer(),
		security: analysis.NewSecurityAnalyzer(),
		stack:    analysis.NewTechStackAnalyzer(),
	}
}

// AnalyzeRepository runs the full pipeline for one repository
func (s *Service) AnalyzeRepository(ctx context.Context, owner, repo string, opts Options) *types.RepositoryAnalysis {
	start := time.Now()
	slog.Info("Starting repository analysis", "owner", owner, "repo", repo)

	client := s.client
	if opts.AccessToken != "" {
		if scoper, ok := client.(tokenScoper); ok {
			client = scoper.WithToken(opts.AccessToken)
		}
	}

	maxFiles := opts.MaxFiles
	if maxFiles <= 0 || maxFiles > s.cfg.MaxFiles {
		maxFiles = s.cfg.MaxFiles
	}

	repository, err := client.GetRepository(ctx, owner, repo)
	if err != nil {
		return s.failedResult(owner, repo, start, nil, err)
	}

	languages, err := client.GetLanguages(ctx, owner, repo)
	if err != nil {
		slog.Warn("Failed to fetch languages", "owner", owner, "repo", repo, "error", err)
		languages = map[string]int{}
	}
	repository.Languages = languages

	disc := discovery.New(client, discovery.Config{
		MaxFiles:    maxFiles,
		MaxFileSize: s.cfg.MaxFileSize,
		Concurrency: s.cfg.Concurrency,
	})
	result, err := disc.Discover(ctx, owner, repo)
	if err != nil {
		return s.failedResult(owner, repo, start, nil, err)
	}

	structure := discovery.DeriveStructure(result.Discovered)

	codeMetrics := s.code.Analyze(result.Files)
	qualityMetrics := s.quality.Analyze(result.Files, structure)
	securityMetrics := s.security.Analyze(result.Files, structure)
	techStack := s.stack.Analyze(result.Files, structure, languages)

	generated := s.insights.Generate(ctx, insights.Input{
		Repository: repository,
		Code:       codeMetrics,
		Quality:    qualityMetrics,
		Security:   securityMetrics,
		Stack:      techStack,
		Files:      result.Files,
	})

	contributions := s.fetchContributions(ctx, client, owner, repo)

	analysisResult := &types.RepositoryAnalysis{
		AnalysisID: uuid.NewString(),
		Repository: *repository,
		AnalyzedAt: time.Now().UTC(),
		Duration:   time.Since(start).Seconds(),

		Structure:         *structure,
		CodeMetrics:       *codeMetrics,
		QualityMetrics:    *qualityMetrics,
		SecurityMetrics:   *securityMetrics,
		TechStack:         *techStack,
		ContributionStats: contributions,
		Insights:          generated,

		OverallScore: generated.OverallQualityScore,

		FilesAnalyzed:      len(result.Files),
		FilesSkipped:       result.Skipped,
		TotalLinesAnalyzed: codeMetrics.TotalLines,
		FilesDiscovered:    result.Discovered,

		Status: types.StatusCompleted,
	}

	slog.Info("Repository analysis complete",
		"owner", owner, "repo", repo,
		"files", len(result.Files),
		"overall_score", analysisResult.OverallScore,
		"duration_s", analysisResult.Duration)

	return analysisResult
}

// fetchContributions summarizes commit and contributor activity. Failures
// here degrade to an empty block rather than failing the analysis.
func (s *Service) fetchContributions(ctx context.Context, client Client, owner, repo string) types.ContributionStats {
	commits, err := client.GetCommits(ctx, owner, repo, 100, 5)
	if err != nil {
		slog.Warn("Failed to fetch commits", "owner", owner, "repo", repo, "error", err)
	}

	contributors, err := client.GetContributors(ctx, owner, repo)
	if err != nil {
		slog.Warn("Failed to fetch contributors", "owner", owner, "repo", repo, "error", err)
	}

	return buildContributionStats(commits, contributors, time.Now())
}

func buildContributionStats(commits []github.Commit, contributors []github.Contributor, now time.Time) types.ContributionStats {
	stats := types.ContributionStats{}

	var oldest, newest time.Time
	for _, c := range commits {
		date := c.Commit.Author.Date
		if date.IsZero() {
			continue
		}
		if now.Sub(date) <= 30*24*time.Hour {
			stats.CommitsLast30Days++
		}
		if now.Sub(date) <= 90*24*time.Hour {
			stats.CommitsLast90Days++
		}
		if oldest.IsZero() || date.Before(oldest) {
			oldest = date
		}
		if newest.IsZero() || date.After(newest) {
			newest = date
		}
	}

	totalContributions := 0
	top := github.Contributor{}
	for _, c := range contributors {
		totalContributions += c.Contributions
		if c.Contributions > top.Contributions {
			top = c
		}
	}

	stats.TotalAuthors = len(contributors)
	if totalContributions > 0 {
		stats.TotalCommits = totalContributions
		stats.PrimaryAuthor = top.Login
		stats.PrimaryAuthorPercentage = float64(top.Contributions) / float64(totalContributions) * 100
	} else {
		stats.TotalCommits = len(commits)
	}

	if len(commits) > 0 && newest.After(oldest) {
		weeks := newest.Sub(oldest).Hours() / 24 / 7
		if weeks < 1 {
			weeks = 1
		}
		stats.DevelopmentVelocity = float64(len(commits)) / weeks
	} else if len(commits) > 0 {
		stats.DevelopmentVelocity = float64(len(commits))
	}

	return stats
}

// failedResult builds the degraded response returned when the pipeline
// cannot complete
func (s *Service) failedResult(owner, repo string, start time.Time, discovered []string, cause error) *types.RepositoryAnalysis {
	slog.Error("Repository analysis failed", "owner", owner, "repo", repo, "error", cause)

	fullName := fmt.Sprintf("%s/%s", owner, repo)
	htmlURL := fmt.Sprintf("https://github.com/%s", fullName)

	if discovered == nil {
		discovered = []string{}
	}

	return &types.RepositoryAnalysis{
		AnalysisID: uuid.NewString(),
		Repository: types.Repository{
			Name:          repo,
			FullName:      fullName,
			Description:   "Analysis failed",
			HTMLURL:       htmlURL,
			CloneURL:      htmlURL + ".git",
			DefaultBranch: "main",
			Languages:     map[string]int{},
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		},
		AnalyzedAt: time.Now().UTC(),
		Duration:   time.Since(start).Seconds(),

		Structure: types.RepositoryStructure{FileTypes: map[string]int{}},
		Insights: types.Insights{
			ProjectSummary:            "Analysis failed - unable to generate project summary",
			CodeStyleAssessment:       fmt.Sprintf("Analysis failed: %v", cause),
			ArchitectureAssessment:    "Analysis failed",
			MaintainabilityAssessment: "Analysis failed",
			ProjectMaturity:           "unknown",
			DevelopmentStage:          "unknown",
			MaintenanceBurden:         "unknown",
			CareerImpact:              "unknown",
		},

		FilesDiscovered: discovered,

		Status:       types.StatusFailed,
		ErrorMessage: cause.Error(),
	}
}
