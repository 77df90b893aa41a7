package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/0unveiled/github-analyzer/internal/analyzer"
	"github.com/0unveiled/github-analyzer/internal/cache"
	"github.com/0unveiled/github-analyzer/internal/config"
	"github.com/0unveiled/github-analyzer/internal/errors"
	"github.com/0unveiled/github-analyzer/internal/github"
	"github.com/0unveiled/github-analyzer/internal/insights"
	"github.com/0unveiled/github-analyzer/internal/middleware"
	"github.com/0unveiled/github-analyzer/internal/monitoring"
	"github.com/0unveiled/github-analyzer/internal/ratelimit"
	"github.com/0unveiled/github-analyzer/internal/rotator"
	"github.com/0unveiled/github-analyzer/internal/security"
	"github.com/0unveiled/github-analyzer/internal/types"
)

// analysisTimeout bounds a single repository analysis end to end. Discovery
// of a large repository makes hundreds of API calls, so this is much longer
// than the per-request GitHub timeout.
const analysisTimeout = 5 * time.Minute

// githubAPI is the slice of the GitHub client the HTTP layer needs directly
type githubAPI interface {
	GetRateLimit(ctx context.Context) (map[string]interface{}, error)
	GetPoolStats() map[string]interface{}
}

// analysisService runs the full analysis pipeline for one repository
type analysisService interface {
	AnalyzeRepository(ctx context.Context, owner, repo string, opts analyzer.Options) *types.RepositoryAnalysis
}

// server holds the wired dependencies behind the HTTP routes
type server struct {
	settings    *config.Settings
	metrics     *monitoring.Metrics
	logger      *monitoring.Logger
	github      githubAPI
	service     analysisService
	results     *cache.ResultCache
	limiter     *ratelimit.RateLimiter
	redis       *ratelimit.RedisClient
	compression *middleware.Compression
}

func (s *server) router() *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(security.HeadersMiddleware())
	r.Use(s.compression.Handler())

	r.Use(cors.New(cors.Config{
		AllowOrigins: s.settings.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	r.Use(s.limiter.IPRateLimitMiddleware())

	r.GET("/health", s.handleHealth)
	r.POST("/analyze", s.handleAnalyze)
	r.GET("/rate_limit", s.handleRateLimit)
	r.GET("/rate_limit/status", s.limiter.HandleStatus())
	r.GET("/metrics", s.handleMetrics)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func (s *server) handleHealth(c *gin.Context) {
	redisStatus := "disabled"
	if s.redis.IsEnabled() {
		redisStatus = "ok"
		if err := s.redis.HealthCheck(c.Request.Context()); err != nil {
			redisStatus = "unhealthy"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   "1.0.0",
		"redis":     redisStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *server) handleAnalyze(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), analysisTimeout)
	defer cancel()

	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError("invalid request body")
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	req.Owner = strings.TrimSpace(req.Owner)
	req.Repo = strings.TrimSpace(req.Repo)

	if err := security.ValidateRepoPath(req.Owner, req.Repo); err != nil {
		appErr := errors.NewValidationError(err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}
	if err := security.ValidateAccessToken(req.AccessToken); err != nil {
		appErr := errors.NewValidationError(err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	// Token-scoped requests may touch private repositories; they bypass the
	// shared result cache entirely.
	key := cache.Key(req.Owner, req.Repo, req.MaxFiles)
	if req.AccessToken == "" {
		if cached, ok := s.results.Get(ctx, key); ok {
			s.metrics.IncrementCacheHit()
			s.logger.CacheLogger("get", key, true, s.results.Size())
			c.JSON(http.StatusOK, cached)
			return
		}
		s.metrics.IncrementCacheMiss()
		s.logger.CacheLogger("get", key, false, s.results.Size())
	}

	start := time.Now()
	result := s.service.AnalyzeRepository(ctx, req.Owner, req.Repo, analyzer.Options{
		AccessToken: req.AccessToken,
		MaxFiles:    req.MaxFiles,
	})

	s.metrics.RecordAnalysis(result.Status == types.StatusFailed)
	s.logger.AnalysisLogger(req.Owner, req.Repo,
		result.FilesAnalyzed, result.FilesSkipped,
		result.OverallScore, time.Since(start), result.Status)

	if result.Status == types.StatusCompleted && req.AccessToken == "" {
		s.results.Set(ctx, key, result)
	}

	c.JSON(http.StatusOK, result)
}

func (s *server) handleRateLimit(c *gin.Context) {
	status, err := s.github.GetRateLimit(c.Request.Context())
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":      s.metrics.GetStats(),
		"cache":        s.results.Stats(),
		"rate_limiter": s.limiter.GetStats(),
		"github_pool":  s.github.GetPoolStats(),
		"compression":  s.compression.GetStats(),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// newTokenPool builds the credential rotation pool. With rotation disabled
// the client gets no pool and sticks to the static token (or runs
// unauthenticated).
func newTokenPool(settings *config.Settings) *rotator.Pool {
	if !settings.GitHubTokenRotation {
		return nil
	}
	return rotator.NewPool(settings.AllTokens())
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	settings := config.Load()

	if settings.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	pool := newTokenPool(settings)
	client := github.NewClient(github.Config{
		APIURL:         settings.GitHubAPIURL,
		StaticToken:    settings.GitHubToken,
		RequestTimeout: settings.RequestTimeout,
	}, pool, appMetrics)

	var generator insights.Generator = insights.NewRuleBased()
	var vertexModel *insights.VertexModel
	if settings.InsightsConfigured() {
		vm, err := insights.NewVertexModel(context.Background(),
			settings.VertexProject, settings.VertexLocation, settings.VertexModel, appMetrics)
		if err != nil {
			slog.Warn("Vertex AI unavailable, using rule-based insights", "error", err)
		} else {
			vertexModel = vm
			generator = insights.NewAssisted(vm)
			slog.Info("Assisted insight generation enabled", "model", settings.VertexModel)
		}
	} else {
		slog.Info("Vertex AI not configured, using rule-based insights")
	}

	service := analyzer.NewService(client, generator, analyzer.Config{
		MaxFiles:    settings.MaxFilesPerRepo,
		MaxFileSize: settings.MaxFileSize,
		Concurrency: settings.FetchConcurrency,
	})

	redisClient, err := ratelimit.NewRedisClient(settings.RedisURL)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory fallbacks", "error", err)
	}

	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		Requests: settings.RateLimitRequests,
		Window:   settings.RateLimitWindow,
	}, appMetrics)

	results := cache.New(settings.CacheTTL, redisClient.GetClient())

	srv := &server{
		settings:    settings,
		metrics:     appMetrics,
		logger:      appLogger,
		github:      client,
		service:     service,
		results:     results,
		limiter:     limiter,
		redis:       redisClient,
		compression: middleware.NewCompression(middleware.DefaultCompressionConfig()),
	}

	httpServer := &http.Server{
		Addr:    settings.Host + ":" + settings.Port,
		Handler: srv.router(),
	}

	go func() {
		slog.Info("Starting server", "addr", httpServer.Addr, "environment", settings.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	client.Close()
	redisClient.Close()
	if vertexModel != nil {
		vertexModel.Close()
	}

	slog.Info("Server exited")
}
