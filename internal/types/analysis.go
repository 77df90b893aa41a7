package types

import "time"

// TechCategory classifies a detected technology
type TechCategory string

const (
	TechLanguage   TechCategory = "language"
	TechFramework  TechCategory = "framework"
	TechLibrary    TechCategory = "library"
	TechDatabase   TechCategory = "database"
	TechTool       TechCategory = "tool"
	TechPlatform   TechCategory = "platform"
	TechTesting    TechCategory = "testing"
	TechBuild      TechCategory = "build"
	TechDeployment TechCategory = "deployment"
)

// TechnologyItem is a single detected technology with confidence
type TechnologyItem struct {
	Name       string       `json:"name"`
	Category   TechCategory `json:"category"`
	Version    string       `json:"version,omitempty"`
	Confidence float64      `json:"confidence"`
	FileCount  int          `json:"file_count,omitempty"`
}

// TechStack groups detected technologies by category
type TechStack struct {
	PrimaryLanguage   string           `json:"primary_language,omitempty"`
	Languages         []TechnologyItem `json:"languages"`
	Frameworks        []TechnologyItem `json:"frameworks"`
	Libraries         []TechnologyItem `json:"libraries"`
	Databases         []TechnologyItem `json:"databases"`
	Tools             []TechnologyItem `json:"tools"`
	Platforms         []TechnologyItem `json:"platforms"`
	TestingFrameworks []TechnologyItem `json:"testing_frameworks"`
	BuildTools        []TechnologyItem `json:"build_tools"`
	DeploymentTools   []TechnologyItem `json:"deployment_tools"`

	TotalTechnologies int     `json:"total_technologies"`
	ComplexityScore   float64 `json:"complexity_score"`
	ModernnessScore   float64 `json:"modernness_score"`
}

// Insights holds the generated narrative assessment of a repository
type Insights struct {
	OverallQualityScore       float64 `json:"overall_quality_score"`
	ProjectSummary            string  `json:"project_summary"`
	CodeStyleAssessment       string  `json:"code_style_assessment"`
	ArchitectureAssessment    string  `json:"architecture_assessment"`
	MaintainabilityAssessment string  `json:"maintainability_assessment"`

	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`

	SkillLevelIndicators   map[string]float64 `json:"skill_level_indicators"`
	CodingPatterns         []string           `json:"coding_patterns"`
	BestPracticesAdherence float64            `json:"best_practices_adherence"`

	ProjectMaturity   string `json:"project_maturity"`   // experimental, developing, mature, legacy
	DevelopmentStage  string `json:"development_stage"`  // prototype, mvp, production, development
	MaintenanceBurden string `json:"maintenance_burden"` // low, medium, high

	TechnologyRelevance float64  `json:"technology_relevance"`
	IndustryAlignment   []string `json:"industry_alignment"`
	CareerImpact        string   `json:"career_impact"` // low, medium, high
}

// AnalysisStatus values for RepositoryAnalysis.Status
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RepositoryAnalysis is the complete result returned to API callers
type RepositoryAnalysis struct {
	AnalysisID string     `json:"analysis_id"`
	Repository Repository `json:"repository"`
	AnalyzedAt time.Time  `json:"analyzed_at"`
	Duration   float64    `json:"analysis_duration"` // seconds

	Structure         RepositoryStructure `json:"structure"`
	CodeMetrics       CodeMetrics         `json:"code_metrics"`
	QualityMetrics    QualityMetrics      `json:"quality_metrics"`
	SecurityMetrics   SecurityMetrics     `json:"security_metrics"`
	TechStack         TechStack           `json:"tech_stack"`
	ContributionStats ContributionStats   `json:"contribution_stats"`
	Insights          Insights            `json:"ai_insights"`

	OverallScore float64 `json:"overall_score"`

	FilesAnalyzed      int      `json:"files_analyzed"`
	FilesSkipped       int      `json:"files_skipped"`
	TotalLinesAnalyzed int      `json:"total_lines_analyzed"`
	FilesDiscovered    []string `json:"files_discovered"`

	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// AnalyzeRequest is the request body for the analyze endpoint
type AnalyzeRequest struct {
	Owner       string `json:"owner" binding:"required"`
	Repo        string `json:"repo" binding:"required"`
	AccessToken string `json:"access_token,omitempty"`
	MaxFiles    int    `json:"max_files,omitempty"`
}
