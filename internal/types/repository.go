package types

import "time"

// Repository holds the GitHub repository metadata used by the analyzers
type Repository struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	FullName      string         `json:"full_name"`
	Description   string         `json:"description,omitempty"`
	Private       bool           `json:"private"`
	Fork          bool           `json:"fork"`
	HTMLURL       string         `json:"html_url"`
	CloneURL      string         `json:"clone_url"`
	DefaultBranch string         `json:"default_branch"`
	Language      string         `json:"language,omitempty"`
	Languages     map[string]int `json:"languages"`

	// Statistics
	Size            int `json:"size"` // KB
	StargazersCount int `json:"stargazers_count"`
	WatchersCount   int `json:"watchers_count"`
	ForksCount      int `json:"forks_count"`
	OpenIssuesCount int `json:"open_issues_count"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PushedAt  *time.Time `json:"pushed_at,omitempty"`

	Topics   []string `json:"topics"`
	License  string   `json:"license,omitempty"`
	Archived bool     `json:"archived"`
	Disabled bool     `json:"disabled"`
}

// FileInfo describes a single repository file considered during discovery
type FileInfo struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Size      int    `json:"size"`
	SHA       string `json:"sha"`
	Language  string `json:"language,omitempty"`
	Content   string `json:"-"` // populated only for analyzed files
}

// RepositoryStructure summarizes the layout of the discovered tree
type RepositoryStructure struct {
	TotalFiles       int            `json:"total_files"`
	TotalDirectories int            `json:"total_directories"`
	FileTypes        map[string]int `json:"file_types"`

	HasReadme     bool `json:"has_readme"`
	HasLicense    bool `json:"has_license"`
	HasDockerfile bool `json:"has_dockerfile"`
	HasCIConfig   bool `json:"has_ci_config"`
	HasTests      bool `json:"has_tests"`
	HasDocs       bool `json:"has_docs"`

	// Security practice files spotted anywhere in the audit trail, content
	// fetched or not
	HasSecurityPolicy        bool `json:"has_security_policy"`
	HasDependencyAutomation  bool `json:"has_dependency_automation"`
	HasSecretsScanningConfig bool `json:"has_secrets_scanning_config"`

	PackageManagers []string `json:"package_managers"`
	ConfigFiles     []string `json:"config_files"`
	MaxDepth        int      `json:"max_depth"`
}

// ContributionStats summarizes commit and contributor activity
type ContributionStats struct {
	TotalCommits            int     `json:"total_commits"`
	CommitsLast30Days       int     `json:"commits_last_30_days"`
	CommitsLast90Days       int     `json:"commits_last_90_days"`
	TotalAuthors            int     `json:"total_authors"`
	PrimaryAuthor           string  `json:"primary_author,omitempty"`
	PrimaryAuthorPercentage float64 `json:"primary_author_percentage"`
	DevelopmentVelocity     float64 `json:"development_velocity"` // commits per week
}
