package types

// CodeMetrics holds size, complexity and maintainability aggregates
type CodeMetrics struct {
	TotalLines   int `json:"total_lines"`
	LinesOfCode  int `json:"lines_of_code"`
	CommentLines int `json:"comment_lines"`
	BlankLines   int `json:"blank_lines"`

	CyclomaticComplexity float64 `json:"cyclomatic_complexity"`
	CognitiveComplexity  float64 `json:"cognitive_complexity"`

	MaintainabilityIndex float64 `json:"maintainability_index"`
	TechnicalDebtRatio   float64 `json:"technical_debt_ratio"`

	TotalFiles      int     `json:"total_files"`
	AverageFileSize float64 `json:"average_file_size"`
	LargestFileSize int     `json:"largest_file_size"`

	TotalFunctions        int     `json:"total_functions"`
	AverageFunctionLength float64 `json:"average_function_length"`
	MaxFunctionComplexity float64 `json:"max_function_complexity"`
}

// FileMetrics holds per-file analysis results before aggregation
type FileMetrics struct {
	Path                 string  `json:"path"`
	TotalLines           int     `json:"total_lines"`
	LinesOfCode          int     `json:"lines_of_code"`
	CommentLines         int     `json:"comment_lines"`
	BlankLines           int     `json:"blank_lines"`
	Complexity           float64 `json:"complexity"`
	MaintainabilityIndex float64 `json:"maintainability_index"`
	FunctionCount        int     `json:"function_count"`
}

// QualityMetrics holds documentation, testing and architecture assessments
type QualityMetrics struct {
	DocstringCoverage  float64 `json:"docstring_coverage"`
	CommentDensity     float64 `json:"comment_density"`
	ReadmeQualityScore float64 `json:"readme_quality_score"`

	TestFilesCount  int     `json:"test_files_count"`
	TestToCodeRatio float64 `json:"test_to_code_ratio"`

	NamingConsistency float64 `json:"naming_consistency"`
	CodeDuplication   float64 `json:"code_duplication"`

	HasErrorHandling   bool `json:"has_error_handling"`
	FollowsConventions bool `json:"follows_conventions"`

	DependencyCount   int     `json:"dependency_count"`
	ArchitectureScore float64 `json:"architecture_score"`
}

// SecurityIssue is a single finding with its location
type SecurityIssue struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet,omitempty"`
}

// SecurityMetrics holds scan findings, practice flags and the blended score
type SecurityMetrics struct {
	SecurityHotspots         int `json:"security_hotspots"`
	PotentialVulnerabilities int `json:"potential_vulnerabilities"`
	CriticalIssues           int `json:"critical_issues"`
	HighIssues               int `json:"high_issues"`
	MediumIssues             int `json:"medium_issues"`
	LowIssues                int `json:"low_issues"`

	HasSecurityPolicy    bool `json:"has_security_policy"`
	UsesSecretsScanning  bool `json:"uses_secrets_scanning"`
	HasDependencyUpdates bool `json:"has_dependency_updates"`
	HasSecurityWorkflow  bool `json:"has_security_workflow"`

	HardcodedSecrets        int `json:"hardcoded_secrets"`
	SQLInjectionRisks       int `json:"sql_injection_risks"`
	XSSRisks                int `json:"xss_risks"`
	InsecureDeserialization int `json:"insecure_deserialization"`
	InsecureFileOperations  int `json:"insecure_file_operations"`
	CommandInjection        int `json:"command_injection"`
	SensitiveFiles          int `json:"sensitive_files"`

	IssueLocations map[string][]SecurityIssue `json:"issue_locations"`

	VulnerableDependencies  int     `json:"vulnerable_dependencies"`
	OutdatedDependencies    int     `json:"outdated_dependencies"`
	DependencySecurityScore float64 `json:"dependency_security_score"`

	SecurityScore float64 `json:"security_score"`
}
