package analysis

import (
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/0unveiled/github-analyzer/internal/types"
)

// Pattern families per issue category. RE2 has no lookaheads, so the
// narrower context checks from the line filters carry that weight.
var secretPatterns = compileAll(
	`(?i)password\s*=\s*["'][^"']{8,}["']`,
	`(?i)api[_\-]?key\s*=\s*["'][A-Za-z0-9_\-\.]{16,}["']`,
	`(?i)secret[_\-]?key\s*=\s*["'][^"']{16,}["']`,
	`(?i)access[_\-]?token\s*=\s*["'][^"']{16,}["']`,
	`(?i)auth[_\-]?token\s*=\s*["'][^"']{16,}["']`,
	`(?i)bearer[_\-]?token\s*=\s*["'][^"']{16,}["']`,
	`(?i)aws[_\-]?access[_\-]?key[_\-]?id\s*=\s*["']AKIA[0-9A-Z]{16}["']`,
	`(?i)aws[_\-]?secret[_\-]?access[_\-]?key\s*=\s*["'][^"']+["']`,
)

var sqlInjectionPatterns = compileAll(
	`(?i)execute\s*\(\s*["'][^"']*\s*\+`,
	`(?i)execute\s*\(\s*f["'].*\{.*\}.*["']`,
	`(?i)query\s*\(\s*["'][^"']*\s*\+`,
	`(?i)SELECT.*\+.*FROM`,
	`(?i)\.raw\s*\(\s*["'][^"']*\s*\+\s*[^"']*["']`,
	`(?i)\.execute\s*\(\s*text\s*\(\s*f["']`,
)

var xssPatterns = compileAll(
	`(?i)innerHTML\s*=`,
	`(?i)outerHTML\s*=`,
	`(?i)document\.write\s*\(`,
	`(?i)eval\s*\(`,
	`(?i)setTimeout\s*\(\s*["']`,
	`(?i)setInterval\s*\(\s*["']`,
	`(?i)dangerouslySetInnerHTML\s*=\s*\{\s*__html\s*:`,
	`(?i)\.html\s*\(`,
)

var deserializationPatterns = compileAll(
	`(?i)pickle\.loads\s*\(`,
	`(?i)yaml\.load\s*\([^,)]*\)`,
	`(?i)marshal\.loads\s*\(`,
	`(?i)json\.loads\s*\(\s*request`,
	`(?i)cPickle\.loads\s*\(`,
)

var fileOperationPatterns = compileAll(
	`(?i)open\s*\(\s*(?:request|user|input).*\)`,
	`(?i)file_get_contents\s*\(\s*\$_(?:GET|POST|REQUEST)`,
	`(?i)readFile\s*\(\s*.*\+\s*.*\)`,
)

var commandInjectionPatterns = compileAll(
	`(?i)(?:os\.)?system\s*\(\s*(?:f["']|\s*["'].*\s*\+|\s*["'].*%|\s*["'].*\{)`,
	`(?i)(?:os\.)?popen\s*\(\s*(?:f["']|\s*["'].*\s*\+|\s*["'].*%|\s*["'].*\{)`,
	`(?i)subprocess\.(?:call|run|Popen)\s*\(\s*(?:f["']|\s*["'].*\s*\+|\s*["'].*%|\s*["'].*\{)`,
	`(?i)exec\.Command\s*\(\s*[^"']`,
	`(?i)shell_exec\s*\(\s*(?:f["']|\s*["'].*\s*\+|\s*["'].*%|\s*["'].*\{)`,
)

var sensitiveFilePatterns = compileAll(
	`(?i).*\.env$`,
	`(?i).*\.pem$`,
	`(?i).*\.key$`,
	`(?i).*_rsa$`,
	`(?i).*\.p12$`,
	`(?i).*\.pfx$`,
	`(?i).*\.keystore$`,
	`(?i).*\.jks$`,
	`(?i).*config.*\.json$`,
	`(?i).*secrets.*\.json$`,
	`(?i).*credentials.*\.json$`,
	`(?i).*\.netrc$`,
	`(?i).*\.npmrc$`,
	`(?i).*\.dockercfg$`,
	`(?i).*config\.yml$`,
	`(?i).*settings\.py$`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

var securityCodeExtensions = map[string]bool{
	"py": true, "js": true, "ts": true, "jsx": true, "tsx": true,
	"java": true, "cpp": true, "cc": true, "c": true, "cs": true,
	"go": true, "rs": true, "rb": true, "php": true, "scala": true,
	"kt": true, "groovy": true, "swift": true, "fs": true, "pl": true,
	"sh":   true,
	"html": true, "htm": true, "css": true, "scss": true, "sass": true,
	"vue": true, "svelte": true, "jsp": true, "asp": true, "aspx": true,
	"sql": true, "graphql": true, "gql": true, "hql": true,
	"m": true, "h": true,
}

var securityConfigExtensions = map[string]bool{
	"yml": true, "yaml": true, "json": true, "xml": true, "ini": true,
	"conf": true, "config": true, "properties": true, "env": true,
	"toml": true, "cfg": true, "plist": true, "gradle": true,
	"dockerfile": true, "lock": true,
}

var securityRelevantFilenames = map[string]bool{
	"dockerfile": true, "jenkinsfile": true, "vagrantfile": true,
	"makefile": true, ".env": true, ".npmrc": true, ".yarnrc": true,
	".dockerignore": true, ".gitignore": true,
}

// SecurityAnalyzer scans file contents for risky patterns and scores
// the repository's security posture
type SecurityAnalyzer struct{}

func NewSecurityAnalyzer() *SecurityAnalyzer {
	return &SecurityAnalyzer{}
}

// Analyze scans all files and blends findings with practice signals
func (a *SecurityAnalyzer) Analyze(files []types.FileInfo, structure *types.RepositoryStructure) *types.SecurityMetrics {
	slog.Info("Analyzing security", "files", len(files))

	m := &types.SecurityMetrics{
		IssueLocations: map[string][]types.SecurityIssue{},
	}

	for _, f := range files {
		if isSensitiveFile(f) {
			m.SensitiveFiles++
			m.IssueLocations["sensitive_files"] = append(m.IssueLocations["sensitive_files"],
				types.SecurityIssue{File: f.Path})
		}

		if !isSecurityRelevantFile(f) || f.Content == "" {
			continue
		}
		a.scanFile(f, m)
	}

	// Policy and config files rarely survive content fetching, so the
	// filename-based flags also consult the full discovery audit trail
	// carried by structure.
	m.HasSecurityPolicy = hasSecurityPolicy(files)
	m.HasDependencyUpdates = hasDependencyUpdates(files)
	m.UsesSecretsScanning = usesSecretsScanning(files)
	m.HasSecurityWorkflow = hasSecurityWorkflow(files)
	if structure != nil {
		m.HasSecurityPolicy = m.HasSecurityPolicy || structure.HasSecurityPolicy
		m.HasDependencyUpdates = m.HasDependencyUpdates || structure.HasDependencyAutomation
		m.UsesSecretsScanning = m.UsesSecretsScanning || structure.HasSecretsScanningConfig
	}

	m.VulnerableDependencies, m.OutdatedDependencies, m.DependencySecurityScore = estimateDependencyRisk(files)

	m.CriticalIssues = m.HardcodedSecrets + m.SQLInjectionRisks + m.CommandInjection
	m.HighIssues = m.XSSRisks + m.InsecureDeserialization + m.VulnerableDependencies
	m.MediumIssues = m.CommandInjection + m.InsecureFileOperations
	m.LowIssues = m.SensitiveFiles + m.OutdatedDependencies/2
	m.PotentialVulnerabilities = m.CriticalIssues + m.HighIssues + m.MediumIssues + m.LowIssues

	m.SecurityScore = securityScore(m)

	slog.Info("Security analysis complete", "score", m.SecurityScore, "issues", m.PotentialVulnerabilities)
	return m
}

// scanFile runs every pattern family line by line with 1-based locations
func (a *SecurityAnalyzer) scanFile(f types.FileInfo, m *types.SecurityMetrics) {
	lines := strings.Split(f.Content, "\n")

	record := func(category string, lineNo int, hits int) {
		m.SecurityHotspots += hits
		m.IssueLocations[category] = append(m.IssueLocations[category],
			types.SecurityIssue{File: f.Path, Line: lineNo})
	}

	for idx, line := range lines {
		lineNo := idx + 1

		if isCommentLine(line) {
			continue
		}

		for _, p := range secretPatterns {
			hits := len(p.FindAllString(line, -1))
			if hits > 0 && !isLikelyTestData(line) {
				m.HardcodedSecrets += hits
				record("hardcoded_secrets", lineNo, hits)
			}
		}

		for _, p := range sqlInjectionPatterns {
			if hits := len(p.FindAllString(line, -1)); hits > 0 {
				m.SQLInjectionRisks += hits
				record("sql_injection", lineNo, hits)
			}
		}
		for _, p := range xssPatterns {
			if hits := len(p.FindAllString(line, -1)); hits > 0 {
				m.XSSRisks += hits
				record("xss_risks", lineNo, hits)
			}
		}
		for _, p := range commandInjectionPatterns {
			if hits := len(p.FindAllString(line, -1)); hits > 0 {
				m.CommandInjection += hits
				record("command_injection", lineNo, hits)
			}
		}
		for _, p := range deserializationPatterns {
			if hits := len(p.FindAllString(line, -1)); hits > 0 {
				m.InsecureDeserialization += hits
				record("insecure_deserialization", lineNo, hits)
			}
		}
		for _, p := range fileOperationPatterns {
			if hits := len(p.FindAllString(line, -1)); hits > 0 {
				m.InsecureFileOperations += hits
				record("insecure_file_operations", lineNo, hits)
			}
		}
	}
}

func isCommentLine(line string) bool {
	s := strings.TrimSpace(line)
	return strings.HasPrefix(s, "#") || strings.HasPrefix(s, "//") ||
		strings.HasPrefix(s, "/*") || strings.HasPrefix(s, "*") ||
		strings.HasPrefix(s, `"""`) || strings.HasPrefix(s, "'''")
}

var quotedValuePattern = regexp.MustCompile(`["']([^"']*)["']`)

var placeholderValues = map[string]bool{
	"password": true, "changeme": true, "change_me": true,
	"test123": true, "123456": true, "12345678": true, "admin": true,
	"placeholder": true, "xxxxxxxx": true, "your_password": true,
	"your-api-key": true, "your_api_key": true,
}

// isLikelyTestData suppresses fixture and placeholder credentials. Whole-line
// indicators catch test scaffolding; the placeholder set is matched against
// the quoted value only, so a real assignment is never suppressed just
// because the variable is named "password".
func isLikelyTestData(line string) bool {
	lower := strings.ToLower(line)
	for _, indicator := range []string{"test", "mock", "dummy", "example", "sample", "fake"} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	if match := quotedValuePattern.FindStringSubmatch(lower); match != nil {
		return placeholderValues[match[1]]
	}
	return false
}

func isSensitiveFile(f types.FileInfo) bool {
	for _, p := range sensitiveFilePatterns {
		if p.MatchString(f.Path) {
			return true
		}
	}
	return false
}

func isSecurityRelevantFile(f types.FileInfo) bool {
	if securityRelevantFilenames[strings.ToLower(f.Name)] {
		return true
	}
	ext := strings.ToLower(f.Extension)
	return securityCodeExtensions[ext] || securityConfigExtensions[ext]
}

func hasSecurityPolicy(files []types.FileInfo) bool {
	for _, f := range files {
		lower := strings.ToLower(f.Path)
		if lower == "security.md" || lower == "security.txt" ||
			lower == ".github/security.md" || lower == "docs/security.md" {
			return true
		}
	}
	return false
}

func hasDependencyUpdates(files []types.FileInfo) bool {
	automationFiles := map[string]bool{
		".github/dependabot.yml":  true,
		".github/dependabot.yaml": true,
		".github/renovate.json":   true,
		"renovate.json":           true,
		".dependabot/config.yml":  true,
		".whitesource":            true,
	}

	for _, f := range files {
		if automationFiles[f.Path] {
			return true
		}
		if isWorkflowFile(f) && containsAny(f.Content, "dependabot", "renovate", "dependency", "update") {
			return true
		}
	}
	return false
}

func usesSecretsScanning(files []types.FileInfo) bool {
	for _, f := range files {
		if f.Path == ".github/settings.yml" && containsAny(f.Content, "secret_scanning", "advanced_security") {
			return true
		}
		if isWorkflowFile(f) && containsAny(f.Content, "secret-scanning", "secrets", "detect-secrets", "gitleaks") {
			return true
		}
		switch f.Path {
		case ".gitleaks.toml", ".detect-secrets.yaml", ".pre-commit-config.yaml":
			return true
		}
	}
	return false
}

func hasSecurityWorkflow(files []types.FileInfo) bool {
	for _, f := range files {
		if isWorkflowFile(f) && containsAny(f.Content,
			"security", "codeql", "sast", "dast", "scan", "snyk", "sonarqube",
			"sonarcloud", "owasp", "zap", "trivy", "bandit", "semgrep") {
			return true
		}
		switch f.Path {
		case ".travis.yml", ".circleci/config.yml", ".gitlab-ci.yml":
			if containsAny(f.Content, "security", "scan", "sast", "dast", "snyk", "sonar") {
				return true
			}
		}
	}
	return false
}

func isWorkflowFile(f types.FileInfo) bool {
	ext := strings.ToLower(f.Extension)
	return strings.HasPrefix(f.Path, ".github/workflows/") && (ext == "yml" || ext == "yaml")
}

func containsAny(content string, needles ...string) bool {
	if content == "" {
		return false
	}
	lower := strings.ToLower(content)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// estimateDependencyRisk approximates ecosystem risk from the lock files
// present; a real audit would need the package feeds
func estimateDependencyRisk(files []types.FileInfo) (vulnerable, outdated int, score float64) {
	score = 90.0

	var hasNodeLock, hasPythonLock bool
	for _, f := range files {
		switch f.Path {
		case "package-lock.json", "yarn.lock":
			hasNodeLock = true
		case "Pipfile.lock", "poetry.lock", "requirements.txt":
			hasPythonLock = true
		}
	}

	if hasNodeLock {
		outdated = 5
		vulnerable = 2
		score = 75.0
	}
	if hasPythonLock {
		outdated += 3
		vulnerable++
		score = 85.0
	}
	return vulnerable, outdated, score
}

// securityScore starts at 100, deducts weighted findings, rewards
// practices, then blends in the dependency score
func securityScore(m *types.SecurityMetrics) float64 {
	const (
		criticalWeight = 30.0
		highWeight     = 15.0
		mediumWeight   = 7.0
		lowWeight      = 2.0
	)

	score := 100.0

	score -= float64(m.HardcodedSecrets) * criticalWeight / 2
	score -= float64(m.SQLInjectionRisks) * criticalWeight / 2
	score -= float64(m.CommandInjection) * criticalWeight / 2

	score -= float64(m.XSSRisks) * highWeight / 3
	score -= float64(m.InsecureDeserialization) * highWeight / 3
	score -= float64(m.VulnerableDependencies) * highWeight / 2

	score -= float64(m.CommandInjection) * mediumWeight / 3
	score -= float64(m.InsecureFileOperations) * mediumWeight / 3

	score -= float64(m.SensitiveFiles) * lowWeight / 2

	if m.HasSecurityPolicy {
		score += 5.0
	}
	if m.HasDependencyUpdates {
		score += 10.0
	}
	if m.UsesSecretsScanning {
		score += 15.0
	}
	if m.HasSecurityWorkflow {
		score += 10.0
	}

	score = 0.8*score + 0.2*m.DependencySecurityScore
	return math.Max(0.0, math.Min(100.0, score))
}
