package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/0unveiled/github-analyzer/internal/types"
)

// TextModel is the slice of a generative model the assisted generator needs
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

const (
	maxSampleFiles    = 5
	maxSelectedFiles  = 8
	maxSampleChars    = 2000
	maxStrengthsItems = 3
)

// Assisted asks a generative model for each insight section. Every prompt has
// a rule-based default used when the model errors or returns nothing, and a
// run where every prompt fails degrades to the full rule-based result.
type Assisted struct {
	model    TextModel
	fallback *RuleBased
}

func NewAssisted(model TextModel) *Assisted {
	return &Assisted{model: model, fallback: NewRuleBased()}
}

func (g *Assisted) Generate(ctx context.Context, in Input) types.Insights {
	defaults := g.fallback.Generate(ctx, in)
	prompt := buildContext(in)

	prompts := 0
	failures := 0
	ask := func(section, question string) (string, bool) {
		prompts++
		text, err := g.model.GenerateText(ctx, prompt+"\n\n"+question)
		if err != nil || strings.TrimSpace(text) == "" {
			failures++
			slog.Warn("Assisted insight unavailable, using rule-based default",
				"section", section, "error", err)
			return "", false
		}
		return strings.TrimSpace(text), true
	}

	out := defaults

	if text, ok := ask("project_summary", summaryPrompt); ok {
		out.ProjectSummary = text
	}
	if text, ok := ask("code_style", qualityPrompt); ok {
		out.CodeStyleAssessment = text
	}
	if text, ok := ask("architecture", architecturePrompt); ok {
		out.ArchitectureAssessment = text
	}
	if text, ok := ask("maintainability", maintainabilityPrompt); ok {
		out.MaintainabilityAssessment = text
	}
	if text, ok := ask("strengths", strengthsPrompt); ok {
		if items := splitList(text, maxStrengthsItems); len(items) > 0 {
			out.Strengths = items
		}
	}
	if text, ok := ask("weaknesses", weaknessesPrompt); ok {
		if items := splitList(text, maxStrengthsItems); len(items) > 0 {
			out.Weaknesses = items
			out.ImprovementSuggestions = suggestImprovements(items)
		}
	}
	if text, ok := ask("improvements", improvementsPrompt); ok {
		if items := splitList(text, maxStrengthsItems); len(items) > 0 {
			out.ImprovementSuggestions = items
		}
	}
	if text, ok := ask("skill_indicators", skillsPrompt); ok {
		if scores := parseScores(text); len(scores) > 0 {
			out.SkillLevelIndicators = scores
		}
	}
	if text, ok := ask("coding_patterns", patternsPrompt); ok {
		if items := splitList(text, 5); len(items) > 0 {
			out.CodingPatterns = items
		}
	}
	if text, ok := ask("project_maturity", maturityPrompt); ok {
		if v, valid := oneOf(text, "experimental", "developing", "mature", "legacy"); valid {
			out.ProjectMaturity = v
		}
	}
	if text, ok := ask("development_stage", stagePrompt); ok {
		if v, valid := oneOf(text, "prototype", "mvp", "development", "production"); valid {
			out.DevelopmentStage = v
		}
	}

	if failures == prompts {
		slog.Error("All assisted insight prompts failed, returning rule-based insights")
		return defaults
	}
	return out
}

// buildContext renders the metrics summary plus representative code samples
// the prompts are grounded on
func buildContext(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Repository Analysis Context:

Repository: %s
Description: %s
Primary Language: %s
Stars: %d
Forks: %d

Code Metrics:
- Total Lines: %d
- Lines of Code: %d
- Cyclomatic Complexity: %.2f
- Maintainability Index: %.2f
- Technical Debt Ratio: %.2f

Quality Metrics:
- Documentation Coverage: %.1f%%
- Test Files: %d
- Architecture Score: %.1f

Security Metrics:
- Security Score: %.1f
- Critical Issues: %d
- Security Hotspots: %d

Technology Stack:
- Languages: %d
- Frameworks: %d
- Total Technologies: %d
- Modernness Score: %.1f
`,
		in.Repository.FullName,
		orDefault(in.Repository.Description, "No description"),
		orDefault(in.Stack.PrimaryLanguage, "Multiple"),
		in.Repository.StargazersCount,
		in.Repository.ForksCount,
		in.Code.TotalLines,
		in.Code.LinesOfCode,
		in.Code.CyclomaticComplexity,
		in.Code.MaintainabilityIndex,
		in.Code.TechnicalDebtRatio,
		in.Quality.DocstringCoverage,
		in.Quality.TestFilesCount,
		in.Quality.ArchitectureScore,
		in.Security.SecurityScore,
		in.Security.CriticalIssues,
		in.Security.SecurityHotspots,
		len(in.Stack.Languages),
		len(in.Stack.Frameworks),
		in.Stack.TotalTechnologies,
		in.Stack.ModernnessScore,
	)

	samples := selectRepresentativeFiles(in.Files)
	if len(samples) > maxSampleFiles {
		samples = samples[:maxSampleFiles]
	}
	if len(samples) > 0 {
		b.WriteString("\nCode Samples for Analysis:\n")
	}
	for i, f := range samples {
		if f.Content == "" {
			continue
		}
		preview := f.Content
		truncated := ""
		if len(preview) > maxSampleChars {
			preview = preview[:maxSampleChars]
			truncated = "...(truncated)"
		}
		fmt.Fprintf(&b, "\nFile %d: %s\nLanguage: %s\nSize: %d characters\n\nCode Content:\n```%s\n%s\n```\n%s\n",
			i+1, f.Path, f.Extension, len(f.Content), f.Extension, preview, truncated)
	}

	return b.String()
}

// priorityPatterns orders file selection toward business logic over plumbing
var priorityPatterns = [][]string{
	{"service", "controller", "handler", "manager", "business", "logic", "core"},
	{"api/", "routes/", "endpoints/", "router"},
	{"model", "schema", "entity", "dto", "types"},
	{"main.py", "index.js", "app.py", "server.js", "main.ts", "index.ts", "app.ts", "main.go"},
	{"page", "view", "screen", "component"},
	{"util", "helper", "function", "processor"},
}

var sampleSourceExtensions = map[string]bool{
	"py": true, "js": true, "ts": true, "tsx": true, "jsx": true,
	"java": true, "go": true, "rs": true, "cpp": true, "c": true, "cs": true,
}

// selectRepresentativeFiles picks up to eight files worth showing a model,
// preferring paths that look like business logic and skipping configuration
func selectRepresentativeFiles(files []types.FileInfo) []types.FileInfo {
	if len(files) == 0 {
		return nil
	}

	var selected []types.FileInfo
	used := make(map[string]bool)

	for _, patterns := range priorityPatterns {
		for _, f := range files {
			if len(selected) >= maxSelectedFiles {
				break
			}
			if used[f.Path] {
				continue
			}
			lower := strings.ToLower(f.Path)
			for _, pattern := range patterns {
				if strings.Contains(lower, pattern) {
					selected = append(selected, f)
					used[f.Path] = true
					break
				}
			}
			if used[f.Path] {
				break
			}
		}
	}

	for _, f := range files {
		if len(selected) >= maxSelectedFiles {
			break
		}
		if used[f.Path] || isConfigFile(f.Path) {
			continue
		}
		if len(f.Content) > 100 && len(f.Content) < 10000 && sampleSourceExtensions[f.Extension] {
			selected = append(selected, f)
			used[f.Path] = true
		}
	}

	return selected
}

var configFilePatterns = []string{
	"package.json", "package-lock.json", "yarn.lock", "bun.lockb",
	"tsconfig.json", "jsconfig.json", "next.config", "vite.config",
	"webpack.config", "rollup.config", "babel.config", "eslint",
	"prettier", ".env", "dockerfile", "docker-compose",
	"tailwind.config", "postcss.config", "components.json",
	"requirements.txt", "pyproject.toml", "setup.py", "cargo.toml",
	"go.mod", "go.sum", "pom.xml", "build.gradle",
	".gitignore", ".gitattributes", "readme", "license",
	"makefile", "cmake", ".github/", ".vscode/", ".idea/",
	"migration", "seed", "fixture",
}

func isConfigFile(path string) bool {
	lower := strings.ToLower(path)
	for _, pattern := range configFilePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// splitList turns a line-per-item model response into a trimmed string slice
func splitList(text string, limit int) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" {
			continue
		}
		items = append(items, line)
		if len(items) >= limit {
			break
		}
	}
	return items
}

// parseScores reads "name: score" lines into a skill indicator map
func parseScores(text string) map[string]float64 {
	scores := make(map[string]float64)
	for _, line := range strings.Split(text, "\n") {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || score < 0 || score > 100 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if key != "" {
			scores[key] = score
		}
	}
	if len(scores) == 0 {
		return nil
	}
	return scores
}

func oneOf(text string, allowed ...string) (string, bool) {
	candidate := strings.ToLower(strings.TrimSpace(text))
	candidate = strings.Trim(candidate, `."'`)
	for _, a := range allowed {
		if candidate == a {
			return a, true
		}
	}
	return "", false
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

const summaryPrompt = `You are a senior software engineer analyzing this codebase to understand what this project actually does functionally. Read the code samples above, not just the file names: what business logic is implemented, what data is processed, what APIs are called, what problem is being solved. Write 2-3 sentences explaining what this project accomplishes and what problem domain it addresses. Focus on WHAT it does, not HOW it is built. Avoid generic answers like "a web application with modern tools".`

const qualityPrompt = `You are a senior software engineer reviewing this codebase. Based on the code samples above, assess: the coding patterns and implementation approaches you actually see, how effectively language features and libraries are used, how the code is organized and named, and the most useful specific improvements. Provide a technical analysis of 4-6 sentences grounded in the code shown.`

const architecturePrompt = `You are a software architect reviewing this codebase. Based on the files and structure above, describe: the architectural pattern you identify, how well the technology choices fit together, how modules and services are organized, how well this would scale and stay maintainable, and any design patterns you see implemented. Provide 5-7 sentences grounded in what is actually shown.`

const maintainabilityPrompt = `You are a senior developer conducting a maintainability review. Based on the code samples and metrics above, comment on readability, the specific technical debt or code smells you identify, testing and documentation as far as you can observe them, concrete refactoring opportunities, and what a new developer would struggle with. Provide 4-6 specific sentences.`

const strengthsPrompt = `Based on the repository metrics and code above, identify 2-3 key technical strengths such as code quality, security, architecture, or technology choices. Return only a simple list, one item per line, without bullets or numbers.`

const weaknessesPrompt = `Based on the repository metrics and code above, identify 2-3 key technical weaknesses. Return only a simple list, one item per line, without bullets or numbers.`

const improvementsPrompt = `Based on the repository metrics and code above, suggest 2-3 concrete, actionable improvements. Return only a simple list, one item per line, without bullets or numbers.`

const skillsPrompt = `Based on the repository above, rate the author's skills from 0 to 100 in these areas: code_quality, architecture_design, testing_practices, documentation, technology_adoption, security_awareness. Return one "name: score" pair per line and nothing else.`

const patternsPrompt = `Based on the code samples above, list up to 5 coding patterns or practices the author demonstrably uses. Return only a simple list, one item per line, without bullets or numbers.`

const maturityPrompt = `Classify this project's maturity as exactly one word from: experimental, developing, mature, legacy. Return only that word.`

const stagePrompt = `Classify this project's development stage as exactly one word from: prototype, mvp, development, production. Return only that word.`
