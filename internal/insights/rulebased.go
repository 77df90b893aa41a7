package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/0unveiled/github-analyzer/internal/types"
)

// RuleBased derives every insight field from thresholds over the metrics.
// It is the default generator and the fallback for the assisted one.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (g *RuleBased) Generate(_ context.Context, in Input) types.Insights {
	weaknesses := identifyWeaknesses(in)

	return types.Insights{
		OverallQualityScore:       overallQualityScore(in),
		ProjectSummary:            "Rule-based analysis - project summary not available",
		CodeStyleAssessment:       qualityAssessment(in.Code),
		ArchitectureAssessment:    architectureAssessment(in.Quality),
		MaintainabilityAssessment: maintainabilityAssessment(in.Code),

		Strengths:              identifyStrengths(in),
		Weaknesses:             weaknesses,
		ImprovementSuggestions: suggestImprovements(weaknesses),

		SkillLevelIndicators:   skillIndicators(in),
		CodingPatterns:         codingPatterns(in),
		BestPracticesAdherence: in.Quality.ArchitectureScore,

		ProjectMaturity:   projectMaturity(in.Repository, in.Quality),
		DevelopmentStage:  developmentStage(in.Repository, in.Code),
		MaintenanceBurden: maintenanceBurden(in.Code, in.Security),

		TechnologyRelevance: in.Stack.ModernnessScore,
		IndustryAlignment:   industryAlignment(in.Stack),
		CareerImpact:        careerImpact(in.Stack, in.Quality),
	}
}

func qualityAssessment(code *types.CodeMetrics) string {
	switch {
	case code.MaintainabilityIndex > 80:
		return "High quality codebase with excellent maintainability and clear structure"
	case code.MaintainabilityIndex > 60:
		return "Good quality codebase with room for improvement in complexity management"
	default:
		return "Codebase needs attention - high complexity and maintainability issues detected"
	}
}

func architectureAssessment(quality *types.QualityMetrics) string {
	switch {
	case quality.ArchitectureScore > 80:
		return "Well-architected project with modern technology choices and good structure"
	case quality.ArchitectureScore > 60:
		return "Decent architecture with some areas for improvement"
	default:
		return "Architecture needs refactoring to improve maintainability and scalability"
	}
}

func maintainabilityAssessment(code *types.CodeMetrics) string {
	switch {
	case code.TechnicalDebtRatio < 0.1:
		return "Low technical debt - codebase is highly maintainable"
	case code.TechnicalDebtRatio < 0.3:
		return "Moderate technical debt - maintainable with some effort"
	default:
		return "High technical debt - significant refactoring needed for maintainability"
	}
}

func identifyStrengths(in Input) []string {
	var strengths []string

	if in.Quality.DocstringCoverage > 70 {
		strengths = append(strengths, "Excellent documentation coverage")
	}
	if in.Security.SecurityScore > 80 {
		strengths = append(strengths, "Strong security practices")
	}
	if in.Code.MaintainabilityIndex > 80 {
		strengths = append(strengths, "Highly maintainable codebase")
	}
	if in.Stack.ModernnessScore > 70 {
		strengths = append(strengths, "Modern technology stack")
	}
	if in.Quality.TestToCodeRatio > 0.5 {
		strengths = append(strengths, "Good test coverage")
	}

	if len(strengths) == 0 {
		return []string{"Functional codebase with basic structure"}
	}
	return strengths
}

func identifyWeaknesses(in Input) []string {
	var weaknesses []string

	if in.Quality.DocstringCoverage < 30 {
		weaknesses = append(weaknesses, "Poor documentation coverage")
	}
	if in.Security.CriticalIssues > 0 {
		weaknesses = append(weaknesses, "Critical security issues present")
	}
	if in.Code.CyclomaticComplexity > 10 {
		weaknesses = append(weaknesses, "High code complexity")
	}
	if in.Quality.TestToCodeRatio < 0.2 {
		weaknesses = append(weaknesses, "Insufficient test coverage")
	}
	if in.Code.TechnicalDebtRatio > 0.3 {
		weaknesses = append(weaknesses, "High technical debt")
	}

	return weaknesses
}

func suggestImprovements(weaknesses []string) []string {
	var improvements []string

	for _, w := range weaknesses {
		lower := strings.ToLower(w)
		switch {
		case strings.Contains(lower, "documentation"):
			improvements = append(improvements, "Add comprehensive documentation and docstrings")
		case strings.Contains(lower, "security"):
			improvements = append(improvements, "Address security vulnerabilities and implement security best practices")
		case strings.Contains(lower, "complexity"):
			improvements = append(improvements, "Refactor complex functions and reduce cyclomatic complexity")
		case strings.Contains(lower, "test"):
			improvements = append(improvements, "Increase test coverage with unit and integration tests")
		case strings.Contains(lower, "debt"):
			improvements = append(improvements, "Reduce technical debt through systematic refactoring")
		}
	}

	if len(improvements) == 0 {
		return []string{"Continue maintaining current quality standards"}
	}
	return improvements
}

func skillIndicators(in Input) map[string]float64 {
	return map[string]float64{
		"code_quality":        min(100.0, in.Code.MaintainabilityIndex),
		"architecture_design": in.Quality.ArchitectureScore,
		"testing_practices":   min(100.0, in.Quality.TestToCodeRatio*100),
		"documentation":       in.Quality.DocstringCoverage,
		"technology_adoption": in.Stack.ModernnessScore,
		"security_awareness":  min(100.0, max(0.0, 100-float64(len(in.Stack.Languages))*5)),
	}
}

func codingPatterns(in Input) []string {
	var patterns []string

	if in.Code.AverageFunctionLength < 20 {
		patterns = append(patterns, "Small, focused functions")
	}
	if in.Code.CyclomaticComplexity < 5 {
		patterns = append(patterns, "Low complexity design")
	}
	if in.Stack.PrimaryLanguage != "" {
		patterns = append(patterns, fmt.Sprintf("%s expertise", in.Stack.PrimaryLanguage))
	}
	if len(in.Stack.Frameworks) > 0 {
		patterns = append(patterns, "Framework-based development")
	}

	if len(patterns) == 0 {
		return []string{"Basic coding practices"}
	}
	return patterns
}

func projectMaturity(repo *types.Repository, quality *types.QualityMetrics) string {
	ageMonths := time.Since(repo.CreatedAt).Hours() / 24 / 30

	switch {
	case ageMonths < 3:
		return "experimental"
	case ageMonths < 12:
		return "developing"
	case quality.ArchitectureScore > 70:
		return "mature"
	default:
		return "legacy"
	}
}

func developmentStage(repo *types.Repository, code *types.CodeMetrics) string {
	switch {
	case code.TotalLines < 1000:
		return "prototype"
	case code.TotalLines < 10000:
		return "mvp"
	case repo.StargazersCount > 100:
		return "production"
	default:
		return "development"
	}
}

func maintenanceBurden(code *types.CodeMetrics, security *types.SecurityMetrics) string {
	score := code.TechnicalDebtRatio*40 +
		float64(security.CriticalIssues)*20 +
		code.CyclomaticComplexity*2

	switch {
	case score < 20:
		return "low"
	case score < 50:
		return "medium"
	default:
		return "high"
	}
}

func industryAlignment(stack *types.TechStack) []string {
	names := make(map[string]bool)
	for _, group := range [][]types.TechnologyItem{stack.Languages, stack.Frameworks} {
		for _, item := range group {
			names[strings.ToLower(item.Name)] = true
		}
	}
	hasAny := func(candidates ...string) bool {
		for _, c := range candidates {
			if names[c] {
				return true
			}
		}
		return false
	}

	var industries []string
	if hasAny("javascript", "typescript", "react", "vue", "vue.js") {
		industries = append(industries, "Web Development")
	}
	if hasAny("python", "r", "jupyter") {
		industries = append(industries, "Data Science")
	}
	if hasAny("java", "spring", "kotlin") {
		industries = append(industries, "Enterprise Software")
	}
	if hasAny("swift", "kotlin", "react native") {
		industries = append(industries, "Mobile Development")
	}

	if len(industries) == 0 {
		return []string{"General Software Development"}
	}
	return industries
}

func careerImpact(stack *types.TechStack, quality *types.QualityMetrics) string {
	score := stack.ModernnessScore*0.4 +
		quality.ArchitectureScore*0.3 +
		min(100, float64(stack.TotalTechnologies)*10)*0.3

	switch {
	case score > 75:
		return "high"
	case score > 50:
		return "medium"
	default:
		return "low"
	}
}
