package insights

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0unveiled/github-analyzer/internal/types"
)

func healthyInput() Input {
	return Input{
		Repository: &types.Repository{
			FullName:        "octocat/hello",
			Description:     "demo service",
			StargazersCount: 250,
			CreatedAt:       time.Now().AddDate(-2, 0, 0),
		},
		Code: &types.CodeMetrics{
			TotalLines:            15000,
			LinesOfCode:           11000,
			CyclomaticComplexity:  3.2,
			MaintainabilityIndex:  85.0,
			TechnicalDebtRatio:    0.05,
			AverageFunctionLength: 14.0,
		},
		Quality: &types.QualityMetrics{
			DocstringCoverage: 75.0,
			TestToCodeRatio:   0.6,
			ArchitectureScore: 80.0,
		},
		Security: &types.SecurityMetrics{
			SecurityScore: 90.0,
		},
		Stack: &types.TechStack{
			PrimaryLanguage:   "Go",
			Languages:         []types.TechnologyItem{{Name: "Go"}},
			Frameworks:        []types.TechnologyItem{{Name: "Gin"}},
			TotalTechnologies: 8,
			ModernnessScore:   80.0,
		},
	}
}

func TestRuleBasedHealthyRepository(t *testing.T) {
	in := healthyInput()
	out := NewRuleBased().Generate(context.Background(), in)

	// 0.4*85 + 0.3*80 + 0.3*90
	assert.InDelta(t, 85.0, out.OverallQualityScore, 0.001)
	assert.Equal(t, "Rule-based analysis - project summary not available", out.ProjectSummary)
	assert.Contains(t, out.CodeStyleAssessment, "High quality codebase")
	assert.Contains(t, out.MaintainabilityAssessment, "Low technical debt")

	assert.Contains(t, out.Strengths, "Highly maintainable codebase")
	assert.Contains(t, out.Strengths, "Good test coverage")
	assert.Empty(t, out.Weaknesses)
	assert.Equal(t, []string{"Continue maintaining current quality standards"}, out.ImprovementSuggestions)

	assert.Equal(t, "mature", out.ProjectMaturity)
	assert.Equal(t, "production", out.DevelopmentStage)
	assert.Equal(t, "low", out.MaintenanceBurden)
	assert.Equal(t, "high", out.CareerImpact)
	assert.Equal(t, 80.0, out.BestPracticesAdherence)
	assert.Equal(t, 80.0, out.TechnologyRelevance)
}

func TestRuleBasedStrugglingRepository(t *testing.T) {
	in := healthyInput()
	in.Repository.CreatedAt = time.Now().AddDate(0, -1, 0)
	in.Repository.StargazersCount = 2
	in.Code.MaintainabilityIndex = 40.0
	in.Code.CyclomaticComplexity = 14.0
	in.Code.TechnicalDebtRatio = 0.5
	in.Code.TotalLines = 800
	in.Quality.DocstringCoverage = 5.0
	in.Quality.TestToCodeRatio = 0.0
	in.Security.CriticalIssues = 2

	out := NewRuleBased().Generate(context.Background(), in)

	assert.Contains(t, out.CodeStyleAssessment, "needs attention")
	assert.Contains(t, out.MaintainabilityAssessment, "High technical debt")
	assert.Contains(t, out.Weaknesses, "Poor documentation coverage")
	assert.Contains(t, out.Weaknesses, "Critical security issues present")
	assert.Contains(t, out.Weaknesses, "High code complexity")
	assert.Contains(t, out.ImprovementSuggestions, "Refactor complex functions and reduce cyclomatic complexity")

	assert.Equal(t, "experimental", out.ProjectMaturity)
	assert.Equal(t, "prototype", out.DevelopmentStage)
	// 0.5*40 + 2*20 + 14*2 = 88
	assert.Equal(t, "high", out.MaintenanceBurden)
}

func TestSkillIndicatorsBounded(t *testing.T) {
	in := healthyInput()
	in.Stack.Languages = make([]types.TechnologyItem, 25)

	scores := skillIndicators(in)
	assert.Equal(t, 0.0, scores["security_awareness"])
	assert.LessOrEqual(t, scores["code_quality"], 100.0)
	assert.Equal(t, 60.0, scores["testing_practices"])
}

func TestIndustryAlignment(t *testing.T) {
	tests := []struct {
		name  string
		stack *types.TechStack
		want  []string
	}{
		{
			name: "web",
			stack: &types.TechStack{
				Languages: []types.TechnologyItem{{Name: "TypeScript"}},
			},
			want: []string{"Web Development"},
		},
		{
			name: "data science via framework list",
			stack: &types.TechStack{
				Languages:  []types.TechnologyItem{{Name: "Python"}},
				Frameworks: []types.TechnologyItem{{Name: "React"}},
			},
			want: []string{"Web Development", "Data Science"},
		},
		{
			name:  "fallback",
			stack: &types.TechStack{Languages: []types.TechnologyItem{{Name: "Go"}}},
			want:  []string{"General Software Development"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, industryAlignment(tt.stack))
		})
	}
}

type stubModel struct {
	responses map[string]string
	err       error
	calls     int
}

func (m *stubModel) GenerateText(_ context.Context, prompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	for marker, response := range m.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return "", nil
}

func TestAssistedUsesModelResponses(t *testing.T) {
	model := &stubModel{responses: map[string]string{
		"what this project accomplishes": "A GitHub analysis service that scores repositories.",
		"technical strengths":            "Clean layering\nGood API design\nStrong typing\nExtra line beyond cap",
		"maturity":                       "Developing.",
		"development stage":              "spaceship",
	}}

	out := NewAssisted(model).Generate(context.Background(), healthyInput())

	assert.Equal(t, "A GitHub analysis service that scores repositories.", out.ProjectSummary)
	assert.Equal(t, []string{"Clean layering", "Good API design", "Strong typing"}, out.Strengths)
	assert.Equal(t, "developing", out.ProjectMaturity)
	// invalid stage answer keeps the rule-based value
	assert.Equal(t, "production", out.DevelopmentStage)
	// unanswered sections keep rule-based defaults
	assert.Contains(t, out.CodeStyleAssessment, "High quality codebase")
}

func TestAssistedFallsBackWhenModelDown(t *testing.T) {
	model := &stubModel{err: errors.New("quota exceeded")}

	in := healthyInput()
	out := NewAssisted(model).Generate(context.Background(), in)
	ruleBased := NewRuleBased().Generate(context.Background(), in)

	assert.Equal(t, ruleBased, out)
	assert.Greater(t, model.calls, 0)
}

func TestSelectRepresentativeFiles(t *testing.T) {
	source := strings.Repeat("package main\n", 30)
	files := []types.FileInfo{
		{Path: "package.json", Extension: "json", Content: "{}"},
		{Path: "internal/service/analyzer.go", Extension: "go", Content: source},
		{Path: "api/routes.go", Extension: "go", Content: source},
		{Path: "pkg/util/strings.go", Extension: "go", Content: source},
		{Path: "main.go", Extension: "go", Content: source},
	}

	selected := selectRepresentativeFiles(files)
	require.NotEmpty(t, selected)

	// service file matches the highest-priority pattern group
	assert.Equal(t, "internal/service/analyzer.go", selected[0].Path)
	for _, f := range selected {
		assert.NotEqual(t, "package.json", f.Path)
	}
}

func TestSelectRepresentativeFilesCap(t *testing.T) {
	var files []types.FileInfo
	for i := 0; i < 20; i++ {
		files = append(files, types.FileInfo{
			Path:      "src/handlers/handler" + strings.Repeat("x", i) + ".go",
			Extension: "go",
			Content:   strings.Repeat("a", 500),
		})
	}
	assert.Len(t, selectRepresentativeFiles(files), maxSelectedFiles)
}

func TestParseScores(t *testing.T) {
	scores := parseScores("code_quality: 82\nArchitecture Design: 75.5\nbogus line\nout_of_range: 150\n")

	assert.Equal(t, 82.0, scores["code_quality"])
	assert.Equal(t, 75.5, scores["architecture_design"])
	assert.NotContains(t, scores, "out_of_range")

	assert.Nil(t, parseScores("no scores here"))
}

func TestSplitListStripsBullets(t *testing.T) {
	items := splitList("- first item\n2. second item\n\n* third", 10)
	assert.Equal(t, []string{"first item", "second item", "third"}, items)
}

func TestBuildContextTruncatesSamples(t *testing.T) {
	in := healthyInput()
	in.Files = []types.FileInfo{{
		Path:      "internal/service/big.go",
		Extension: "go",
		Content:   strings.Repeat("x", maxSampleChars+500),
	}}

	ctx := buildContext(in)
	assert.Contains(t, ctx, "octocat/hello")
	assert.Contains(t, ctx, "File 1: internal/service/big.go")
	assert.Contains(t, ctx, "...(truncated)")
}
