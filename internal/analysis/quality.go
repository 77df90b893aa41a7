package analysis

import (
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/0unveiled/github-analyzer/internal/types"
)

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
var camelCasePattern = regexp.MustCompile(`^[a-z]+[A-Z][A-Za-z0-9]*`)

var errorHandlingKeywords = []string{"try", "catch", "except", "error", "throw"}

// QualityAnalyzer assesses documentation, testing, style and architecture
type QualityAnalyzer struct{}

func NewQualityAnalyzer() *QualityAnalyzer {
	return &QualityAnalyzer{}
}

// Analyze computes quality metrics from file contents and the
// repository structure
func (a *QualityAnalyzer) Analyze(files []types.FileInfo, structure *types.RepositoryStructure) *types.QualityMetrics {
	slog.Info("Analyzing quality metrics")

	q := &types.QualityMetrics{
		DocstringCoverage:  docCommentCoverage(files),
		CommentDensity:     commentDensity(files),
		ReadmeQualityScore: readmeQuality(structure),
		DependencyCount:    len(structure.PackageManagers),
	}

	testFiles, ratio := testMetrics(files)
	q.TestFilesCount = testFiles
	q.TestToCodeRatio = ratio

	violations, naming, duplication, hasErrHandling := styleMetrics(files)
	q.NamingConsistency = naming
	q.CodeDuplication = duplication
	q.HasErrorHandling = hasErrHandling
	q.FollowsConventions = violations < 10

	q.ArchitectureScore = architectureScore(structure, files)

	return q
}

// docCommentCoverage measures the share of Go declarations carrying a
// doc comment
func docCommentCoverage(files []types.FileInfo) float64 {
	totalItems := 0
	documented := 0

	for _, f := range files {
		if strings.ToLower(f.Extension) != "go" || f.Content == "" {
			continue
		}

		fset := token.NewFileSet()
		parsed, err := parser.ParseFile(fset, f.Name, f.Content, parser.ParseComments)
		if err != nil {
			continue
		}

		totalItems++
		if parsed.Doc != nil {
			documented++
		}

		for _, decl := range parsed.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				totalItems++
				if d.Doc != nil {
					documented++
				}
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					totalItems++
					if d.Doc != nil || ts.Doc != nil {
						documented++
					}
				}
			}
		}
	}

	if totalItems == 0 {
		return 0
	}
	return float64(documented) / float64(totalItems) * 100.0
}

func commentDensity(files []types.FileInfo) float64 {
	totalLines := 0
	totalComments := 0

	for _, f := range files {
		if !isCodeFile(f) || f.Content == "" {
			continue
		}
		lines := strings.Split(f.Content, "\n")
		totalLines += len(lines)

		for _, ln := range lines {
			s := strings.TrimSpace(ln)
			if strings.HasPrefix(s, "//") || strings.HasPrefix(s, "#") ||
				strings.HasPrefix(s, "/*") || strings.HasPrefix(s, "*") {
				totalComments++
			}
		}
	}

	if totalLines == 0 {
		return 0
	}
	return float64(totalComments) / float64(totalLines)
}

func readmeQuality(structure *types.RepositoryStructure) float64 {
	if !structure.HasReadme {
		return 0
	}
	score := 50.0
	if structure.HasDocs {
		score += 20.0
	}
	if structure.HasLicense {
		score += 15.0
	}
	if structure.HasCIConfig {
		score += 15.0
	}
	return math.Min(100.0, score)
}

func testMetrics(files []types.FileInfo) (int, float64) {
	testCount := 0
	codeCount := 0

	for _, f := range files {
		nameLower := strings.ToLower(f.Name)
		pathLower := strings.ToLower(f.Path)

		isTest := strings.Contains(nameLower, "test") ||
			strings.Contains(nameLower, "spec") ||
			strings.Contains(pathLower, "/tests/") ||
			strings.Contains(pathLower, "/__tests__/") ||
			strings.HasPrefix(nameLower, "test_")

		if isTest && isCodeFile(f) {
			testCount++
		} else if isCodeFile(f) && !strings.Contains(nameLower, "test") {
			codeCount++
		}
	}

	if codeCount == 0 {
		return testCount, 0
	}
	return testCount, float64(testCount) / float64(codeCount)
}

func styleMetrics(files []types.FileInfo) (violations int, naming, duplication float64, hasErrHandling bool) {
	snakeCase := 0
	camelCase := 0
	totalIdentifiers := 0
	normalized := make(map[string]int)

	for _, f := range files {
		if !isCodeFile(f) || f.Content == "" {
			continue
		}

		lower := strings.ToLower(f.Content)
		for _, kw := range errorHandlingKeywords {
			if strings.Contains(lower, kw) {
				hasErrHandling = true
				break
			}
		}

		for _, ln := range strings.Split(f.Content, "\n") {
			if len(ln) > 120 {
				violations++
			}
			s := strings.TrimSpace(ln)
			if len(s) >= 20 {
				normalized[s]++
			}
		}

		for _, tok := range identifierPattern.FindAllString(f.Content, -1) {
			if strings.Contains(tok, "_") && strings.ToLower(tok) == tok && !strings.HasPrefix(tok, "_") {
				snakeCase++
				totalIdentifiers++
			} else if camelCasePattern.MatchString(tok) {
				camelCase++
				totalIdentifiers++
			}
		}
	}

	// Consistency rewards a dominant style, not a particular one
	if totalIdentifiers > 20 {
		dominant := math.Max(float64(snakeCase), float64(camelCase))
		ratio := dominant / math.Max(1, float64(snakeCase+camelCase))
		naming = clamp(math.Round((50+(ratio-0.5)*100)*10)/10, 0, 100)
	}

	repeated := 0
	considered := 0
	for _, count := range normalized {
		considered += count
		if count > 1 {
			repeated += count
		}
	}
	if considered > 0 {
		duplication = math.Round(float64(repeated)/float64(considered)*1000) / 10
	}

	return violations, naming, duplication, hasErrHandling
}

func architectureScore(structure *types.RepositoryStructure, files []types.FileInfo) float64 {
	score := 50.0

	if structure.HasTests {
		score += 15.0
	}
	if structure.HasDocs {
		score += 10.0
	}
	if structure.HasCIConfig {
		score += 10.0
	}
	if len(structure.PackageManagers) > 0 {
		score += 10.0
	}
	if len(structure.FileTypes) > 10 {
		score -= 5.0
	}

	hasAny := func(fragments ...string) bool {
		for _, f := range files {
			pathLower := strings.ToLower(f.Path)
			for _, fragment := range fragments {
				if strings.Contains(pathLower, fragment) {
					return true
				}
			}
		}
		return false
	}

	if hasAny("/src/") {
		score += 5.0
	}
	if hasAny("/api/", "/routes/") {
		score += 5.0
	}
	if hasAny("/services/", "/internal/") {
		score += 5.0
	}
	if hasAny("/migrations/", "/drizzle/") {
		score += 3.0
	}

	return clamp(score, 0, 100)
}
