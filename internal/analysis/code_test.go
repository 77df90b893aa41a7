package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0unveiled/github-analyzer/internal/types"
)

func goFile(path, content string) types.FileInfo {
	return types.FileInfo{
		Path: path, Name: pathBase(path), Extension: "go",
		Size: len(content), Content: content,
	}
}

func pathBase(p string) string {
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

const sampleGoSource = `package main

import "fmt"

// greet prints a greeting for each name
func greet(names []string) {
	for _, n := range names {
		if n != "" {
			fmt.Println("hello", n)
		}
	}
}

func main() {
	greet([]string{"a", "b"})
}
`

func TestAnalyzeGoFileStructural(t *testing.T) {
	result := analyzeGoFile(goFile("main.go", sampleGoSource))

	assert.Equal(t, 2, result.FunctionCount)
	// base 1 + range + if
	assert.Equal(t, 3.0, result.Complexity)
	assert.Equal(t, result.TotalLines,
		result.LinesOfCode+result.CommentLines+result.BlankLines)
	assert.Greater(t, result.MaintainabilityIndex, 0.0)
	assert.Len(t, result.funcComplexities, 2)
}

func TestAnalyzeGoFileParseFailure(t *testing.T) {
	result := analyzeGoFile(goFile("broken.go", "package \nfunc {{{"))

	assert.Equal(t, 1.0, result.Complexity)
	assert.Equal(t, 50.0, result.MaintainabilityIndex)
	assert.Empty(t, result.funcComplexities)
}

func TestAnalyzeScriptFile(t *testing.T) {
	content := `// entry point
/* block
   comment */
function handle(x) {
	if (x > 0 && x < 10) {
		return x;
	}
	return 0;
}

const double = (x) => x * 2;
`
	f := types.FileInfo{Path: "app.js", Name: "app.js", Extension: "js", Size: len(content), Content: content}
	result := analyzeScriptFile(f)

	assert.Equal(t, 3, result.CommentLines)
	assert.Equal(t, result.TotalLines,
		result.LinesOfCode+result.CommentLines+result.BlankLines)
	assert.GreaterOrEqual(t, result.FunctionCount, 2)
	assert.Greater(t, result.Complexity, 1.0)
}

func TestAnalyzeGenericFile(t *testing.T) {
	content := `# setup script
if [ -f config ]; then
  echo ok
fi
`
	f := types.FileInfo{Path: "setup.sh", Name: "setup.sh", Extension: "sh", Size: len(content), Content: content}
	result := analyzeGenericFile(f)

	assert.Equal(t, 1, result.CommentLines)
	assert.GreaterOrEqual(t, result.Complexity, 1.0)
	assert.Equal(t, result.TotalLines,
		result.LinesOfCode+result.CommentLines+result.BlankLines)
}

func TestShouldIgnoreMinified(t *testing.T) {
	long := strings.Repeat("x", 200)
	var b strings.Builder
	for i := 0; i < 150; i++ {
		b.WriteString(long + "\n")
	}
	f := types.FileInfo{Path: "bundle.js", Name: "bundle.js", Extension: "js", Size: b.Len(), Content: b.String()}
	assert.True(t, shouldIgnoreFile(f))
}

func TestShouldIgnoreBinaryAndHuge(t *testing.T) {
	binary := types.FileInfo{Path: "a.go", Name: "a.go", Extension: "go", Size: 10, Content: "abc\x00def"}
	assert.True(t, shouldIgnoreFile(binary))

	huge := types.FileInfo{Path: "b.go", Name: "b.go", Extension: "go", Size: maxAnalyzedFileBytes + 1, Content: "x"}
	assert.True(t, shouldIgnoreFile(huge))
}

func TestIsCodeFileFiltersVendoredPaths(t *testing.T) {
	vendored := types.FileInfo{Path: "vendor/lib/a.go", Name: "a.go", Extension: "go", Size: 10}
	assert.False(t, isCodeFile(vendored))

	md := types.FileInfo{Path: "README.md", Name: "README.md", Extension: "md", Size: 10}
	assert.False(t, isCodeFile(md))

	normal := types.FileInfo{Path: "cmd/main.go", Name: "main.go", Extension: "go", Size: 10}
	assert.True(t, isCodeFile(normal))
}

func TestAnalyzeAggregates(t *testing.T) {
	files := []types.FileInfo{
		goFile("main.go", sampleGoSource),
		goFile("util.go", "package main\n\nfunc id(x int) int { return x }\n"),
	}

	m := NewCodeAnalyzer().Analyze(files)

	assert.Equal(t, 2, m.TotalFiles)
	assert.Equal(t, 3, m.TotalFunctions)
	assert.Greater(t, m.CyclomaticComplexity, 0.0)
	assert.InDelta(t, m.CyclomaticComplexity*1.15, m.CognitiveComplexity, 0.0001)
	assert.Equal(t, m.TotalLines, m.LinesOfCode+m.CommentLines+m.BlankLines)
	assert.LessOrEqual(t, m.TechnicalDebtRatio, 1.0)
	assert.Greater(t, m.MaintainabilityIndex, 0.0)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	m := NewCodeAnalyzer().Analyze(nil)

	assert.Equal(t, 0, m.TotalFiles)
	assert.Equal(t, 0.0, m.CyclomaticComplexity)
	assert.Equal(t, 0.0, m.TechnicalDebtRatio)
}

func TestMaintainabilityIndexBounds(t *testing.T) {
	require.Equal(t, 50.0, maintainabilityIndex(0, 5, 0))

	high := maintainabilityIndex(20, 1, 10)
	low := maintainabilityIndex(5000, 10, 0)
	assert.Greater(t, high, low)
	assert.GreaterOrEqual(t, low, 0.0)
	assert.LessOrEqual(t, high, 100.0)
}
