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

const (
	// maxAnalyzedFileBytes skips huge files, usually generated
	maxAnalyzedFileBytes = 750_000
	// minifiedLineLength marks long single lines typical of minified code
	minifiedLineLength = 120
)

var codeExtensions = map[string]bool{
	"py": true, "js": true, "ts": true, "jsx": true, "tsx": true,
	"java": true, "cpp": true, "c": true, "cs": true,
	"go": true, "rs": true, "php": true, "rb": true, "swift": true,
	"kt": true, "scala": true, "r": true,
}

var ignoredDirFragments = []string{
	"/node_modules/", "/dist/", "/build/", "/.next/", "/.turbo/", "/.git/",
	"/.venv/", "/venv/", "/site-packages/", "/target/", "/bin/", "/obj/",
	"/.idea/", "/.vscode/", "/.pnpm/", "/.cache/", "/coverage/", "/out/",
}

// fileResult holds a single file's metrics before aggregation
type fileResult struct {
	types.FileMetrics
	fileSize         int
	funcComplexities []float64
	funcLengths      []float64
}

type fileAnalyzer func(f types.FileInfo) fileResult

// CodeAnalyzer computes language-aware size, complexity and
// maintainability metrics
type CodeAnalyzer struct {
	handlers map[string]fileAnalyzer
}

func NewCodeAnalyzer() *CodeAnalyzer {
	return &CodeAnalyzer{
		handlers: map[string]fileAnalyzer{
			"go":  analyzeGoFile,
			"js":  analyzeScriptFile,
			"jsx": analyzeScriptFile,
			"ts":  analyzeScriptFile,
			"tsx": analyzeScriptFile,
		},
	}
}

// Analyze aggregates per-file metrics across the analyzable files
func (a *CodeAnalyzer) Analyze(files []types.FileInfo) *types.CodeMetrics {
	slog.Info("Analyzing code metrics", "files", len(files))

	m := &types.CodeMetrics{}

	var fileSizes []int
	var complexities []float64
	var maintainabilities []float64
	var funcComplexities []float64
	var funcLengths []float64

	for _, f := range files {
		if !isCodeFile(f) {
			continue
		}
		if shouldIgnoreFile(f) {
			slog.Debug("Skipping ignored file", "path", f.Path)
			continue
		}

		handler, ok := a.handlers[strings.ToLower(f.Extension)]
		if !ok {
			handler = analyzeGenericFile
		}
		result := handler(f)

		m.TotalLines += result.TotalLines
		m.LinesOfCode += result.LinesOfCode
		m.CommentLines += result.CommentLines
		m.BlankLines += result.BlankLines
		m.TotalFiles++
		fileSizes = append(fileSizes, result.fileSize)

		if result.Complexity > 0 {
			complexities = append(complexities, result.Complexity)
		}
		if result.MaintainabilityIndex > 0 {
			maintainabilities = append(maintainabilities, result.MaintainabilityIndex)
		}
		funcComplexities = append(funcComplexities, result.funcComplexities...)
		funcLengths = append(funcLengths, result.funcLengths...)
	}

	avgComplexity := mean(complexities)
	m.CyclomaticComplexity = avgComplexity
	m.CognitiveComplexity = avgComplexity * 1.15
	m.MaintainabilityIndex = mean(maintainabilities)

	if avgComplexity > 0 {
		m.TechnicalDebtRatio = math.Min(1.0, avgComplexity/10.0)
	}

	m.AverageFileSize = meanInt(fileSizes)
	for _, size := range fileSizes {
		if size > m.LargestFileSize {
			m.LargestFileSize = size
		}
	}

	m.TotalFunctions = len(funcLengths)
	m.AverageFunctionLength = mean(funcLengths)
	for _, c := range funcComplexities {
		if c > m.MaxFunctionComplexity {
			m.MaxFunctionComplexity = c
		}
	}

	return m
}

func isCodeFile(f types.FileInfo) bool {
	if !codeExtensions[strings.ToLower(f.Extension)] || f.Size <= 0 {
		return false
	}
	pathLower := "/" + strings.ToLower(f.Path)
	for _, dir := range ignoredDirFragments {
		if strings.Contains(pathLower, dir) {
			return false
		}
	}
	return true
}

// shouldIgnoreFile filters binary, huge, or obviously minified content
func shouldIgnoreFile(f types.FileInfo) bool {
	if f.Size > maxAnalyzedFileBytes {
		return true
	}
	if f.Content == "" {
		return true
	}
	if strings.ContainsRune(f.Content, 0) {
		return true
	}

	lines := strings.Split(f.Content, "\n")
	longLines := 0
	for _, ln := range lines {
		if len(ln) > minifiedLineLength {
			longLines++
		}
	}
	total := len(lines)
	if total > 100 && float64(longLines)/float64(total) > 0.6 {
		return true
	}
	return false
}

// analyzeGoFile parses the file for exact function counts and
// branch-based complexity
func analyzeGoFile(f types.FileInfo) fileResult {
	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, f.Name, f.Content, parser.ParseComments)
	if err != nil {
		slog.Warn("Failed to parse Go file", "path", f.Path, "error", err)
		return defaultFileResult(f)
	}

	result := countLines(f, goCommentLine)
	result.Complexity = goComplexity(parsed)
	result.MaintainabilityIndex = maintainabilityIndex(result.LinesOfCode, result.Complexity, result.CommentLines)

	for _, decl := range parsed.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		result.FunctionCount++
		result.funcComplexities = append(result.funcComplexities, goComplexity(fn))

		start := fset.Position(fn.Pos()).Line
		end := fset.Position(fn.End()).Line
		result.funcLengths = append(result.funcLengths, float64(end-start+1))
	}

	return result
}

// goComplexity is a simplified McCabe count over branch nodes
func goComplexity(node ast.Node) float64 {
	complexity := 1.0
	ast.Inspect(node, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause, *ast.CommClause:
			complexity++
		case *ast.BinaryExpr:
			if v.Op == token.LAND || v.Op == token.LOR {
				complexity++
			}
		}
		return true
	})
	return complexity
}

var scriptFuncPatterns = []*regexp.Regexp{
	regexp.MustCompile(`function\s+[a-zA-Z0-9_]+\s*\(`),
	regexp.MustCompile(`=>\s*\{`),
	regexp.MustCompile(`\)\s*=>\s*[^\{]`),
	regexp.MustCompile(`class\s+[A-Za-z0-9_]+`),
}

var scriptComplexityKeywords = []string{
	" if", " else", " while", " for", " switch", " case",
	" try", " catch", " finally", "&&", "||", "?",
}

// analyzeScriptFile is the js/ts heuristic: line-state comment counting,
// keyword complexity, regex function estimate
func analyzeScriptFile(f types.FileInfo) fileResult {
	if f.Content == "" {
		return defaultFileResult(f)
	}

	lines := strings.Split(f.Content, "\n")
	totalLines := len(lines)

	commentLines := 0
	inBlockComment := false
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		if inBlockComment {
			commentLines++
			if strings.Contains(s, "*/") {
				inBlockComment = false
			}
			continue
		}
		if strings.HasPrefix(s, "//") {
			commentLines++
			continue
		}
		if strings.HasPrefix(s, "/*") {
			commentLines++
			if !strings.Contains(s, "*/") {
				inBlockComment = true
			}
		}
	}

	blankLines := countBlank(lines)
	loc := totalLines - blankLines - commentLines
	if loc < 0 {
		loc = 0
	}

	lower := strings.ToLower(f.Content)
	keywordHits := 0
	for _, kw := range scriptComplexityKeywords {
		keywordHits += strings.Count(lower, kw)
	}
	complexity := math.Max(1.0, 1.0+float64(keywordHits)*0.5)

	funcMatches := 0
	for _, p := range scriptFuncPatterns {
		funcMatches += len(p.FindAllStringIndex(f.Content, -1))
	}
	var avgFuncLength float64
	if funcMatches > 0 {
		avgFuncLength = float64(loc) / float64(funcMatches)
	} else {
		avgFuncLength = math.Min(200, float64(loc))
	}

	return fileResult{
		FileMetrics: types.FileMetrics{
			Path:                 f.Path,
			TotalLines:           totalLines,
			LinesOfCode:          loc,
			CommentLines:         commentLines,
			BlankLines:           blankLines,
			Complexity:           complexity,
			MaintainabilityIndex: maintainabilityIndex(loc, complexity, commentLines),
			FunctionCount:        funcMatches,
		},
		fileSize:         len(f.Content),
		funcComplexities: []float64{complexity},
		funcLengths:      []float64{avgFuncLength},
	}
}

var genericCommentPrefixes = []string{"//", "#", "/*", "*", "--", `"""`, "'''"}

var genericComplexityKeywords = []string{
	"if", "else", "while", "for", "switch", "case", "try", "catch", "except",
}

// analyzeGenericFile covers languages without a structural parser
func analyzeGenericFile(f types.FileInfo) fileResult {
	if f.Content == "" {
		return defaultFileResult(f)
	}

	result := countLines(f, genericCommentLine)

	lower := strings.ToLower(f.Content)
	hits := 0
	for _, kw := range genericComplexityKeywords {
		hits += strings.Count(lower, kw)
	}
	result.Complexity = math.Max(1.0, float64(hits))
	result.MaintainabilityIndex = maintainabilityIndex(result.LinesOfCode, result.Complexity, result.CommentLines)
	result.funcComplexities = []float64{result.Complexity}
	result.funcLengths = []float64{float64(result.TotalLines)}

	return result
}

func goCommentLine(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") || strings.HasPrefix(s, "*")
}

func genericCommentLine(s string) bool {
	for _, prefix := range genericCommentPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// countLines splits content into code, comment and blank lines so that
// the three always sum to the total
func countLines(f types.FileInfo, isComment func(string) bool) fileResult {
	lines := strings.Split(f.Content, "\n")
	totalLines := len(lines)
	blankLines := countBlank(lines)

	commentLines := 0
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		if s != "" && isComment(s) {
			commentLines++
		}
	}

	return fileResult{
		FileMetrics: types.FileMetrics{
			Path:         f.Path,
			TotalLines:   totalLines,
			LinesOfCode:  totalLines - blankLines - commentLines,
			CommentLines: commentLines,
			BlankLines:   blankLines,
		},
		fileSize: len(f.Content),
	}
}

func countBlank(lines []string) int {
	blank := 0
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			blank++
		}
	}
	return blank
}

func defaultFileResult(f types.FileInfo) fileResult {
	return fileResult{
		FileMetrics: types.FileMetrics{
			Path:                 f.Path,
			Complexity:           1.0,
			MaintainabilityIndex: 50.0,
		},
	}
}

// maintainabilityIndex is a bounded approximation from LOC, complexity
// and comment ratio
func maintainabilityIndex(loc int, complexity float64, comments int) float64 {
	if loc <= 0 {
		return 50.0
	}
	compFactor := math.Min(10.0, math.Max(1.0, complexity))
	commentRatio := math.Max(0.0, math.Min(1.0, float64(comments)/float64(loc+comments)))
	base := 100.0 - compFactor*6.0 - math.Sqrt(float64(loc))
	return clamp(base+commentRatio*15.0, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
