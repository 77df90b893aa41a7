package analysis

import (
	"encoding/json"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/0unveiled/github-analyzer/internal/types"
)

// TechStackAnalyzer detects languages, frameworks, libraries, databases
// and tooling from manifests, config files and path signals
type TechStackAnalyzer struct{}

func NewTechStackAnalyzer() *TechStackAnalyzer {
	return &TechStackAnalyzer{}
}

// detectionContext caches parsed manifests and ecosystem flags so the
// per-category detectors stay cheap
type detectionContext struct {
	files []types.FileInfo

	npmDeps        map[string]string
	hasTSConfig    bool
	pyRequirements map[string]string
	pyProjectRaw   string
	goModules      map[string]string
	cargoDeps      map[string]string
	composeImages  []string

	hasDocker        bool
	hasCompose       bool
	hasGithubActions bool
	hasTerraform     bool
	hasServerless    bool
	hasPrisma        bool
	hasDrizzle       bool
	hasK8s           bool
}

// Analyze builds the full tech stack picture for the repository
func (a *TechStackAnalyzer) Analyze(files []types.FileInfo, structure *types.RepositoryStructure, languages map[string]int) *types.TechStack {
	slog.Info("Analyzing tech stack", "files", len(files))

	ctx := buildDetectionContext(files)

	stack := &types.TechStack{
		Languages:         detectLanguages(languages),
		Frameworks:        ctx.detectFrameworks(),
		Libraries:         ctx.detectLibraries(),
		Databases:         ctx.detectDatabases(),
		Tools:             ctx.detectTools(),
		TestingFrameworks: ctx.detectTesting(),
		BuildTools:        ctx.detectBuildTools(),
		DeploymentTools:   ctx.detectDeployment(),
		Platforms:         ctx.detectPlatforms(),
	}

	stack.PrimaryLanguage = primaryLanguage(stack.Languages, languages, ctx)
	stack.TotalTechnologies = len(stack.Languages) + len(stack.Frameworks) +
		len(stack.Libraries) + len(stack.Databases) + len(stack.Tools) +
		len(stack.TestingFrameworks) + len(stack.BuildTools) +
		len(stack.DeploymentTools) + len(stack.Platforms)
	stack.ComplexityScore = complexityScore(stack)
	stack.ModernnessScore = modernnessScore(stack)

	return stack
}

func detectLanguages(languages map[string]int) []types.TechnologyItem {
	var items []types.TechnologyItem
	for lang, bytes := range languages {
		if lang == "" {
			continue
		}
		items = append(items, types.TechnologyItem{
			Name:       lang,
			Category:   types.TechLanguage,
			Confidence: math.Min(1.0, math.Max(0.2, float64(bytes)/50_000)),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return languages[items[i].Name] > languages[items[j].Name]
	})
	return items
}

func buildDetectionContext(files []types.FileInfo) *detectionContext {
	ctx := &detectionContext{
		files:          files,
		npmDeps:        map[string]string{},
		pyRequirements: map[string]string{},
		goModules:      map[string]string{},
		cargoDeps:      map[string]string{},
	}

	for _, f := range files {
		nameLower := strings.ToLower(f.Name)
		pathLower := strings.ToLower(f.Path)

		switch {
		case f.Name == "package.json":
			parsePackageJSON(f.Content, ctx.npmDeps)
		case f.Name == "tsconfig.json":
			ctx.hasTSConfig = true
		case f.Name == "pyproject.toml":
			ctx.pyProjectRaw = f.Content
			parsePyProject(f.Content, ctx.pyRequirements)
		case strings.HasPrefix(nameLower, "requirements") && strings.HasSuffix(nameLower, ".txt"):
			parseRequirements(f.Content, ctx.pyRequirements)
		case f.Name == "go.mod":
			parseGoMod(f.Content, ctx.goModules)
		case f.Name == "Cargo.toml":
			parseCargoToml(f.Content, ctx.cargoDeps)
		case nameLower == "dockerfile":
			ctx.hasDocker = true
		case strings.HasPrefix(nameLower, "docker-compose"):
			ctx.hasCompose = true
			ctx.composeImages = append(ctx.composeImages, parseComposeImages(f.Content)...)
		case nameLower == "serverless.yml" || nameLower == "serverless.yaml":
			ctx.hasServerless = true
		}

		if strings.HasSuffix(nameLower, ".tf") {
			ctx.hasTerraform = true
		}
		if strings.Contains(pathLower, ".github/workflows/") {
			ctx.hasGithubActions = true
		}
		if strings.Contains(nameLower, "schema.prisma") || strings.Contains(pathLower, "/prisma/") {
			ctx.hasPrisma = true
		}
		if strings.Contains(pathLower, "drizzle") {
			ctx.hasDrizzle = true
		}
		if strings.Contains(pathLower, "k8s/") || strings.Contains(pathLower, "kubernetes") {
			ctx.hasK8s = true
		}
	}

	return ctx
}

func parsePackageJSON(content string, out map[string]string) {
	if content == "" {
		return
	}
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(content), &manifest); err != nil {
		slog.Debug("Failed to parse package.json", "error", err)
		return
	}
	for name, version := range manifest.Dependencies {
		out[name] = version
	}
	for name, version := range manifest.DevDependencies {
		out[name] = version
	}
}

var requirementPattern = regexp.MustCompile(`^([A-Za-z0-9_\-\.]+)(\[.*\])?\s*([<>=!~]=?\s*[^#\s]+)?`)

func parseRequirements(content string, out map[string]string) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := requirementPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out[strings.ToLower(m[1])] = strings.TrimSpace(m[3])
	}
}

// parsePyProject reads poetry and PEP 621 dependency tables
func parsePyProject(content string, out map[string]string) {
	tree, err := toml.Load(content)
	if err != nil {
		slog.Debug("Failed to parse pyproject.toml", "error", err)
		return
	}

	if deps, ok := tree.GetPath([]string{"tool", "poetry", "dependencies"}).(*toml.Tree); ok {
		for _, key := range deps.Keys() {
			if key == "python" {
				continue
			}
			version := ""
			if v, ok := deps.Get(key).(string); ok {
				version = v
			}
			out[strings.ToLower(key)] = version
		}
	}

	if deps, ok := tree.GetPath([]string{"project", "dependencies"}).([]interface{}); ok {
		for _, dep := range deps {
			s, ok := dep.(string)
			if !ok {
				continue
			}
			if m := requirementPattern.FindStringSubmatch(s); m != nil {
				out[strings.ToLower(m[1])] = strings.TrimSpace(m[3])
			}
		}
	}
}

func parseCargoToml(content string, out map[string]string) {
	tree, err := toml.Load(content)
	if err != nil {
		slog.Debug("Failed to parse Cargo.toml", "error", err)
		return
	}
	deps, ok := tree.Get("dependencies").(*toml.Tree)
	if !ok {
		return
	}
	for _, key := range deps.Keys() {
		version := ""
		if v, ok := deps.Get(key).(string); ok {
			version = v
		}
		out[strings.ToLower(key)] = version
	}
}

// parseGoMod line-scans require directives
func parseGoMod(content string, out map[string]string) {
	inBlock := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "require ("):
			inBlock = true
			continue
		case inBlock && line == ")":
			inBlock = false
			continue
		}

		var spec string
		if inBlock {
			spec = line
		} else if strings.HasPrefix(line, "require ") {
			spec = strings.TrimPrefix(line, "require ")
		} else {
			continue
		}

		fields := strings.Fields(spec)
		if len(fields) >= 2 && !strings.HasPrefix(fields[0], "//") {
			out[fields[0]] = fields[1]
		}
	}
}

// parseComposeImages pulls service image names out of a compose file
func parseComposeImages(content string) []string {
	var compose struct {
		Services map[string]struct {
			Image string `yaml:"image"`
		} `yaml:"services"`
	}
	if err := yaml.Unmarshal([]byte(content), &compose); err != nil {
		slog.Debug("Failed to parse compose file", "error", err)
		return nil
	}
	var images []string
	for _, svc := range compose.Services {
		if svc.Image != "" {
			images = append(images, strings.ToLower(svc.Image))
		}
	}
	return images
}

type itemSet map[string]*types.TechnologyItem

// add merges corroborating signals: confidence bumps, versions fill in
func (s itemSet) add(name string, category types.TechCategory, confidence float64, version string) {
	key := strings.ToLower(name)
	if existing, ok := s[key]; ok {
		existing.Confidence = math.Min(1.0, math.Max(existing.Confidence, confidence)+0.1)
		if version != "" && existing.Version == "" {
			existing.Version = version
		}
		return
	}
	s[key] = &types.TechnologyItem{
		Name:       name,
		Category:   category,
		Version:    version,
		Confidence: math.Min(1.0, confidence),
	}
}

func (s itemSet) list() []types.TechnologyItem {
	items := make([]types.TechnologyItem, 0, len(s))
	for _, item := range s {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

type depSignal struct {
	label   string
	needles []string
	conf    float64
}

// lookup checks one needle list against every dependency ecosystem
func (ctx *detectionContext) lookup(needles []string) (bool, string) {
	for _, n := range needles {
		if v, ok := ctx.npmDeps[n]; ok {
			return true, v
		}
		if v, ok := ctx.pyRequirements[strings.ToLower(n)]; ok {
			return true, v
		}
		if v, ok := ctx.goModules[n]; ok {
			return true, v
		}
		if v, ok := ctx.cargoDeps[strings.ToLower(n)]; ok {
			return true, v
		}
	}
	return false, ""
}

func (ctx *detectionContext) detectFrameworks() []types.TechnologyItem {
	items := itemSet{}

	signals := []depSignal{
		{"Next.js", []string{"next"}, 0.9},
		{"React", []string{"react"}, 0.9},
		{"Vue", []string{"vue"}, 0.9},
		{"Nuxt", []string{"nuxt"}, 0.9},
		{"Svelte", []string{"svelte"}, 0.9},
		{"Angular", []string{"@angular/core"}, 0.9},
		{"Express", []string{"express"}, 0.9},
		{"NestJS", []string{"@nestjs/core"}, 0.9},
		{"Fastify", []string{"fastify"}, 0.9},
		{"Koa", []string{"koa"}, 0.9},
		{"Django", []string{"django"}, 0.8},
		{"Flask", []string{"flask"}, 0.8},
		{"FastAPI", []string{"fastapi"}, 0.8},
		{"Rails", []string{"rails"}, 0.8},
		{"Gin", []string{"github.com/gin-gonic/gin"}, 0.9},
		{"Echo", []string{"github.com/labstack/echo/v4", "github.com/labstack/echo"}, 0.9},
		{"Fiber", []string{"github.com/gofiber/fiber/v2", "github.com/gofiber/fiber"}, 0.9},
		{"Chi", []string{"github.com/go-chi/chi/v5", "github.com/go-chi/chi"}, 0.8},
		{"Actix", []string{"actix-web"}, 0.9},
		{"Axum", []string{"axum"}, 0.9},
		{"Rocket", []string{"rocket"}, 0.8},
	}

	for _, sig := range signals {
		if found, version := ctx.lookup(sig.needles); found {
			items.add(sig.label, types.TechFramework, sig.conf, version)
		}
	}

	for _, f := range ctx.files {
		if strings.Contains(f.Name, "next.config") {
			items.add("Next.js", types.TechFramework, 0.9, ctx.npmDeps["next"])
		}
	}

	return items.list()
}

func (ctx *detectionContext) detectLibraries() []types.TechnologyItem {
	items := itemSet{}

	jsLibs := []depSignal{
		{"TypeScript", []string{"typescript"}, 0.8},
		{"Axios", []string{"axios"}, 0.8},
		{"Lodash", []string{"lodash"}, 0.8},
		{"Redux Toolkit", []string{"@reduxjs/toolkit"}, 0.8},
		{"React Query", []string{"@tanstack/react-query"}, 0.8},
		{"Zustand", []string{"zustand"}, 0.8},
		{"Tailwind CSS", []string{"tailwindcss"}, 0.8},
		{"Prisma", []string{"prisma"}, 0.8},
		{"Drizzle ORM", []string{"drizzle-orm"}, 0.8},
		{"TypeORM", []string{"typeorm"}, 0.8},
		{"Sequelize", []string{"sequelize"}, 0.8},
		{"Mongoose", []string{"mongoose"}, 0.8},
		{"RxJS", []string{"rxjs"}, 0.8},
	}
	pyLibs := []depSignal{
		{"Requests", []string{"requests"}, 0.75},
		{"NumPy", []string{"numpy"}, 0.75},
		{"Pandas", []string{"pandas"}, 0.75},
		{"SQLAlchemy", []string{"sqlalchemy"}, 0.75},
		{"Pydantic", []string{"pydantic"}, 0.75},
	}
	goLibs := []depSignal{
		{"gRPC", []string{"google.golang.org/grpc"}, 0.8},
		{"Cobra", []string{"github.com/spf13/cobra"}, 0.8},
		{"Viper", []string{"github.com/spf13/viper"}, 0.8},
		{"zap", []string{"go.uber.org/zap"}, 0.75},
	}

	for _, group := range [][]depSignal{jsLibs, pyLibs, goLibs} {
		for _, sig := range group {
			if found, version := ctx.lookup(sig.needles); found {
				items.add(sig.label, types.TechLibrary, sig.conf, version)
			}
		}
	}

	for _, f := range ctx.files {
		if f.Name == "tailwind.config.js" || f.Name == "tailwind.config.ts" {
			items.add("Tailwind CSS", types.TechLibrary, 0.8, ctx.npmDeps["tailwindcss"])
		}
	}

	return items.list()
}

func (ctx *detectionContext) detectDatabases() []types.TechnologyItem {
	items := itemSet{}

	signals := []depSignal{
		{"PostgreSQL", []string{"pg", "psycopg2", "psycopg2-binary", "asyncpg", "postgres",
			"github.com/lib/pq", "github.com/jackc/pgx/v5", "github.com/jackc/pgx"}, 0.85},
		{"MySQL", []string{"mysql", "mysql2", "aiomysql", "github.com/go-sql-driver/mysql"}, 0.75},
		{"SQLite", []string{"sqlite3", "better-sqlite3", "github.com/mattn/go-sqlite3"}, 0.6},
		{"MongoDB", []string{"mongodb", "mongoose", "pymongo", "go.mongodb.org/mongo-driver"}, 0.8},
		{"Redis", []string{"redis", "github.com/redis/go-redis/v9", "github.com/go-redis/redis/v8"}, 0.7},
		{"Elasticsearch", []string{"@elastic/elasticsearch", "elasticsearch"}, 0.6},
	}

	for _, sig := range signals {
		if found, version := ctx.lookup(sig.needles); found {
			items.add(sig.label, types.TechDatabase, sig.conf, version)
		}
	}

	if ctx.hasPrisma {
		items.add("PostgreSQL", types.TechDatabase, 0.6, "")
	}
	if ctx.hasDrizzle {
		items.add("PostgreSQL", types.TechDatabase, 0.55, "")
	}

	for _, image := range ctx.composeImages {
		switch {
		case strings.Contains(image, "postgres"):
			items.add("PostgreSQL", types.TechDatabase, 0.8, "")
		case strings.Contains(image, "mysql") || strings.Contains(image, "mariadb"):
			items.add("MySQL", types.TechDatabase, 0.8, "")
		case strings.Contains(image, "redis"):
			items.add("Redis", types.TechDatabase, 0.8, "")
		case strings.Contains(image, "mongo"):
			items.add("MongoDB", types.TechDatabase, 0.8, "")
		case strings.Contains(image, "elasticsearch"):
			items.add("Elasticsearch", types.TechDatabase, 0.8, "")
		}
	}

	for _, f := range ctx.files {
		nameLower := strings.ToLower(f.Name)
		if strings.HasSuffix(nameLower, ".sql") || strings.HasSuffix(nameLower, ".psql") {
			items.add("PostgreSQL", types.TechDatabase, 0.4, "")
		}
		if strings.Contains(nameLower, ".sqlite") || strings.HasSuffix(nameLower, ".db") {
			items.add("SQLite", types.TechDatabase, 0.6, "")
		}
	}

	return items.list()
}

var pyToolPattern = regexp.MustCompile(`\b(black|ruff|mypy)\b`)

func (ctx *detectionContext) detectTools() []types.TechnologyItem {
	items := itemSet{}

	npmTools := []depSignal{
		{"ESLint", []string{"eslint"}, 0.9},
		{"Prettier", []string{"prettier"}, 0.9},
		{"Husky", []string{"husky"}, 0.7},
		{"lint-staged", []string{"lint-staged"}, 0.7},
		{"Commitlint", []string{"@commitlint/cli"}, 0.6},
		{"Turborepo", []string{"turbo"}, 0.7},
	}
	for _, sig := range npmTools {
		if found, version := ctx.lookup(sig.needles); found {
			items.add(sig.label, types.TechTool, sig.conf, version)
		}
	}

	if ctx.pyProjectRaw != "" {
		for _, m := range pyToolPattern.FindAllString(ctx.pyProjectRaw, -1) {
			switch m {
			case "black":
				items.add("Black", types.TechTool, 0.7, "")
			case "ruff":
				items.add("Ruff", types.TechTool, 0.7, "")
			case "mypy":
				items.add("mypy", types.TechTool, 0.6, "")
			}
		}
		if strings.Contains(ctx.pyProjectRaw, "poetry") {
			items.add("Poetry", types.TechTool, 0.6, "")
		}
	}

	for _, f := range ctx.files {
		if f.Name == ".golangci.yml" || f.Name == ".golangci.yaml" {
			items.add("golangci-lint", types.TechTool, 0.8, "")
		}
	}

	if ctx.hasDocker || ctx.hasCompose {
		items.add("Docker", types.TechTool, 0.9, "")
	}
	if ctx.hasGithubActions {
		items.add("GitHub Actions", types.TechTool, 0.8, "")
	}

	return items.list()
}

func (ctx *detectionContext) detectTesting() []types.TechnologyItem {
	items := itemSet{}

	signals := []depSignal{
		{"Jest", []string{"jest"}, 0.85},
		{"Vitest", []string{"vitest"}, 0.85},
		{"Testing Library", []string{"@testing-library/react"}, 0.7},
		{"Cypress", []string{"cypress"}, 0.8},
		{"Playwright", []string{"@playwright/test", "playwright"}, 0.85},
		{"Mocha", []string{"mocha"}, 0.6},
		{"Chai", []string{"chai"}, 0.5},
		{"Testify", []string{"github.com/stretchr/testify"}, 0.85},
	}
	for _, sig := range signals {
		if found, version := ctx.lookup(sig.needles); found {
			items.add(sig.label, types.TechTesting, sig.conf, version)
		}
	}

	if _, ok := ctx.pyRequirements["pytest"]; ok {
		items.add("Pytest", types.TechTesting, 0.85, ctx.pyRequirements["pytest"])
	}
	for _, f := range ctx.files {
		if f.Name == "pytest.ini" {
			items.add("Pytest", types.TechTesting, 0.85, "")
		}
		if strings.HasSuffix(f.Name, "_test.go") {
			items.add("go test", types.TechTesting, 0.8, "")
		}
	}

	return items.list()
}

func (ctx *detectionContext) detectBuildTools() []types.TechnologyItem {
	items := itemSet{}

	signals := []depSignal{
		{"Vite", []string{"vite"}, 0.9},
		{"Webpack", []string{"webpack"}, 0.7},
		{"Rollup", []string{"rollup"}, 0.6},
		{"Parcel", []string{"parcel"}, 0.5},
		{"SWC", []string{"@swc/core"}, 0.6},
		{"Babel", []string{"@babel/core", "babel"}, 0.6},
		{"ts-node", []string{"ts-node"}, 0.6},
		{"TSC", []string{"typescript"}, 0.7},
	}
	for _, sig := range signals {
		if found, version := ctx.lookup(sig.needles); found {
			items.add(sig.label, types.TechBuild, sig.conf, version)
		}
	}

	for _, f := range ctx.files {
		if f.Name == "Makefile" {
			items.add("Make", types.TechBuild, 0.5, "")
		}
	}

	return items.list()
}

func (ctx *detectionContext) detectDeployment() []types.TechnologyItem {
	items := itemSet{}

	if ctx.hasDocker {
		items.add("Docker", types.TechDeployment, 0.9, "")
	}
	if ctx.hasCompose {
		items.add("Docker Compose", types.TechDeployment, 0.8, "")
	}
	if ctx.hasK8s {
		items.add("Kubernetes", types.TechDeployment, 0.7, "")
	}
	if _, serverlessDep := ctx.npmDeps["serverless"]; ctx.hasServerless || serverlessDep {
		items.add("Serverless", types.TechDeployment, 0.6, "")
	}
	if _, ok := ctx.npmDeps["pm2"]; ok {
		items.add("PM2", types.TechDeployment, 0.5, "")
	}
	if ctx.hasGithubActions {
		items.add("GitHub Actions", types.TechDeployment, 0.7, "")
	}

	for _, f := range ctx.files {
		contentLower := strings.ToLower(f.Content)
		nameLower := strings.ToLower(f.Name)

		if strings.Contains(contentLower, "vercel") || strings.Contains(nameLower, "vercel") {
			items.add("Vercel", types.TechDeployment, 0.7, "")
		}
		if strings.Contains(contentLower, "netlify") || strings.Contains(nameLower, "netlify") {
			items.add("Netlify", types.TechDeployment, 0.6, "")
		}

		// Cloud providers from IaC and SDK references
		if strings.HasSuffix(nameLower, ".tf") || strings.Contains(contentLower, "terraform") {
			if strings.Contains(contentLower, `provider "aws"`) {
				items.add("AWS", types.TechDeployment, 0.8, "")
			}
			if strings.Contains(contentLower, `provider "google"`) || strings.Contains(contentLower, "google_cloud") {
				items.add("GCP", types.TechDeployment, 0.7, "")
			}
			if strings.Contains(contentLower, `provider "azurerm"`) {
				items.add("Azure", types.TechDeployment, 0.7, "")
			}
		}
		if strings.Contains(contentLower, "@aws-sdk") || strings.Contains(contentLower, "boto3") {
			items.add("AWS", types.TechDeployment, 0.6, "")
		}
		if strings.Contains(contentLower, "@google-cloud") || strings.Contains(contentLower, "cloud.google.com/go") {
			items.add("GCP", types.TechDeployment, 0.6, "")
		}
	}

	return items.list()
}

func (ctx *detectionContext) detectPlatforms() []types.TechnologyItem {
	items := itemSet{}

	if _, hasTS := ctx.npmDeps["typescript"]; ctx.hasTSConfig || hasTS {
		items.add("TypeScript", types.TechPlatform, 0.9, ctx.npmDeps["typescript"])
	}
	if len(ctx.npmDeps) > 0 {
		items.add("Node.js", types.TechPlatform, 0.8, "")
	}
	if len(ctx.pyRequirements) > 0 {
		items.add("Python", types.TechPlatform, 0.8, "")
	}
	if len(ctx.goModules) > 0 {
		items.add("Go", types.TechPlatform, 0.9, "")
	}
	if len(ctx.cargoDeps) > 0 {
		items.add("Rust", types.TechPlatform, 0.9, "")
	}

	return items.list()
}

// primaryLanguage picks the largest byte count, falling back to
// manifest hints when the language API gave nothing
func primaryLanguage(langs []types.TechnologyItem, byteCounts map[string]int, ctx *detectionContext) string {
	if len(langs) > 0 {
		best := langs[0].Name
		bestCount := byteCounts[best]
		for _, l := range langs[1:] {
			if byteCounts[l.Name] > bestCount {
				best = l.Name
				bestCount = byteCounts[l.Name]
			}
		}
		return best
	}

	switch {
	case len(ctx.npmDeps) > 0 && ctx.hasTSConfig:
		return "TypeScript"
	case len(ctx.npmDeps) > 0:
		return "JavaScript"
	case len(ctx.pyRequirements) > 0:
		return "Python"
	case len(ctx.goModules) > 0:
		return "Go"
	case len(ctx.cargoDeps) > 0:
		return "Rust"
	}
	return ""
}

// complexityScore weights frameworks and databases heaviest
func complexityScore(stack *types.TechStack) float64 {
	total := len(stack.Languages) + len(stack.Frameworks) + len(stack.Libraries) +
		len(stack.Databases) + len(stack.Tools)
	if total == 0 {
		return 0
	}

	complexity := len(stack.Frameworks)*12 +
		len(stack.Databases)*10 +
		len(stack.Libraries)*5 +
		len(stack.Tools)*4 +
		len(stack.Languages)*6
	if len(stack.Languages) > 1 {
		complexity += 10
	}
	return math.Min(100.0, float64(complexity))
}

var modernTechnologies = map[string]bool{
	"typescript": true, "rust": true, "go": true,
	"react": true, "next.js": true, "nextjs": true, "vue": true,
	"nuxt": true, "svelte": true,
	"fastapi": true, "nestjs": true, "express": true, "gin": true,
	"axum":   true,
	"prisma": true, "drizzle orm": true,
	"vite": true, "eslint": true, "prettier": true, "vitest": true,
	"playwright": true, "turborepo": true, "github actions": true,
	"docker": true,
}

// modernnessScore rewards current, widely adopted technology choices
func modernnessScore(stack *types.TechStack) float64 {
	score := 40.0

	var all []types.TechnologyItem
	all = append(all, stack.Languages...)
	all = append(all, stack.Frameworks...)
	all = append(all, stack.Libraries...)
	all = append(all, stack.Tools...)
	all = append(all, stack.TestingFrameworks...)
	all = append(all, stack.BuildTools...)

	for _, item := range all {
		if modernTechnologies[strings.ToLower(item.Name)] {
			score += 8.0
		}
	}
	return clamp(score, 0, 100)
}
