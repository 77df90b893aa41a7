package discovery

import (
	"path"
	"sort"
	"strings"

	"github.com/0unveiled/github-analyzer/internal/types"
)

var packageManagerFiles = map[string]string{
	"package.json":     "npm",
	"yarn.lock":        "yarn",
	"pnpm-lock.yaml":   "pnpm",
	"requirements.txt": "pip",
	"pyproject.toml":   "poetry",
	"pipfile":          "pipenv",
	"go.mod":           "go modules",
	"cargo.toml":       "cargo",
	"pom.xml":          "maven",
	"build.gradle":     "gradle",
	"build.gradle.kts": "gradle",
	"gemfile":          "bundler",
	"composer.json":    "composer",
	"mix.exs":          "mix",
	"packages.config":  "nuget",
	"project.clj":      "leiningen",
	"stack.yaml":       "stack",
	"pubspec.yaml":     "pub",
}

var configFileNames = map[string]bool{
	"dockerfile":          true,
	"docker-compose.yml":  true,
	"docker-compose.yaml": true,
	"makefile":            true,
	".editorconfig":       true,
	"tsconfig.json":       true,
	"babel.config.js":     true,
	"webpack.config.js":   true,
	"vite.config.ts":      true,
	"vite.config.js":      true,
	"jest.config.js":      true,
	"pytest.ini":          true,
	"setup.cfg":           true,
	"tox.ini":             true,
	".eslintrc.json":      true,
	".eslintrc.js":        true,
	".prettierrc":         true,
	"rollup.config.js":    true,
	"next.config.js":      true,
	"nuxt.config.js":      true,
}

// Security practice files live outside the analyzable-extension set, so the
// flags have to come from the audit trail rather than fetched content
var securityPolicyPaths = map[string]bool{
	"security.md":         true,
	"security.txt":        true,
	".github/security.md": true,
	"docs/security.md":    true,
}

var dependencyAutomationPaths = map[string]bool{
	".github/dependabot.yml":  true,
	".github/dependabot.yaml": true,
	".github/renovate.json":   true,
	"renovate.json":           true,
	".dependabot/config.yml":  true,
	".whitesource":            true,
}

var secretsScanningPaths = map[string]bool{
	".gitleaks.toml":              true,
	".detect-secrets.yaml":        true,
	".pre-commit-config.yaml":     true,
	".github/secret_scanning.yml": true,
}

var ciConfigMarkers = []string{
	".github/workflows/",
	".gitlab-ci.yml",
	".circleci/",
	".travis.yml",
	"azure-pipelines.yml",
	"jenkinsfile",
	"bitbucket-pipelines.yml",
}

// DeriveStructure summarizes the repository layout from the discovery
// audit trail
func DeriveStructure(discovered []string) *types.RepositoryStructure {
	s := &types.RepositoryStructure{
		FileTypes: make(map[string]int),
	}

	dirs := make(map[string]bool)
	managers := make(map[string]bool)
	var configs []string

	for _, p := range discovered {
		s.TotalFiles++

		lower := strings.ToLower(p)
		name := path.Base(lower)

		depth := strings.Count(p, "/")
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
			dirs[dir] = true
		}

		if ext := extensionOf(name); ext != "" {
			s.FileTypes[ext]++
		}

		switch {
		case strings.HasPrefix(name, "readme"):
			s.HasReadme = true
		case strings.HasPrefix(name, "license") || strings.HasPrefix(name, "licence") || name == "copying":
			s.HasLicense = true
		}

		if name == "dockerfile" || strings.HasPrefix(name, "dockerfile.") {
			s.HasDockerfile = true
		}

		for _, marker := range ciConfigMarkers {
			if strings.Contains(lower, marker) {
				s.HasCIConfig = true
				break
			}
		}

		if isTestPath(lower) {
			s.HasTests = true
		}
		if strings.HasPrefix(lower, "docs/") || strings.Contains(lower, "/docs/") || name == "mkdocs.yml" {
			s.HasDocs = true
		}

		if securityPolicyPaths[lower] {
			s.HasSecurityPolicy = true
		}
		if dependencyAutomationPaths[lower] {
			s.HasDependencyAutomation = true
		}
		if secretsScanningPaths[lower] {
			s.HasSecretsScanningConfig = true
		}

		if manager, ok := packageManagerFiles[name]; ok {
			managers[manager] = true
		}
		if configFileNames[name] {
			configs = append(configs, p)
		}
	}

	s.TotalDirectories = len(dirs)

	for m := range managers {
		s.PackageManagers = append(s.PackageManagers, m)
	}
	sort.Strings(s.PackageManagers)
	sort.Strings(configs)
	s.ConfigFiles = configs

	return s
}

func isTestPath(lower string) bool {
	name := path.Base(lower)
	if strings.HasSuffix(name, "_test.go") || strings.HasPrefix(name, "test_") {
		return true
	}
	if strings.Contains(name, ".test.") || strings.Contains(name, ".spec.") {
		return true
	}
	for _, part := range strings.Split(path.Dir(lower), "/") {
		if part == "test" || part == "tests" || part == "spec" || part == "__tests__" {
			return true
		}
	}
	return false
}
