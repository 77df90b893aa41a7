package discovery

import "strings"

// skipDirs are directory names never worth exploring: VCS internals,
// dependency trees, build outputs, IDE metadata, asset dirs, caches
var skipDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,

	"node_modules": true, "__pycache__": true, ".pytest_cache": true,
	"venv": true, "env": true, "virtualenv": true, ".venv": true,
	".env": true, "build": true, "dist": true, "target": true,
	"bin": true, "obj": true, "out": true, ".gradle": true,
	"vendor": true, "bower_components": true, ".npm": true,

	".vscode": true, ".idea": true, ".vs": true, ".settings": true,
	".project": true, ".classpath": true,

	"docs": true, "documentation": true, "examples": true,
	"samples": true, "demo": true, "demos": true,
	"test-data": true, "testdata": true, "fixtures": true, "mocks": true,

	"assets": true, "static": true, "public": true, "images": true,
	"img": true, "fonts": true, "stylesheets": true, "css": true,
	"scss": true, "sass": true, "media": true,

	"coverage": true, ".coverage": true, ".nyc_output": true,
	"htmlcov": true, "test-results": true,

	"tmp": true, "temp": true, "cache": true, ".cache": true,
	"logs": true, "log": true,

	".github": true, ".gitlab": true, ".circleci": true,
	".travis": true, ".appveyor": true,
}

// shouldSkipDir reports whether a directory subtree should not be explored
func shouldSkipDir(path string) bool {
	parts := strings.Split(strings.ToLower(path), "/")
	depth := strings.Count(path, "/")

	for _, part := range parts {
		if skipDirs[part] {
			return true
		}
		if strings.HasPrefix(part, ".") && len(part) > 1 && part != ".github" && part != ".gitlab" {
			return true
		}
		// Deep test directories are usually fixtures, not code
		if strings.Contains(part, "test") && depth > 2 {
			return true
		}
	}
	return false
}

// skipPathPrefixes filter individual file paths before content fetch
var skipPathPrefixes = []string{
	"node_modules/", "__pycache__/", ".git/", "venv/", "env/",
	"build/", "dist/", "target/", "bin/", "obj/", ".vscode/",
	".idea/", ".gradle/", "vendor/", "bower_components/",

	"coverage/", ".coverage/", ".pytest_cache/", ".nyc_output/",

	"docs/", "documentation/", "examples/tutorials/",

	"assets/", "static/", "public/", "images/", "img/",
	"fonts/", "stylesheets/", "css/", "scss/", "sass/",

	".npm/", ".yarn/", "yarn.lock", "package-lock.json",

	".github/", ".gitlab/", ".circleci/", ".travis/",
}

func shouldSkipPath(path string) bool {
	lower := strings.ToLower(path)
	for _, pattern := range skipPathPrefixes {
		if strings.HasPrefix(lower, pattern) || strings.Contains(lower, "/"+pattern) {
			return true
		}
	}
	return false
}

// analyzableExtensions lists extensions with enough logic to be worth
// metrics, security, and tech-stack analysis
var analyzableExtensions = map[string]bool{
	"py": true, "js": true, "ts": true, "jsx": true, "tsx": true,
	"java": true, "cpp": true, "c": true, "cs": true, "go": true,
	"rs": true, "php": true, "rb": true, "swift": true, "kt": true,
	"scala": true, "r": true, "sql": true, "sh": true,
	"bash": true, "ps1": true, "pl": true, "lua": true, "dart": true,
	"vue": true, "svelte": true,

	"h": true, "hpp": true, "cc": true, "cxx": true, "m": true,
	"mm": true, "groovy": true, "gradle": true,
	"clj": true, "cljs": true, "elm": true, "ex": true, "exs": true,
	"erl": true, "hrl": true, "hs": true,
	"ml": true, "mli": true, "fs": true, "fsx": true, "fsi": true,
	"nim": true, "nims": true, "pas": true,
	"pp": true, "pro": true, "vb": true, "vbs": true, "asm": true,
	"s": true, "f": true, "f90": true, "f95": true,
	"jl": true, "d": true, "zig": true, "odin": true, "v": true, "vv": true,

	"html": true, "htm": true, "xml": true, "xsl": true, "xslt": true,
	"svg": true,

	"dockerfile": true, "makefile": true, "cmake": true, "yml": true,
	"yaml": true, "toml": true,
	"ini": true, "cfg": true, "conf": true, "properties": true,
	"json": true, "tf": true, "hcl": true,
}

func isAnalyzable(extension string) bool {
	return analyzableExtensions[strings.ToLower(extension)]
}

var extensionLanguages = map[string]string{
	"py":    "Python",
	"js":    "JavaScript",
	"ts":    "TypeScript",
	"jsx":   "JavaScript",
	"tsx":   "TypeScript",
	"java":  "Java",
	"cpp":   "C++",
	"cc":    "C++",
	"cxx":   "C++",
	"c":     "C",
	"cs":    "C#",
	"go":    "Go",
	"rs":    "Rust",
	"php":   "PHP",
	"rb":    "Ruby",
	"swift": "Swift",
	"kt":    "Kotlin",
	"scala": "Scala",
	"r":     "R",
	"html":  "HTML",
	"css":   "CSS",
	"scss":  "SCSS",
	"less":  "Less",
	"sql":   "SQL",
	"sh":    "Shell",
	"yaml":  "YAML",
	"yml":   "YAML",
	"json":  "JSON",
	"xml":   "XML",
	"md":    "Markdown",
}

// LanguageForExtension maps a file extension to its language name, or ""
func LanguageForExtension(extension string) string {
	return extensionLanguages[strings.ToLower(extension)]
}
