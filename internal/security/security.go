// Package security validates inbound request fields and sets response
// security headers. Owner and repository names go straight into GitHub API
// paths, so they are validated strictly before any request is built.
package security

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

const maxNameLength = 100

// GitHub owner and repository naming: alphanumeric edges, dots, dashes and
// underscores inside
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateRepoName checks a single owner or repository name
func ValidateRepoName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters", maxNameLength)
	}
	if strings.Contains(name, "\x00") || !utf8.ValidString(name) {
		return fmt.Errorf("name contains invalid characters")
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("invalid GitHub name format")
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid GitHub name format")
	}
	return nil
}

// ValidateRepoPath checks an owner/repo pair
func ValidateRepoPath(owner, repo string) error {
	if err := ValidateRepoName(owner); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if err := ValidateRepoName(repo); err != nil {
		return fmt.Errorf("repo: %w", err)
	}
	return nil
}

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateAccessToken rejects tokens with characters that could break out of
// an Authorization header. Empty tokens are fine; they mean "use the pool".
func ValidateAccessToken(token string) error {
	if token == "" {
		return nil
	}
	if len(token) > 255 {
		return fmt.Errorf("access token too long")
	}
	if !tokenPattern.MatchString(token) {
		return fmt.Errorf("access token contains invalid characters")
	}
	return nil
}

// HeadersMiddleware adds security headers to all responses
func HeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		// JSON API, nothing should execute or embed
		c.Header("Content-Security-Policy",
			"default-src 'none'; frame-ancestors 'none'; base-uri 'none'")

		if os.Getenv("ENABLE_HSTS") == "true" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}
