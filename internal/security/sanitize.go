package security

import (
	"regexp"
	"sync"
)

var (
	// Token regex patterns compiled once using sync.Once for performance.
	githubTokenRegex *regexp.Regexp
	urlCredRegex     *regexp.Regexp
	authHeaderRegex  *regexp.Regexp
	regexOnce        sync.Once
)

// compileRegexPatterns initializes all regex patterns once.
func compileRegexPatterns() {
	regexOnce.Do(func() {
		// GitHub personal access tokens: ghp_/gho_/ghs_ + 20+ chars
		// Real tokens are 36+ chars, but we catch shorter ones for safety
		githubTokenRegex = regexp.MustCompile(`gh[ops]_[a-zA-Z0-9]{20,}`)

		// Credentials embedded as userinfo in http(s) URLs, the form the
		// generated remote reconfiguration commands use
		urlCredRegex = regexp.MustCompile(`(https?://)[^/@\s]+@`)

		// Authorization headers: "Authorization: Bearer <token>" or "Authorization: <token>"
		authHeaderRegex = regexp.MustCompile(`(?i)authorization:\s*(?:bearer|basic)\s+[a-zA-Z0-9+/=_-]{10,}`)
	})
}

// SanitizeString removes sensitive tokens from a string before it reaches
// logs or error messages. It redacts GitHub tokens (ghp_/gho_/ghs_*),
// credentials embedded in URLs, and authorization headers.
//
// Thread Safety: Safe for concurrent use after first call (regex patterns compiled via sync.Once).
func SanitizeString(s string) string {
	compileRegexPatterns()

	s = githubTokenRegex.ReplaceAllString(s, "[token-redacted]")
	s = urlCredRegex.ReplaceAllString(s, "${1}[credential-redacted]@")
	s = authHeaderRegex.ReplaceAllString(s, "authorization: [redacted]")

	return s
}
