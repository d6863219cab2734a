package github

import (
	"strings"

	"github.com/sgaunet/ci-driver/internal/cicontext"
)

// NormalizeRef strips exactly one leading refs/heads/ or refs/tags/ prefix
// from a ref name. Names without those prefixes are returned unchanged, and
// an empty name stays empty.
func NormalizeRef(ref string) string {
	if after, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
		return after
	}
	if after, ok := strings.CutPrefix(ref, "refs/tags/"); ok {
		return after
	}
	return ref
}

// SplitMessage splits a commit message into its headline (first line) and
// body (remainder after the first blank line) for providers that model them
// separately.
func SplitMessage(message string) (string, string) {
	headline, rest, found := strings.Cut(message, "\n")
	headline = strings.TrimRight(headline, "\r")
	if !found {
		return headline, ""
	}
	return headline, strings.TrimLeft(rest, "\r\n")
}

// CurrentBranch derives the branch of the ambient CI run: the head ref on
// pull_request events, otherwise the normalized ref name.
func CurrentBranch(ci cicontext.Context) string {
	if ci.HeadRef != "" {
		return NormalizeRef(ci.HeadRef)
	}
	return NormalizeRef(ci.Ref)
}

// CurrentSHA derives the head commit of the ambient CI run.
func CurrentSHA(ci cicontext.Context) string {
	return ci.SHA
}
