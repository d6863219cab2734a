package github

import "errors"

// Error definitions for GitHub API operations.
var (
	errTokenRequired = errors.New("access token is required")

	// ErrTokenRequired is returned when no access token is supplied.
	ErrTokenRequired = errTokenRequired
)

// defaultToleratedMergeErrors are the provider messages that mean "automatic
// merge is not available here" and are handled by falling back to an
// immediate merge. Matching is by case-insensitive substring; anything else
// propagates unchanged. The list is injectable via
// [Merger.SetToleratedErrors] because it tracks provider API wording.
var defaultToleratedMergeErrors = []string{
	"cannot enable auto-merge for this pull request",
	"protected branch rules not configured for this branch",
	"pull request is in clean status",
}
