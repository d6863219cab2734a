// Package cicontext carries the ambient CI execution context as an explicit
// value. It is built once at process start from the environment and threaded
// through every operation that needs it; nothing in the core logic reads
// process-wide state directly.
package cicontext

import (
	"os"
	"strconv"
)

// Context holds the identity of the CI run the driver executes inside.
// The zero value means the driver runs outside any CI environment.
type Context struct {
	EventName  string // triggering event, e.g. "push" or "pull_request"
	SHA        string // head commit SHA
	Ref        string // full ref name, e.g. "refs/heads/main"
	HeadRef    string // source branch on pull_request events, empty otherwise
	RunID      int64  // workflow run identifier, 0 outside CI
	Repository string // ambient "owner/repo" slug, coordinate fallback
	Token      string // credential ambient to the CI run, used for provenance comparison
}

// FromEnv builds a Context from the standard GitHub Actions environment.
// Missing variables leave the corresponding fields at their zero value.
func FromEnv() Context {
	runID, _ := strconv.ParseInt(os.Getenv("GITHUB_RUN_ID"), 10, 64)
	return Context{
		EventName:  os.Getenv("GITHUB_EVENT_NAME"),
		SHA:        os.Getenv("GITHUB_SHA"),
		Ref:        os.Getenv("GITHUB_REF"),
		HeadRef:    os.Getenv("GITHUB_HEAD_REF"),
		RunID:      runID,
		Repository: os.Getenv("GITHUB_REPOSITORY"),
		Token:      os.Getenv("GITHUB_TOKEN"),
	}
}

// InCI reports whether the process runs inside a CI workflow run.
func (c Context) InCI() bool {
	return c.RunID != 0
}
