// Package platform provides the provider-agnostic capability surface the
// orchestrator consumes. The [Provider] interface defines a uniform set of
// operations (reporting, pull request management, pipeline control and
// self-hosted runner lifecycle) implemented by interchangeable forge
// variants, so the orchestrator never needs to know which forge it talks to.
//
// Use [NewProvider] to create the adapter for a forge:
//
//	provider, err := platform.NewProvider(platform.KindGitHub, cfg, ci, logger)
//	proc, _ := provider.StartRunner(ctx, platform.RunnerOptions{...})
//	err = provider.MergePullRequest(ctx, platform.MergeParams{Number: 42, Mode: "squash"})
package platform

import "time"

// Kind identifies a forge variant.
type Kind string

// Supported forge kinds.
const (
	KindGitHub Kind = "github"
)

// Runner represents a self-hosted execution agent at one forge.
type Runner struct {
	ID     int64
	Name   string
	Labels []string
	Online bool
	Busy   bool
}

// RunnerProcess is the local handle for a spawned runner agent. The caller
// owns its lifetime.
type RunnerProcess struct {
	// Reused reports that an already-configured runner was relaunched
	// instead of registering a fresh one.
	Reused  bool
	PID     int
	Workdir string
}

// RunnerOptions configures registration and launch of a self-hosted runner.
type RunnerOptions struct {
	Workdir string
	Name    string
	Labels  []string

	// Single registers the runner in ephemeral mode: one job, then exit.
	Single bool
}

// Job is a single unit of work inside a workflow run. RunnerID is 0 when
// unknown; job/runner correlation discovers it.
type Job struct {
	ID       int64
	Date     time.Time
	RunID    int64
	RunnerID int64
	Status   string
}

// PullRequest is the normalized platform-agnostic shape of a pull request.
// Source and Target carry no ref prefixes.
type PullRequest struct {
	URL    string
	Number int
	Source string
	Target string
}

// Comment is the uniform shape for commit comments and PR comments.
type Comment struct {
	ID   int64
	Body string
}

// CreateParams holds parameters for creating a pull request.
type CreateParams struct {
	Source string
	Target string
	Title  string
	Body   string
}

// MergeParams holds parameters for merging a pull request. Mode must be a
// value the provider accepts (merge, squash or rebase, case-insensitive).
// Message, when set, splits into a commit headline and body for providers
// that model them separately.
type MergeParams struct {
	Number  int
	Mode    string
	Message string
	Base    string
}

// CheckParams describes a check run to create.
type CheckParams struct {
	HeadSHA    string
	Name       string
	Title      string
	Summary    string
	Conclusion string
	StartedAt  time.Time

	// CompletedAt is only used when Conclusion is set; a zero value falls
	// back to StartedAt.
	CompletedAt time.Time
}

/// RestartResult reports the outcome of a best-effort job restart: whether a
// re-run was attempted and the suppressed request error, if any.
type RestartResult struct {
	Attempted bool
	Err       error
}
