package github

import (
	"time"

	"github.com/sgaunet/bullets"

	gogithub "github.com/google/go-github/v69/github"
	"github.com/shurcooL/githubv4"

	"github.com/sgaunet/ci-driver/internal/cicontext"
	"github.com/sgaunet/ci-driver/internal/identity"
)

// Constants for GitHub API operations.
const (
	perPage          = 100
	statusInProgress = "in_progress"
	statusQueued     = "queued"
	statusCompleted  = "completed"
	statusOnline     = "online"
)

// Client represents a GitHub API client wrapper. It exposes the typed
// operations the driver components consume; throttling retries happen in the
// underlying transport.
type Client struct {
	rest    *gogithub.Client
	graphql *githubv4.Client
	coord   identity.Coordinate
	ci      cicontext.Context
	log     *bullets.Logger
}

// Runner represents a self-hosted execution agent as reported by GitHub.
type Runner struct {
	ID     int64
	Name   string
	Labels []string
	Online bool
	Busy   bool
}

// RunnerProcess is the local handle for a spawned runner agent. The caller
// owns its lifetime; the driver does not supervise or restart it.
type RunnerProcess struct {
	// Reused reports that the workdir already held a configured runner,
	// so registration was skipped for this start.
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

// WorkflowRun is one execution instance of a pipeline definition.
type WorkflowRun struct {
	ID     int64
	Status string
}

// Job is a single unit of work inside a workflow run. RunnerID is 0 when the
// provider has not reported which runner executes it; correlation is the
// mechanism to discover it.
type Job struct {
	ID       int64
	Date     time.Time
	RunID    int64
	RunnerID int64
	Status   string
}

// PullRequest is the normalized shape of a pull request. Source and Target
// are branch names with any refs/heads/ or refs/tags/ prefix stripped.
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

// CheckOptions describes a check run to create.
type CheckOptions struct {
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

// MergeOptions describes an automatic-merge request for a pull request.
type MergeOptions struct {
	Number int

	// Mode is "merge", "squash" or "rebase" (case-insensitive).
	Mode string

	// Message, when set, splits into a commit headline (first line) and
	// body (remainder after a blank line).
	Message string

	// Base is the target branch, used for the branch-protection diagnosis
	// when auto-merge is unavailable.
	Base string
}

// RestartResult reports the outcome of a best-effort job restart. A failed
// re-run request is recorded here instead of raised, so callers can observe
// "attempted but failed" versus "succeeded".
type RestartResult struct {
	// Attempted is true when a re-run request was issued, false when the
	// owning run was already in progress.
	Attempted bool

	// Err holds the suppressed re-run request error, if any.
	Err error
}

func runnerFromGitHub(r *gogithub.Runner) Runner {
	labels := make([]string, 0, len(r.Labels))
	for _, l := range r.Labels {
		labels = append(labels, l.GetName())
	}
	return Runner{
		ID:     r.GetID(),
		Name:   r.GetName(),
		Labels: labels,
		Online: r.GetStatus() == statusOnline,
		Busy:   r.GetBusy(),
	}
}

func jobFromGitHub(j *gogithub.WorkflowJob) Job {
	return Job{
		ID:       j.GetID(),
		Date:     j.GetStartedAt().Time,
		RunID:    j.GetRunID(),
		RunnerID: j.GetRunnerID(),
		Status:   j.GetStatus(),
	}
}

func runFromGitHub(r *gogithub.WorkflowRun) WorkflowRun {
	return WorkflowRun{
		ID:     r.GetID(),
		Status: r.GetStatus(),
	}
}

func pullRequestFromGitHub(pr *gogithub.PullRequest) PullRequest {
	return PullRequest{
		URL:    pr.GetHTMLURL(),
		Number: pr.GetNumber(),
		Source: NormalizeRef(pr.GetHead().GetRef()),
		Target: NormalizeRef(pr.GetBase().GetRef()),
	}
}

func commentFromIssueComment(c *gogithub.IssueComment) Comment {
	return Comment{ID: c.GetID(), Body: c.GetBody()}
}

func commentFromRepoComment(c *gogithub.RepositoryComment) Comment {
	return Comment{ID: c.GetID(), Body: c.GetBody()}
}
