package platform

import (
	"context"
	"time"
)

// Provider defines the uniform capability set one forge driver exposes.
// Every operation resolves identity, invokes the forge API and returns a
// normalized result; callers wanting timeouts impose them through ctx.
type Provider interface {
	// Name returns the forge name, e.g. "GitHub".
	Name() string

	// CreateCommitComment creates a comment on a commit.
	CreateCommitComment(ctx context.Context, sha, body string) (*Comment, error)

	// UpdateCommitComment replaces the body of an existing commit comment.
	UpdateCommitComment(ctx context.Context, id int64, body string) (*Comment, error)

	// ListCommitComments returns all comments on a commit.
	ListCommitComments(ctx context.Context, sha string) ([]Comment, error)

	// CreatePullRequest creates a new pull request.
	CreatePullRequest(ctx context.Context, params CreateParams) (*PullRequest, error)

	// ListPullRequests returns pull requests in the given state.
	ListPullRequests(ctx context.Context, state string) ([]PullRequest, error)

	// PullRequestsForCommit returns the pull requests associated with a
	// commit.
	PullRequestsForCommit(ctx context.Context, sha string) ([]PullRequest, error)

	// GetPullRequest fetches a pull request by number.
	GetPullRequest(ctx context.Context, number int) (*PullRequest, error)

	// CreatePullRequestComment creates a comment on a pull request.
	CreatePullRequestComment(ctx context.Context, number int, body string) (*Comment, error)

	// UpdatePullRequestComment replaces the body of a pull request comment.
	UpdatePullRequestComment(ctx context.Context, id int64, body string) (*Comment, error)

	// ListPullRequestComments returns all comments on a pull request.
	ListPullRequestComments(ctx context.Context, number int) ([]Comment, error)

	// CreateCheck creates a check run.
	CreateCheck(ctx context.Context, params CheckParams) error

	// MergePullRequest enables the forge-native automatic merge, falling
	// back to an immediate merge for a bounded set of provider-reported
	// incapacities. Other failures propagate unchanged.
	MergePullRequest(ctx context.Context, params MergeParams) error

	// RerunRun re-triggers a workflow run unless it is already running.
	RerunRun(ctx context.Context, runID int64) error

	// RestartJob re-triggers the run owning a job, best-effort: re-run
	// request failures are reported in the result, never raised.
	RestartJob(ctx context.Context, jobID int64) (RestartResult, error)

	// JobByRunner finds the job in the given status executing on a runner.
	// A missing match yields (nil, nil).
	JobByRunner(ctx context.Context, status string, runnerID int64) (*Job, error)

	// JobByNearestTime finds the job in the given status whose start time
	// is closest to target; ties go to the earliest candidate.
	JobByNearestTime(ctx context.Context, status string, target time.Time) (*Job, error)

	// StartRunner provisions, registers and launches a self-hosted runner
	// as a detached process.
	StartRunner(ctx context.Context, opts RunnerOptions) (*RunnerProcess, error)

	// ListRunners enumerates the self-hosted runners at the resolved scope.
	ListRunners(ctx context.Context) ([]Runner, error)

	// GetRunner fetches one runner by identifier.
	GetRunner(ctx context.Context, id int64) (*Runner, error)

	// UnregisterRunner deletes a runner registration.
	UnregisterRunner(ctx context.Context, id int64) error

	// RunnerRegistrationToken requests a short-lived registration token.
	RunnerRegistrationToken(ctx context.Context) (string, error)

	// RemoteSetupCommands returns the shell command sequence that rewires a
	// checkout's git remote for authenticated pushes. Emitted as text for
	// an external shell; never executed in-process.
	RemoteSetupCommands(userName, userEmail string) ([]string, error)

	// Publish uploads an artifact and returns its URL. Forges without an
	// artifact store return ErrNotSupported.
	Publish(ctx context.Context, path string) (string, error)

	// RegisterRunnerDirectly registers a runner without a registration
	// token. Forges that only support token-based registration return
	// ErrNotSupported.
	RegisterRunnerDirectly(ctx context.Context, opts RunnerOptions) error
}
