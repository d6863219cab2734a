package github

import "context"

// ActionsAPI is the slice of the client the correlation and re-run
// components consume. The interface enables dependency injection and
// black-box testing with mock implementations.
type ActionsAPI interface {
	// GetWorkflowRun fetches one workflow run by identifier.
	GetWorkflowRun(ctx context.Context, runID int64) (*WorkflowRun, error)

	// GetJob fetches one job by identifier.
	GetJob(ctx context.Context, jobID int64) (*Job, error)

	// ListWorkflowRuns enumerates workflow runs in the given provider
	// status, paginating transparently.
	ListWorkflowRuns(ctx context.Context, status string) ([]WorkflowRun, error)

	// ListJobs enumerates a run's jobs in the given provider status,
	// paginating transparently.
	ListJobs(ctx context.Context, runID int64, status string) ([]Job, error)

	// RerunWorkflow requests a re-run of the given workflow run.
	RerunWorkflow(ctx context.Context, runID int64) error
}

// MergeAPI is the slice of the client the merge orchestrator consumes.
type MergeAPI interface {
	// PullRequestNodeID resolves a pull request's opaque provider-internal
	// identifier from its number. The merge-enabling mutation and the plain
	// merge operation address the pull request differently.
	PullRequestNodeID(ctx context.Context, number int) (string, error)

	// EnableAutoMerge invokes the provider-native deferred merge.
	EnableAutoMerge(ctx context.Context, nodeID, method, headline, body string) error

	// MergePullRequest performs an immediate synchronous merge.
	MergePullRequest(ctx context.Context, number int, method, headline, body string) error

	// BranchProtected reports whether branch protection is enabled for the
	// given branch.
	BranchProtected(ctx context.Context, branch string) (bool, error)
}

// RunnerAPI is the slice of the client the runner lifecycle manager
// consumes. All operations apply at the resolved coordinate's scope:
// organization-wide when the coordinate has no repository, repository-scoped
// otherwise.
type RunnerAPI interface {
	// CreateRegistrationToken requests a short-lived runner registration
	// token at the resolved scope. The scoping decision is made per call
	// and never cached.
	CreateRegistrationToken(ctx context.Context) (string, error)

	// ListRunners enumerates all self-hosted runners at the resolved scope.
	ListRunners(ctx context.Context) ([]Runner, error)

	// GetRunner fetches one self-hosted runner by identifier.
	GetRunner(ctx context.Context, id int64) (*Runner, error)

	// RemoveRunner deletes the runner registration. Deleting an absent
	// runner surfaces as a provider error, propagated unchanged.
	RemoveRunner(ctx context.Context, id int64) error

	// LatestRunnerVersion reports the newest published runner release tag.
	LatestRunnerVersion(ctx context.Context) (string, error)
}

// CommandRunner abstracts local process execution so runner registration and
// launch can be tested without spawning real processes.
type CommandRunner interface {
	// Run executes a command in dir and waits for completion.
	Run(ctx context.Context, dir, name string, args ...string) error

	// StartDetached launches a long-lived process in dir, detached from the
	// current process group, and returns its PID. The child is not
	// supervised after launch.
	StartDetached(dir, name string, args ...string) (int, error)
}

// compile-time checks that Client satisfies the component interfaces.
var (
	_ ActionsAPI = (*Client)(nil)
	_ MergeAPI   = (*Client)(nil)
	_ RunnerAPI  = (*Client)(nil)
)
