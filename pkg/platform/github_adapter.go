package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/sgaunet/bullets"

	"github.com/sgaunet/ci-driver/internal/gitcmd"
	ghclient "github.com/sgaunet/ci-driver/pkg/github"
)

// GitHubAdapter implements [Provider] over the GitHub driver components.
// It translates between the platform-agnostic types and the GitHub-specific
// ones.
type GitHubAdapter struct {
	client  *ghclient.Client
	runners *ghclient.RunnerManager
	jobs    *ghclient.Correlator
	merger  *ghclient.Merger
	reruns  *ghclient.RerunCoordinator
	token   string
	log     *bullets.Logger
}

// NewGitHubAdapter creates a GitHub adapter over an initialized client.
func NewGitHubAdapter(client *ghclient.Client, token string, log *bullets.Logger) *GitHubAdapter {
	targetURL := "https://github.com/" + client.Coordinate().Slug()
	return &GitHubAdapter{
		client:  client,
		runners: ghclient.NewRunnerManager(client, targetURL, log),
		jobs:    ghclient.NewCorrelator(client, log),
		merger:  ghclient.NewMerger(client, log),
		reruns:  ghclient.NewRerunCoordinator(client, log),
		token:   token,
		log:     log,
	}
}

// Name returns "GitHub".
func (a *GitHubAdapter) Name() string {
	return "GitHub"
}

// CreateCommitComment creates a comment on a commit.
func (a *GitHubAdapter) CreateCommitComment(ctx context.Context, sha, body string) (*Comment, error) {
	comment, err := a.client.CreateCommitComment(ctx, sha, body)
	if err != nil {
		return nil, err
	}
	return &Comment{ID: comment.ID, Body: comment.Body}, nil
}

// UpdateCommitComment replaces the body of a commit comment.
func (a *GitHubAdapter) UpdateCommitComment(ctx context.Context, id int64, body string) (*Comment, error) {
	comment, err := a.client.UpdateCommitComment(ctx, id, body)
	if err != nil {
		return nil, err
	}
	return &Comment{ID: comment.ID, Body: comment.Body}, nil
}

// ListCommitComments returns all comments on a commit.
func (a *GitHubAdapter) ListCommitComments(ctx context.Context, sha string) ([]Comment, error) {
	comments, err := a.client.ListCommitComments(ctx, sha)
	if err != nil {
		return nil, err
	}
	result := make([]Comment, len(comments))
	for i, c := range comments {
		result[i] = Comment{ID: c.ID, Body: c.Body}
	}
	return result, nil
}

// CreatePullRequest creates a new pull request.
func (a *GitHubAdapter) CreatePullRequest(ctx context.Context, params CreateParams) (*PullRequest, error) {
	pr, err := a.client.CreatePullRequest(ctx, params.Source, params.Target, params.Title, params.Body)
	if err != nil {
		return nil, err
	}
	return pullRequestFromGitHub(pr), nil
}

// ListPullRequests returns pull requests in the given state.
func (a *GitHubAdapter) ListPullRequests(ctx context.Context, state string) ([]PullRequest, error) {
	prs, err := a.client.ListPullRequests(ctx, state)
	if err != nil {
		return nil, err
	}
	return pullRequestsFromGitHub(prs), nil
}

// PullRequestsForCommit returns pull requests associated with a commit.
func (a *GitHubAdapter) PullRequestsForCommit(ctx context.Context, sha string) ([]PullRequest, error) {
	prs, err := a.client.PullRequestsForCommit(ctx, sha)
	if err != nil {
		return nil, err
	}
	return pullRequestsFromGitHub(prs), nil
}

// GetPullRequest fetches a pull request by number.
func (a *GitHubAdapter) GetPullRequest(ctx context.Context, number int) (*PullRequest, error) {
	pr, err := a.client.GetPullRequest(ctx, number)
	if err != nil {
		return nil, err
	}
	return pullRequestFromGitHub(pr), nil
}

// CreatePullRequestComment creates a comment on a pull request.
func (a *GitHubAdapter) CreatePullRequestComment(ctx context.Context, number int, body string) (*Comment, error) {
	comment, err := a.client.CreatePullRequestComment(ctx, number, body)
	if err != nil {
		return nil, err
	}
	return &Comment{ID: comment.ID, Body: comment.Body}, nil
}

// UpdatePullRequestComment replaces the body of a pull request comment.
func (a *GitHubAdapter) UpdatePullRequestComment(ctx context.Context, id int64, body string) (*Comment, error) {
	comment, err := a.client.UpdatePullRequestComment(ctx, id, body)
	if err != nil {
		return nil, err
	}
	return &Comment{ID: comment.ID, Body: comment.Body}, nil
}

// ListPullRequestComments returns all comments on a pull request.
func (a *GitHubAdapter) ListPullRequestComments(ctx context.Context, number int) ([]Comment, error) {
	comments, err := a.client.ListPullRequestComments(ctx, number)
	if err != nil {
		return nil, err
	}
	result := make([]Comment, len(comments))
	for i, c := range comments {
		result[i] = Comment{ID: c.ID, Body: c.Body}
	}
	return result, nil
}

// CreateCheck creates a check run.
func (a *GitHubAdapter) CreateCheck(ctx context.Context, params CheckParams) error {
	return a.client.CreateCheck(ctx, ghclient.CheckOptions{
		HeadSHA:     params.HeadSHA,
		Name:        params.Name,
		Title:       params.Title,
		Summary:     params.Summary,
		Conclusion:  params.Conclusion,
		StartedAt:   params.StartedAt,
		CompletedAt: params.CompletedAt,
	})
}

// MergePullRequest enables auto-merge with the immediate-merge fallback.
func (a *GitHubAdapter) MergePullRequest(ctx context.Context, params MergeParams) error {
	return a.merger.EnableAutoMerge(ctx, ghclient.MergeOptions{
		Number:  params.Number,
		Mode:    params.Mode,
		Message: params.Message,
		Base:    params.Base,
	})
}

// RerunRun re-triggers a workflow run unless it is already running.
func (a *GitHubAdapter) RerunRun(ctx context.Context, runID int64) error {
	return a.reruns.Rerun(ctx, runID)
}

// RestartJob re-triggers the run owning a job, best-effort.
func (a *GitHubAdapter) RestartJob(ctx context.Context, jobID int64) (RestartResult, error) {
	result, err := a.reruns.RestartByJob(ctx, jobID)
	if err != nil {
		return RestartResult{}, err
	}
	return RestartResult{Attempted: result.Attempted, Err: result.Err}, nil
}

// JobByRunner finds the job executing on a runner.
func (a *GitHubAdapter) JobByRunner(ctx context.Context, status string, runnerID int64) (*Job, error) {
	job, err := a.jobs.ByRunner(ctx, status, runnerID)
	if err != nil || job == nil {
		return nil, err
	}
	return jobFromGitHub(job), nil
}

// JobByNearestTime finds the job whose start time is closest to target.
func (a *GitHubAdapter) JobByNearestTime(ctx context.Context, status string, target time.Time) (*Job, error) {
	job, err := a.jobs.ByNearestTime(ctx, status, target)
	if err != nil || job == nil {
		return nil, err
	}
	return jobFromGitHub(job), nil
}

// StartRunner provisions, registers and launches a self-hosted runner.
func (a *GitHubAdapter) StartRunner(ctx context.Context, opts RunnerOptions) (*RunnerProcess, error) {
	proc, err := a.runners.Start(ctx, ghclient.RunnerOptions{
		Workdir: opts.Workdir,
		Name:    opts.Name,
		Labels:  opts.Labels,
		Single:  opts.Single,
	})
	if err != nil {
		return nil, err
	}
	return &RunnerProcess{Reused: proc.Reused, PID: proc.PID, Workdir: proc.Workdir}, nil
}

// ListRunners enumerates the self-hosted runners at the resolved scope.
func (a *GitHubAdapter) ListRunners(ctx context.Context) ([]Runner, error) {
	runners, err := a.runners.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]Runner, len(runners))
	for i, r := range runners {
		result[i] = runnerFromGitHub(r)
	}
	return result, nil
}

// GetRunner fetches one runner by identifier.
func (a *GitHubAdapter) GetRunner(ctx context.Context, id int64) (*Runner, error) {
	runner, err := a.runners.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	result := runnerFromGitHub(*runner)
	return &result, nil
}

// UnregisterRunner deletes a runner registration.
func (a *GitHubAdapter) UnregisterRunner(ctx context.Context, id int64) error {
	return a.runners.Unregister(ctx, id)
}

// RunnerRegistrationToken requests a short-lived registration token.
func (a *GitHubAdapter) RunnerRegistrationToken(ctx context.Context) (string, error) {
	return a.runners.RegistrationToken(ctx)
}

// RemoteSetupCommands returns the git remote reconfiguration command text.
func (a *GitHubAdapter) RemoteSetupCommands(userName, userEmail string) ([]string, error) {
	remoteURL := "https://github.com/" + a.client.Coordinate().Slug()
	return gitcmd.RemoteSetup(remoteURL, a.token, gitcmd.Identity{Name: userName, Email: userEmail})
}

// Publish is not supported: GitHub has no driver-addressable artifact store
// outside a workflow run.
func (a *GitHubAdapter) Publish(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("%w: publish", ErrNotSupported)
}

// RegisterRunnerDirectly is not supported: GitHub only registers runners
// through short-lived registration tokens.
func (a *GitHubAdapter) RegisterRunnerDirectly(_ context.Context, _ RunnerOptions) error {
	return fmt.Errorf("%w: direct runner registration", ErrNotSupported)
}

func runnerFromGitHub(r ghclient.Runner) Runner {
	return Runner{ID: r.ID, Name: r.Name, Labels: r.Labels, Online: r.Online, Busy: r.Busy}
}

func jobFromGitHub(j *ghclient.Job) *Job {
	return &Job{ID: j.ID, Date: j.Date, RunID: j.RunID, RunnerID: j.RunnerID, Status: j.Status}
}

func pullRequestFromGitHub(pr *ghclient.PullRequest) *PullRequest {
	return &PullRequest{URL: pr.URL, Number: pr.Number, Source: pr.Source, Target: pr.Target}
}

func pullRequestsFromGitHub(prs []ghclient.PullRequest) []PullRequest {
	result := make([]PullRequest, len(prs))
	for i := range prs {
		result[i] = *pullRequestFromGitHub(&prs[i])
	}
	return result
}

// Compile-time interface check.
var _ Provider = (*GitHubAdapter)(nil)
