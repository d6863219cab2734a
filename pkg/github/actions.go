package github

import (
	"context"
	"fmt"

	gogithub "github.com/google/go-github/v69/github"
	"github.com/shurcooL/githubv4"
)

// CreateRegistrationToken requests a short-lived runner registration token.
// Organization coordinates use the org-scoped endpoint, repository
// coordinates the repo-scoped one; the decision is per call and never
// cached.
func (c *Client) CreateRegistrationToken(ctx context.Context) (string, error) {
	var (
		token *gogithub.RegistrationToken
		err   error
	)
	if c.coord.IsOrg() {
		token, _, err = c.rest.Actions.CreateOrganizationRegistrationToken(ctx, c.coord.Owner)
	} else {
		token, _, err = c.rest.Actions.CreateRegistrationToken(ctx, c.coord.Owner, c.coord.Repo)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create registration token: %w", err)
	}
	return token.GetToken(), nil
}

// ListRunners enumerates all self-hosted runners at the resolved scope,
// paginating transparently.
func (c *Client) ListRunners(ctx context.Context) ([]Runner, error) {
	var all []Runner
	opts := &gogithub.ListRunnersOptions{
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	}

	for {
		var (
			runners *gogithub.Runners
			resp    *gogithub.Response
			err     error
		)
		if c.coord.IsOrg() {
			runners, resp, err = c.rest.Actions.ListOrganizationRunners(ctx, c.coord.Owner, opts)
		} else {
			runners, resp, err = c.rest.Actions.ListRunners(ctx, c.coord.Owner, c.coord.Repo, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list runners: %w", err)
		}
		for _, r := range runners.Runners {
			all = append(all, runnerFromGitHub(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// GetRunner fetches one self-hosted runner by identifier.
func (c *Client) GetRunner(ctx context.Context, id int64) (*Runner, error) {
	var (
		runner *gogithub.Runner
		err    error
	)
	if c.coord.IsOrg() {
		runner, _, err = c.rest.Actions.GetOrganizationRunner(ctx, c.coord.Owner, id)
	} else {
		runner, _, err = c.rest.Actions.GetRunner(ctx, c.coord.Owner, c.coord.Repo, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get runner: %w", err)
	}

	result := runnerFromGitHub(runner)
	return &result, nil
}

// RemoveRunner deletes the runner registration at the resolved scope.
// Deleting an already-absent runner surfaces as a provider error.
func (c *Client) RemoveRunner(ctx context.Context, id int64) error {
	var err error
	if c.coord.IsOrg() {
		_, err = c.rest.Actions.RemoveOrganizationRunner(ctx, c.coord.Owner, id)
	} else {
		_, err = c.rest.Actions.RemoveRunner(ctx, c.coord.Owner, c.coord.Repo, id)
	}
	if err != nil {
		return fmt.Errorf("failed to remove runner: %w", err)
	}
	return nil
}

// LatestRunnerVersion reports the newest published tag of the upstream
// runner release index.
func (c *Client) LatestRunnerVersion(ctx context.Context) (string, error) {
	release, _, err := c.rest.Repositories.GetLatestRelease(ctx, "actions", "runner")
	if err != nil {
		return "", fmt.Errorf("failed to get latest runner release: %w", err)
	}
	return release.GetTagName(), nil
}

// GetWorkflowRun fetches one workflow run by identifier.
func (c *Client) GetWorkflowRun(ctx context.Context, runID int64) (*WorkflowRun, error) {
	run, _, err := c.rest.Actions.GetWorkflowRunByID(ctx, c.coord.Owner, c.coord.Repo, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow run: %w", err)
	}

	result := runFromGitHub(run)
	return &result, nil
}

// GetJob fetches one workflow job by identifier.
func (c *Client) GetJob(ctx context.Context, jobID int64) (*Job, error) {
	job, _, err := c.rest.Actions.GetWorkflowJobByID(ctx, c.coord.Owner, c.coord.Repo, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow job: %w", err)
	}

	result := jobFromGitHub(job)
	return &result, nil
}

// ListWorkflowRuns enumerates the repository's workflow runs in the given
// provider status, paginating transparently.
func (c *Client) ListWorkflowRuns(ctx context.Context, status string) ([]WorkflowRun, error) {
	var all []WorkflowRun
	opts := &gogithub.ListWorkflowRunsOptions{
		Status:      status,
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	}

	for {
		runs, resp, err := c.rest.Actions.ListRepositoryWorkflowRuns(
			ctx, c.coord.Owner, c.coord.Repo, opts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list workflow runs: %w", err)
		}
		for _, run := range runs.WorkflowRuns {
			all = append(all, runFromGitHub(run))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListJobs enumerates a workflow run's jobs in the given provider status,
// paginating transparently. The jobs endpoint has no status filter, so
// filtering happens client-side.
func (c *Client) ListJobs(ctx context.Context, runID int64, status string) ([]Job, error) {
	var all []Job
	opts := &gogithub.ListWorkflowJobsOptions{
		Filter:      "all",
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	}

	for {
		jobs, resp, err := c.rest.Actions.ListWorkflowJobs(
			ctx, c.coord.Owner, c.coord.Repo, runID, opts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list workflow jobs for run %d: %w", runID, err)
		}
		for _, job := range jobs.Jobs {
			if status != "" && job.GetStatus() != status {
				continue
			}
			all = append(all, jobFromGitHub(job))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// RerunWorkflow requests a re-run of the given workflow run.
func (c *Client) RerunWorkflow(ctx context.Context, runID int64) error {
	_, err := c.rest.Actions.RerunWorkflowByID(ctx, c.coord.Owner, c.coord.Repo, runID)
	if err != nil {
		return fmt.Errorf("failed to rerun workflow: %w", err)
	}
	return nil
}

// PullRequestNodeID resolves the opaque GraphQL identifier of a pull request
// from its number.
func (c *Client) PullRequestNodeID(ctx context.Context, number int) (string, error) {
	pr, _, err := c.rest.PullRequests.Get(ctx, c.coord.Owner, c.coord.Repo, number)
	if err != nil {
		return "", fmt.Errorf("failed to resolve pull request node id: %w", err)
	}
	return pr.GetNodeID(), nil
}

// EnableAutoMerge invokes the enablePullRequestAutoMerge GraphQL mutation.
// The merge completes once all required conditions are satisfied.
func (c *Client) EnableAutoMerge(ctx context.Context, nodeID, method, headline, body string) error {
	var mutation struct {
		EnablePullRequestAutoMerge struct {
			PullRequest struct {
				Number githubv4.Int
			}
		} `graphql:"enablePullRequestAutoMerge(input: $input)"`
	}

	mergeMethod := githubv4.PullRequestMergeMethod(method)
	input := githubv4.EnablePullRequestAutoMergeInput{
		PullRequestID: githubv4.ID(nodeID),
		MergeMethod:   &mergeMethod,
	}
	if headline != "" {
		input.CommitHeadline = githubv4.NewString(githubv4.String(headline))
	}
	if body != "" {
		input.CommitBody = githubv4.NewString(githubv4.String(body))
	}

	if err := c.graphql.Mutate(ctx, &mutation, input, nil); err != nil {
		return fmt.Errorf("failed to enable auto-merge: %w", err)
	}
	return nil
}

// MergePullRequest performs an immediate synchronous merge of a pull
// request. headline and body become the merge commit message.
func (c *Client) MergePullRequest(ctx context.Context, number int, method, headline, body string) error {
	_, _, err := c.rest.PullRequests.Merge(
		ctx, c.coord.Owner, c.coord.Repo, number, body,
		&gogithub.PullRequestOptions{
			MergeMethod: method,
			CommitTitle: headline,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to merge pull request: %w", err)
	}
	return nil
}
