package github

import (
	"context"
	"errors"
	"fmt"

	gogithub "github.com/google/go-github/v69/github"
)

// CreateCommitComment creates a comment on a commit.
func (c *Client) CreateCommitComment(ctx context.Context, sha, body string) (*Comment, error) {
	comment, _, err := c.rest.Repositories.CreateComment(
		ctx, c.coord.Owner, c.coord.Repo, sha,
		&gogithub.RepositoryComment{Body: gogithub.Ptr(body)},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create commit comment: %w", err)
	}

	result := commentFromRepoComment(comment)
	return &result, nil
}

// UpdateCommitComment replaces the body of an existing commit comment.
func (c *Client) UpdateCommitComment(ctx context.Context, id int64, body string) (*Comment, error) {
	comment, _, err := c.rest.Repositories.UpdateComment(
		ctx, c.coord.Owner, c.coord.Repo, id,
		&gogithub.RepositoryComment{Body: gogithub.Ptr(body)},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update commit comment: %w", err)
	}

	result := commentFromRepoComment(comment)
	return &result, nil
}

// ListCommitComments returns all comments on a commit, paginating
// transparently.
func (c *Client) ListCommitComments(ctx context.Context, sha string) ([]Comment, error) {
	var all []Comment
	opts := &gogithub.ListOptions{PerPage: perPage}

	for {
		comments, resp, err := c.rest.Repositories.ListCommitComments(
			ctx, c.coord.Owner, c.coord.Repo, sha, opts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list commit comments: %w", err)
		}
		for _, comment := range comments {
			all = append(all, commentFromRepoComment(comment))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// CreatePullRequest creates a new pull request.
func (c *Client) CreatePullRequest(ctx context.Context, source, target, title, body string) (*PullRequest, error) {
	pr, _, err := c.rest.PullRequests.Create(ctx, c.coord.Owner, c.coord.Repo, &gogithub.NewPullRequest{
		Title: gogithub.Ptr(title),
		Head:  gogithub.Ptr(NormalizeRef(source)),
		Base:  gogithub.Ptr(NormalizeRef(target)),
		Body:  gogithub.Ptr(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	result := pullRequestFromGitHub(pr)
	return &result, nil
}

// ListPullRequests returns the repository's pull requests in the given
// state ("open", "closed" or "all"), paginating transparently.
func (c *Client) ListPullRequests(ctx context.Context, state string) ([]PullRequest, error) {
	var all []PullRequest
	opts := &gogithub.PullRequestListOptions{
		State:       state,
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	}

	for {
		prs, resp, err := c.rest.PullRequests.List(ctx, c.coord.Owner, c.coord.Repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}
		for _, pr := range prs {
			all = append(all, pullRequestFromGitHub(pr))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// PullRequestsForCommit returns the pull requests associated with a commit.
func (c *Client) PullRequestsForCommit(ctx context.Context, sha string) ([]PullRequest, error) {
	prs, _, err := c.rest.PullRequests.ListPullRequestsWithCommit(
		ctx, c.coord.Owner, c.coord.Repo, sha,
		&gogithub.ListOptions{PerPage: perPage},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for commit: %w", err)
	}

	result := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, pullRequestFromGitHub(pr))
	}
	return result, nil
}

// GetPullRequest fetches a pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*PullRequest, error) {
	pr, _, err := c.rest.PullRequests.Get(ctx, c.coord.Owner, c.coord.Repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}

	result := pullRequestFromGitHub(pr)
	return &result, nil
}

// CreatePullRequestComment creates a comment on a pull request.
func (c *Client) CreatePullRequestComment(ctx context.Context, number int, body string) (*Comment, error) {
	comment, _, err := c.rest.Issues.CreateComment(
		ctx, c.coord.Owner, c.coord.Repo, number,
		&gogithub.IssueComment{Body: gogithub.Ptr(body)},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request comment: %w", err)
	}

	result := commentFromIssueComment(comment)
	return &result, nil
}

// UpdatePullRequestComment replaces the body of a pull request comment.
func (c *Client) UpdatePullRequestComment(ctx context.Context, id int64, body string) (*Comment, error) {
	comment, _, err := c.rest.Issues.EditComment(
		ctx, c.coord.Owner, c.coord.Repo, id,
		&gogithub.IssueComment{Body: gogithub.Ptr(body)},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update pull request comment: %w", err)
	}

	result := commentFromIssueComment(comment)
	return &result, nil
}

// ListPullRequestComments returns all comments on a pull request,
// paginating transparently.
func (c *Client) ListPullRequestComments(ctx context.Context, number int) ([]Comment, error) {
	var all []Comment
	opts := &gogithub.IssueListCommentsOptions{
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	}

	for {
		comments, resp, err := c.rest.Issues.ListComments(
			ctx, c.coord.Owner, c.coord.Repo, number, opts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull request comments: %w", err)
		}
		for _, comment := range comments {
			all = append(all, commentFromIssueComment(comment))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// CreateCheck creates a check run with title, summary, conclusion, status
// and timestamps.
func (c *Client) CreateCheck(ctx context.Context, opts CheckOptions) error {
	status := statusInProgress
	completedAt := gogithub.Timestamp{}
	if opts.Conclusion != "" {
		status = statusCompleted
		completedAt = gogithub.Timestamp{Time: opts.CompletedAt}
		if opts.CompletedAt.IsZero() {
			completedAt = gogithub.Timestamp{Time: opts.StartedAt}
		}
	}

	createOpts := gogithub.CreateCheckRunOptions{
		Name:      opts.Name,
		HeadSHA:   opts.HeadSHA,
		Status:    gogithub.Ptr(status),
		StartedAt: &gogithub.Timestamp{Time: opts.StartedAt},
		Output: &gogithub.CheckRunOutput{
			Title:   gogithub.Ptr(opts.Title),
			Summary: gogithub.Ptr(opts.Summary),
		},
	}
	if opts.Conclusion != "" {
		createOpts.Conclusion = gogithub.Ptr(opts.Conclusion)
		createOpts.CompletedAt = &completedAt
	}

	_, _, err := c.rest.Checks.CreateCheckRun(ctx, c.coord.Owner, c.coord.Repo, createOpts)
	if err != nil {
		return fmt.Errorf("failed to create check run: %w", err)
	}
	return nil
}

// BranchProtected reports whether branch protection is enabled for branch.
func (c *Client) BranchProtected(ctx context.Context, branch string) (bool, error) {
	_, _, err := c.rest.Repositories.GetBranchProtection(
		ctx, c.coord.Owner, c.coord.Repo, NormalizeRef(branch),
	)
	if err != nil {
		if errors.Is(err, gogithub.ErrBranchNotProtected) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get branch protection: %w", err)
	}
	return true, nil
}
