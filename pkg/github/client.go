// Package github implements the GitHub variant of the provider driver:
// a typed client over the REST and GraphQL surfaces plus the runner
// lifecycle, job correlation, merge orchestration and re-run coordination
// components built on top of it.
package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sgaunet/bullets"
	"golang.org/x/oauth2"

	gogithub "github.com/google/go-github/v69/github"
	"github.com/shurcooL/githubv4"

	"github.com/sgaunet/ci-driver/internal/cicontext"
	"github.com/sgaunet/ci-driver/internal/identity"
	"github.com/sgaunet/ci-driver/internal/logger"
)

// NewClient creates a new GitHub client authenticated with token. The
// returned client retries throttled requests transparently (bounded, see
// throttle.go) and logs nothing until a logger is injected.
func NewClient(token string, ci cicontext.Context) (*Client, error) {
	if token == "" {
		return nil, errTokenRequired
	}

	base := newThrottledHTTPClient()
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		rest:    gogithub.NewClient(tc),
		graphql: githubv4.NewClient(tc),
		ci:      ci,
		log:     logger.NoLogger(),
	}, nil
}

// SetBaseURL points the REST client at a different API endpoint, for
// enterprise installs and tests. The URL must end with a trailing slash.
func (c *Client) SetBaseURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	c.rest.BaseURL = u
	return nil
}

// SetLogger injects the logger used for debug output and warnings.
func (c *Client) SetLogger(log *bullets.Logger) {
	c.log = log
}

// SetCoordinate sets the owner/repository coordinate all subsequent
// operations target. An organization coordinate (empty repo) switches the
// runner and registration-token operations to their org-scoped endpoints.
func (c *Client) SetCoordinate(coord identity.Coordinate) {
	c.coord = coord
	c.log.Debug("GitHub coordinate set: " + coord.Slug())
}

// Coordinate returns the currently resolved coordinate.
func (c *Client) Coordinate() identity.Coordinate {
	return c.coord
}

// WarnProvenance emits advisory warnings about the execution context:
// running outside CI, or a supplied credential that differs from the one
// ambient to the CI run. Neither condition aborts anything.
func (c *Client) WarnProvenance(token string) {
	if !c.ci.InCI() {
		c.log.Warn("Not running inside a CI workflow; ambient context is unavailable")
		return
	}
	if c.ci.Token != "" && token != c.ci.Token {
		c.log.Warn("Supplied credential differs from the one ambient to this CI run")
	}
}
