package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/ci-driver/internal/identity"
	"github.com/sgaunet/ci-driver/pkg/github"
)

func TestClient_GetPullRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/pulls/42",
		func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{
				"number": 42,
				"html_url": "https://github.com/acme/widgets/pull/42",
				"head": {"ref": "refs/heads/feature/login"},
				"base": {"ref": "main"}
			}`)
		})

	client := newTestClient(t, identity.Coordinate{Owner: "acme", Repo: "widgets"}, mux)
	pr, err := client.GetPullRequest(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "https://github.com/acme/widgets/pull/42", pr.URL)
	assert.Equal(t, "feature/login", pr.Source)
	assert.Equal(t, "main", pr.Target)
}

func TestClient_CreateCommitComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/commits/abc123/comments",
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			payload, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(payload), "build passed")
			fmt.Fprint(w, `{"id": 9001, "body": "build passed"}`)
		})

	client := newTestClient(t, identity.Coordinate{Owner: "acme", Repo: "widgets"}, mux)
	comment, err := client.CreateCommitComment(context.Background(), "abc123", "build passed")
	require.NoError(t, err)
	assert.Equal(t, int64(9001), comment.ID)
	assert.Equal(t, "build passed", comment.Body)
}

func TestClient_CreateCheck(t *testing.T) {
	startedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("without conclusion the check is in progress", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widgets/check-runs",
			func(w http.ResponseWriter, r *http.Request) {
				var payload map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				assert.Equal(t, "in_progress", payload["status"])
				assert.NotContains(t, payload, "conclusion")
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"id": 1}`)
			})

		client := newTestClient(t, identity.Coordinate{Owner: "acme", Repo: "widgets"}, mux)
		err := client.CreateCheck(context.Background(), github.CheckOptions{
			HeadSHA:   "abc123",
			Name:      "lint",
			Title:     "Lint",
			Summary:   "running",
			StartedAt: startedAt,
		})
		require.NoError(t, err)
	})

	t.Run("conclusion completes the check", func(t *testing.T) {
		completedAt := startedAt.Add(3 * time.Minute)
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widgets/check-runs",
			func(w http.ResponseWriter, r *http.Request) {
				var payload map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				assert.Equal(t, "completed", payload["status"])
				assert.Equal(t, "success", payload["conclusion"])
				assert.Equal(t, "2024-01-01T00:00:00Z", payload["started_at"])
				assert.Equal(t, "2024-01-01T00:03:00Z", payload["completed_at"])
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"id": 1}`)
			})

		client := newTestClient(t, identity.Coordinate{Owner: "acme", Repo: "widgets"}, mux)
		err := client.CreateCheck(context.Background(), github.CheckOptions{
			HeadSHA:     "abc123",
			Name:        "lint",
			Title:       "Lint",
			Summary:     "clean",
			Conclusion:  "success",
			StartedAt:   startedAt,
			CompletedAt: completedAt,
		})
		require.NoError(t, err)
	})

	t.Run("missing completion time falls back to the start time", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widgets/check-runs",
			func(w http.ResponseWriter, r *http.Request) {
				var payload map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				assert.Equal(t, "2024-01-01T00:00:00Z", payload["completed_at"])
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"id": 1}`)
			})

		client := newTestClient(t, identity.Coordinate{Owner: "acme", Repo: "widgets"}, mux)
		err := client.CreateCheck(context.Background(), github.CheckOptions{
			HeadSHA:    "abc123",
			Name:       "lint",
			Title:      "Lint",
			Summary:    "clean",
			Conclusion: "success",
			StartedAt:  startedAt,
		})
		require.NoError(t, err)
	})
}

func TestClient_PullRequestsForCommit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/commits/abc123/pulls",
		func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[{"number": 42, "head": {"ref": "feature"}, "base": {"ref": "main"}}]`)
		})

	client := newTestClient(t, identity.Coordinate{Owner: "acme", Repo: "widgets"}, mux)
	prs, err := client.PullRequestsForCommit(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, 42, prs[0].Number)
	assert.Equal(t, "feature", prs[0].Source)
}
