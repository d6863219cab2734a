package github_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/ci-driver/internal/logger"
	"github.com/sgaunet/ci-driver/pkg/github"
	"github.com/sgaunet/ci-driver/testing/mocks"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestCorrelator_ByNearestTime(t *testing.T) {
	t.Run("picks the job closest to the target time", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.ListWorkflowRunsResponse = []github.WorkflowRun{{ID: 10, Status: "in_progress"}}
		api.JobsByRun[10] = []github.Job{
			{ID: 1, RunID: 10, Date: mustTime(t, "2024-01-01T00:00:00Z")},
			{ID: 2, RunID: 10, Date: mustTime(t, "2024-01-01T00:10:00Z")},
		}

		correlator := github.NewCorrelator(api, logger.NoLogger())
		job, err := correlator.ByNearestTime(context.Background(), "running", mustTime(t, "2024-01-01T00:04:00Z"))
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, int64(1), job.ID)
	})

	t.Run("target after all candidates", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.ListWorkflowRunsResponse = []github.WorkflowRun{{ID: 10}}
		api.JobsByRun[10] = []github.Job{
			{ID: 1, RunID: 10, Date: mustTime(t, "2024-01-01T00:00:00Z")},
			{ID: 2, RunID: 10, Date: mustTime(t, "2024-01-01T00:10:00Z")},
		}

		correlator := github.NewCorrelator(api, logger.NoLogger())
		job, err := correlator.ByNearestTime(context.Background(), "running", mustTime(t, "2024-01-01T01:00:00Z"))
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, int64(2), job.ID)
	})

	t.Run("ties break toward the earlier run", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.ListWorkflowRunsResponse = []github.WorkflowRun{{ID: 10}, {ID: 20}}
		// Both jobs are exactly five minutes from the target.
		api.JobsByRun[10] = []github.Job{{ID: 1, RunID: 10, Date: mustTime(t, "2024-01-01T00:00:00Z")}}
		api.JobsByRun[20] = []github.Job{{ID: 2, RunID: 20, Date: mustTime(t, "2024-01-01T00:10:00Z")}}

		correlator := github.NewCorrelator(api, logger.NoLogger())
		job, err := correlator.ByNearestTime(context.Background(), "running", mustTime(t, "2024-01-01T00:05:00Z"))
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, int64(1), job.ID)
	})

	t.Run("no candidates yields nil without error", func(t *testing.T) {
		api := mocks.NewActionsAPI()

		correlator := github.NewCorrelator(api, logger.NoLogger())
		job, err := correlator.ByNearestTime(context.Background(), "running", mustTime(t, "2024-01-01T00:00:00Z"))
		require.NoError(t, err)
		assert.Nil(t, job)
	})
}

func TestCorrelator_ByRunner(t *testing.T) {
	t.Run("returns the first job on the runner", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.ListWorkflowRunsResponse = []github.WorkflowRun{{ID: 10}}
		api.JobsByRun[10] = []github.Job{
			{ID: 1, RunID: 10, RunnerID: 3},
			{ID: 2, RunID: 10, RunnerID: 7},
			{ID: 3, RunID: 10, RunnerID: 7},
		}

		correlator := github.NewCorrelator(api, logger.NoLogger())
		job, err := correlator.ByRunner(context.Background(), "running", 7)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, int64(2), job.ID)
	})

	t.Run("missing runner yields nil without error", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.ListWorkflowRunsResponse = []github.WorkflowRun{{ID: 10}}
		api.JobsByRun[10] = []github.Job{{ID: 1, RunID: 10, RunnerID: 3}}

		correlator := github.NewCorrelator(api, logger.NoLogger())
		job, err := correlator.ByRunner(context.Background(), "running", 99)
		require.NoError(t, err)
		assert.Nil(t, job)
	})
}

func TestCorrelator_StatusTranslation(t *testing.T) {
	t.Run("running becomes in_progress", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.ListWorkflowRunsResponse = []github.WorkflowRun{{ID: 10}}

		correlator := github.NewCorrelator(api, logger.NoLogger())
		_, err := correlator.ByRunner(context.Background(), "running", 7)
		require.NoError(t, err)

		call := api.GetLastCall("ListWorkflowRuns")
		require.NotNil(t, call)
		assert.Equal(t, "in_progress", call.Args["status"])

		call = api.GetLastCall("ListJobs")
		require.NotNil(t, call)
		assert.Equal(t, "in_progress", call.Args["status"])
	})

	t.Run("other statuses pass through", func(t *testing.T) {
		api := mocks.NewActionsAPI()

		correlator := github.NewCorrelator(api, logger.NoLogger())
		_, err := correlator.ByRunner(context.Background(), "queued", 7)
		require.NoError(t, err)

		call := api.GetLastCall("ListWorkflowRuns")
		require.NotNil(t, call)
		assert.Equal(t, "queued", call.Args["status"])
	})
}

func TestCorrelator_Errors(t *testing.T) {
	t.Run("run listing failure propagates", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.ListWorkflowRunsError = errors.New("api error")

		correlator := github.NewCorrelator(api, logger.NoLogger())
		_, err := correlator.ByRunner(context.Background(), "running", 7)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to gather candidate runs")
	})

	t.Run("job listing failure propagates", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.ListWorkflowRunsResponse = []github.WorkflowRun{{ID: 10}}
		api.ListJobsError = errors.New("api error")

		correlator := github.NewCorrelator(api, logger.NoLogger())
		_, err := correlator.ByNearestTime(context.Background(), "running", time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to gather jobs for run 10")
	})
}
