package github_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/ci-driver/internal/logger"
	"github.com/sgaunet/ci-driver/pkg/github"
	"github.com/sgaunet/ci-driver/testing/fixtures"
	"github.com/sgaunet/ci-driver/testing/mocks"
)

func TestRerunCoordinator_Rerun(t *testing.T) {
	t.Run("re-triggers a completed run", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.GetWorkflowRunResponse = fixtures.CompletedRun()
		coordinator := github.NewRerunCoordinator(api, logger.NoLogger())

		err := coordinator.Rerun(context.Background(), 100)
		require.NoError(t, err)

		assert.Equal(t, 1, api.GetCallCount("RerunWorkflow"))
		call := api.GetLastCall("RerunWorkflow")
		require.NotNil(t, call)
		assert.Equal(t, int64(100), call.Args["runID"])
	})

	t.Run("run already in progress is a no-op", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.GetWorkflowRunResponse = fixtures.InProgressRun()
		coordinator := github.NewRerunCoordinator(api, logger.NoLogger())

		err := coordinator.Rerun(context.Background(), 100)
		require.NoError(t, err)
		assert.Equal(t, 0, api.GetCallCount("RerunWorkflow"))
	})

	t.Run("run lookup failure propagates", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.GetWorkflowRunError = errors.New("404 not found")
		coordinator := github.NewRerunCoordinator(api, logger.NoLogger())

		err := coordinator.Rerun(context.Background(), 100)
		require.Error(t, err)
		assert.Equal(t, 0, api.GetCallCount("RerunWorkflow"))
	})

	t.Run("re-run request failure propagates", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.GetWorkflowRunResponse = fixtures.CompletedRun()
		api.RerunWorkflowError = errors.New("403 forbidden")
		coordinator := github.NewRerunCoordinator(api, logger.NoLogger())

		err := coordinator.Rerun(context.Background(), 100)
		require.Error(t, err)
	})
}

func TestRerunCoordinator_RestartByJob(t *testing.T) {
	t.Run("re-triggers the owning run", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.GetJobResponse = fixtures.RunningJob()
		api.GetWorkflowRunResponse = fixtures.CompletedRun()
		coordinator := github.NewRerunCoordinator(api, logger.NoLogger())

		result, err := coordinator.RestartByJob(context.Background(), 55)
		require.NoError(t, err)
		assert.True(t, result.Attempted)
		assert.NoError(t, result.Err)

		call := api.GetLastCall("RerunWorkflow")
		require.NotNil(t, call)
		assert.Equal(t, int64(100), call.Args["runID"])
	})

	t.Run("owning run already in progress is a no-op", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.GetJobResponse = fixtures.RunningJob()
		api.GetWorkflowRunResponse = fixtures.InProgressRun()
		coordinator := github.NewRerunCoordinator(api, logger.NoLogger())

		result, err := coordinator.RestartByJob(context.Background(), 55)
		require.NoError(t, err)
		assert.False(t, result.Attempted)
		assert.Equal(t, 0, api.GetCallCount("RerunWorkflow"))
	})

	t.Run("re-run failure is recorded, not raised", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.GetJobResponse = fixtures.RunningJob()
		api.GetWorkflowRunResponse = fixtures.CompletedRun()
		api.RerunWorkflowError = errors.New("403 forbidden")
		coordinator := github.NewRerunCoordinator(api, logger.NoLogger())

		result, err := coordinator.RestartByJob(context.Background(), 55)
		require.NoError(t, err)
		assert.True(t, result.Attempted)
		require.Error(t, result.Err)
		assert.Contains(t, result.Err.Error(), "403 forbidden")
	})

	t.Run("job lookup failure propagates", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.GetJobError = errors.New("404 not found")
		coordinator := github.NewRerunCoordinator(api, logger.NoLogger())

		_, err := coordinator.RestartByJob(context.Background(), 55)
		require.Error(t, err)
		assert.Equal(t, 0, api.GetCallCount("GetWorkflowRun"))
	})

	t.Run("run lookup failure propagates", func(t *testing.T) {
		api := mocks.NewActionsAPI()
		api.GetJobResponse = fixtures.RunningJob()
		api.GetWorkflowRunError = errors.New("404 not found")
		coordinator := github.NewRerunCoordinator(api, logger.NoLogger())

		_, err := coordinator.RestartByJob(context.Background(), 55)
		require.Error(t, err)
		assert.Equal(t, 0, api.GetCallCount("RerunWorkflow"))
	})
}
