// Package fixtures provides common test data structures for testing.
package fixtures

import (
	"time"

	ghpkg "github.com/sgaunet/ci-driver/pkg/github"
)

// Test constants for GitHub fixtures.
const (
	TestRunID    = int64(100)
	TestJobID    = int64(55)
	TestRunnerID = int64(7)
)

// OnlineRunner returns a busy online runner.
func OnlineRunner() ghpkg.Runner {
	return ghpkg.Runner{
		ID:     TestRunnerID,
		Name:   "ci-runner-1",
		Labels: []string{"self-hosted", "linux", "x64"},
		Online: true,
		Busy:   true,
	}
}

// OfflineRunner returns an idle offline runner.
func OfflineRunner() ghpkg.Runner {
	return ghpkg.Runner{
		ID:     TestRunnerID + 1,
		Name:   "ci-runner-2",
		Labels: []string{"self-hosted", "linux"},
		Online: false,
		Busy:   false,
	}
}

// RunnerSet returns one online and one offline runner.
func RunnerSet() []ghpkg.Runner {
	return []ghpkg.Runner{OnlineRunner(), OfflineRunner()}
}

// InProgressRun returns a workflow run that is currently executing.
func InProgressRun() *ghpkg.WorkflowRun {
	return &ghpkg.WorkflowRun{ID: TestRunID, Status: "in_progress"}
}

// CompletedRun returns a workflow run that has finished.
func CompletedRun() *ghpkg.WorkflowRun {
	return &ghpkg.WorkflowRun{ID: TestRunID, Status: "completed"}
}

// RunningJob returns a job executing on the online runner.
func RunningJob() *ghpkg.Job {
	return &ghpkg.Job{
		ID:       TestJobID,
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RunID:    TestRunID,
		RunnerID: TestRunnerID,
		Status:   "in_progress",
	}
}
