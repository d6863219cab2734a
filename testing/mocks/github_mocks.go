// Package mocks provides call-tracking mock implementations of the driver
// component interfaces for black-box testing.
package mocks

import (
	"context"
	"sync"

	ghpkg "github.com/sgaunet/ci-driver/pkg/github"
)

// MethodCall represents a tracked method call with its parameters.
type MethodCall struct {
	Method string
	Args   map[string]any
}

// callRecorder tracks method calls; embedded by every mock in this package.
type callRecorder struct {
	mu    sync.Mutex
	calls []MethodCall
}

func (r *callRecorder) trackCall(method string, args map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, MethodCall{Method: method, Args: args})
}

// GetCallCount returns the number of calls to the given method.
func (r *callRecorder) GetCallCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// GetLastCall returns the most recent call to the given method, or nil.
func (r *callRecorder) GetLastCall(method string) *MethodCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].Method == method {
			call := r.calls[i]
			return &call
		}
	}
	return nil
}

// ActionsAPI is a mock implementation of github.ActionsAPI.
type ActionsAPI struct {
	callRecorder

	// Configurable responses
	GetWorkflowRunResponse   *ghpkg.WorkflowRun
	GetWorkflowRunError      error
	GetJobResponse           *ghpkg.Job
	GetJobError              error
	ListWorkflowRunsResponse []ghpkg.WorkflowRun
	ListWorkflowRunsError    error
	JobsByRun                map[int64][]ghpkg.Job
	ListJobsError            error
	RerunWorkflowError       error
}

// NewActionsAPI creates a new mock Actions API.
func NewActionsAPI() *ActionsAPI {
	return &ActionsAPI{JobsByRun: make(map[int64][]ghpkg.Job)}
}

// GetWorkflowRun implements github.ActionsAPI.
func (m *ActionsAPI) GetWorkflowRun(_ context.Context, runID int64) (*ghpkg.WorkflowRun, error) {
	m.trackCall("GetWorkflowRun", map[string]any{"runID": runID})
	return m.GetWorkflowRunResponse, m.GetWorkflowRunError
}

// GetJob implements github.ActionsAPI.
func (m *ActionsAPI) GetJob(_ context.Context, jobID int64) (*ghpkg.Job, error) {
	m.trackCall("GetJob", map[string]any{"jobID": jobID})
	return m.GetJobResponse, m.GetJobError
}

// ListWorkflowRuns implements github.ActionsAPI.
func (m *ActionsAPI) ListWorkflowRuns(_ context.Context, status string) ([]ghpkg.WorkflowRun, error) {
	m.trackCall("ListWorkflowRuns", map[string]any{"status": status})
	return m.ListWorkflowRunsResponse, m.ListWorkflowRunsError
}

// ListJobs implements github.ActionsAPI.
func (m *ActionsAPI) ListJobs(_ context.Context, runID int64, status string) ([]ghpkg.Job, error) {
	m.trackCall("ListJobs", map[string]any{"runID": runID, "status": status})
	if m.ListJobsError != nil {
		return nil, m.ListJobsError
	}
	return m.JobsByRun[runID], nil
}

// RerunWorkflow implements github.ActionsAPI.
func (m *ActionsAPI) RerunWorkflow(_ context.Context, runID int64) error {
	m.trackCall("RerunWorkflow", map[string]any{"runID": runID})
	return m.RerunWorkflowError
}

// MergeAPI is a mock implementation of github.MergeAPI.
type MergeAPI struct {
	callRecorder

	// Configurable responses
	PullRequestNodeIDResponse string
	PullRequestNodeIDError    error
	EnableAutoMergeError      error
	MergePullRequestError     error
	BranchProtectedResponse   bool
	BranchProtectedError      error
}

// NewMergeAPI creates a new mock merge API.
func NewMergeAPI() *MergeAPI {
	return &MergeAPI{PullRequestNodeIDResponse: "PR_node"}
}

// PullRequestNodeID implements github.MergeAPI.
func (m *MergeAPI) PullRequestNodeID(_ context.Context, number int) (string, error) {
	m.trackCall("PullRequestNodeID", map[string]any{"number": number})
	return m.PullRequestNodeIDResponse, m.PullRequestNodeIDError
}

// EnableAutoMerge implements github.MergeAPI.
func (m *MergeAPI) EnableAutoMerge(_ context.Context, nodeID, method, headline, body string) error {
	m.trackCall("EnableAutoMerge", map[string]any{
		"nodeID":   nodeID,
		"method":   method,
		"headline": headline,
		"body":     body,
	})
	return m.EnableAutoMergeError
}

// MergePullRequest implements github.MergeAPI.
func (m *MergeAPI) MergePullRequest(_ context.Context, number int, method, headline, body string) error {
	m.trackCall("MergePullRequest", map[string]any{
		"number":   number,
		"method":   method,
		"headline": headline,
		"body":     body,
	})
	return m.MergePullRequestError
}

// BranchProtected implements github.MergeAPI.
func (m *MergeAPI) BranchProtected(_ context.Context, branch string) (bool, error) {
	m.trackCall("BranchProtected", map[string]any{"branch": branch})
	return m.BranchProtectedResponse, m.BranchProtectedError
}

// RunnerAPI is a mock implementation of github.RunnerAPI.
type RunnerAPI struct {
	callRecorder

	// Configurable responses
	CreateRegistrationTokenResponse string
	CreateRegistrationTokenError    error
	ListRunnersResponse             []ghpkg.Runner
	ListRunnersError                error
	GetRunnerResponse               *ghpkg.Runner
	GetRunnerError                  error
	RemoveRunnerError               error
	LatestRunnerVersionResponse     string
	LatestRunnerVersionError        error
}

// NewRunnerAPI creates a new mock runner API.
func NewRunnerAPI() *RunnerAPI {
	return &RunnerAPI{
		CreateRegistrationTokenResponse: "AABBCC",
		LatestRunnerVersionResponse:     "v2.300.0",
	}
}

// CreateRegistrationToken implements github.RunnerAPI.
func (m *RunnerAPI) CreateRegistrationToken(_ context.Context) (string, error) {
	m.trackCall("CreateRegistrationToken", map[string]any{})
	return m.CreateRegistrationTokenResponse, m.CreateRegistrationTokenError
}

// ListRunners implements github.RunnerAPI.
func (m *RunnerAPI) ListRunners(_ context.Context) ([]ghpkg.Runner, error) {
	m.trackCall("ListRunners", map[string]any{})
	return m.ListRunnersResponse, m.ListRunnersError
}

// GetRunner implements github.RunnerAPI.
func (m *RunnerAPI) GetRunner(_ context.Context, id int64) (*ghpkg.Runner, error) {
	m.trackCall("GetRunner", map[string]any{"id": id})
	return m.GetRunnerResponse, m.GetRunnerError
}

// RemoveRunner implements github.RunnerAPI.
func (m *RunnerAPI) RemoveRunner(_ context.Context, id int64) error {
	m.trackCall("RemoveRunner", map[string]any{"id": id})
	return m.RemoveRunnerError
}

// LatestRunnerVersion implements github.RunnerAPI.
func (m *RunnerAPI) LatestRunnerVersion(_ context.Context) (string, error) {
	m.trackCall("LatestRunnerVersion", map[string]any{})
	return m.LatestRunnerVersionResponse, m.LatestRunnerVersionError
}

// CommandRunner is a mock implementation of github.CommandRunner.
type CommandRunner struct {
	callRecorder

	RunError           error
	StartDetachedPID   int
	StartDetachedError error
}

// NewCommandRunner creates a new mock command runner.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{StartDetachedPID: 4242}
}

// Run implements github.CommandRunner.
func (m *CommandRunner) Run(_ context.Context, dir, name string, args ...string) error {
	m.trackCall("Run", map[string]any{"dir": dir, "name": name, "args": args})
	return m.RunError
}

// StartDetached implements github.CommandRunner.
func (m *CommandRunner) StartDetached(dir, name string, args ...string) (int, error) {
	m.trackCall("StartDetached", map[string]any{"dir": dir, "name": name, "args": args})
	return m.StartDetachedPID, m.StartDetachedError
}

// Interface satisfaction checks.
var (
	_ ghpkg.ActionsAPI    = (*ActionsAPI)(nil)
	_ ghpkg.MergeAPI      = (*MergeAPI)(nil)
	_ ghpkg.RunnerAPI     = (*RunnerAPI)(nil)
	_ ghpkg.CommandRunner = (*CommandRunner)(nil)
)
