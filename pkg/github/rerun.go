package github

import (
	"context"
	"fmt"

	"github.com/sgaunet/bullets"

	"github.com/sgaunet/ci-driver/internal/security"
)

// RerunCoordinator re-triggers workflow runs, guarded against starting a
// duplicate of a run that is already executing.
type RerunCoordinator struct {
	api ActionsAPI
	log *bullets.Logger
}

// NewRerunCoordinator creates a re-run coordinator over the given API slice.
func NewRerunCoordinator(api ActionsAPI, log *bullets.Logger) *RerunCoordinator {
	return &RerunCoordinator{api: api, log: log}
}

// Rerun requests a re-run of the given workflow run unless it is already in
// progress, in which case it is a no-op. Failures of the re-run request
// propagate to the caller.
func (r *RerunCoordinator) Rerun(ctx context.Context, runID int64) error {
	run, err := r.api.GetWorkflowRun(ctx, runID)
	if err != nil {
		return err
	}

	if run.Status == statusInProgress {
		r.log.Debug(fmt.Sprintf("Run %d is already in progress, skipping rerun", runID))
		return nil
	}

	return r.api.RerunWorkflow(ctx, runID)
}

// RestartByJob resolves the job to its owning run and applies the same
// "not running → rerun" guard. The re-run request itself is best-effort:
// its failure is recorded in the result instead of raised, so this call
// never fails the caller's flow for that reason. Resolution failures still
// propagate.
func (r *RerunCoordinator) RestartByJob(ctx context.Context, jobID int64) (RestartResult, error) {
	job, err := r.api.GetJob(ctx, jobID)
	if err != nil {
		return RestartResult{}, err
	}

	run, err := r.api.GetWorkflowRun(ctx, job.RunID)
	if err != nil {
		return RestartResult{}, err
	}

	if run.Status == statusInProgress {
		r.log.Debug(fmt.Sprintf("Run %d owning job %d is already in progress, skipping rerun", run.ID, jobID))
		return RestartResult{}, nil
	}

	if err := r.api.RerunWorkflow(ctx, run.ID); err != nil {
		r.log.Warn(fmt.Sprintf("Best-effort rerun of run %d failed: %s",
			run.ID, security.SanitizeString(err.Error())))
		return RestartResult{Attempted: true, Err: err}, nil
	}
	return RestartResult{Attempted: true}, nil
}
