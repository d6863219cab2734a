package github

import (
	"context"
	"fmt"
	"time"

	"github.com/sgaunet/bullets"
	"golang.org/x/sync/errgroup"
)

// Correlator resolves which workflow job runs on which runner when the only
// available signal is a runner identifier or approximate timing.
type Correlator struct {
	api ActionsAPI
	log *bullets.Logger
}

// NewCorrelator creates a job correlator over the given API slice.
func NewCorrelator(api ActionsAPI, log *bullets.Logger) *Correlator {
	return &Correlator{api: api, log: log}
}

// ByRunner returns the first known job in the given human status whose
// runner identifier equals runnerID. A missing match yields (nil, nil); it
// is an expected outcome, not an error.
func (c *Correlator) ByRunner(ctx context.Context, status string, runnerID int64) (*Job, error) {
	jobs, err := c.gather(ctx, status)
	if err != nil {
		return nil, err
	}
	return jobByRunner(jobs, runnerID), nil
}

// ByNearestTime returns the known job in the given human status whose start
// time is closest to target. Ties are broken by encounter order: the first
// candidate with the minimal difference wins. Candidate order is stable
// because gather preserves run order across the concurrent per-run fetches.
func (c *Correlator) ByNearestTime(ctx context.Context, status string, target time.Time) (*Job, error) {
	jobs, err := c.gather(ctx, status)
	if err != nil {
		return nil, err
	}
	return nearestJob(jobs, target), nil
}

// gather enumerates workflow runs in the requested status, fans out the
// per-run job listing concurrently, and flattens the results in run order.
// Correlation needs the full candidate set, so gather always completes
// before any matching happens.
func (c *Correlator) gather(ctx context.Context, status string) ([]Job, error) {
	providerStatus := translateStatus(status)

	runs, err := c.api.ListWorkflowRuns(ctx, providerStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to gather candidate runs: %w", err)
	}
	c.log.Debug(fmt.Sprintf("Gathered %d candidate runs with status %s", len(runs), providerStatus))

	// One slot per run keeps the flattened order independent of goroutine
	// scheduling, which keeps the nearest-time tie-break deterministic.
	slots := make([][]Job, len(runs))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, run := range runs {
		group.Go(func() error {
			jobs, err := c.api.ListJobs(groupCtx, run.ID, providerStatus)
			if err != nil {
				return fmt.Errorf("failed to gather jobs for run %d: %w", run.ID, err)
			}
			slots[i] = jobs
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var all []Job
	for _, jobs := range slots {
		all = append(all, jobs...)
	}
	return all, nil
}

// translateStatus maps the human status vocabulary to the provider's. The
// provider does not recognize "running"; everything else passes through.
func translateStatus(status string) string {
	if status == "running" {
		return statusInProgress
	}
	return status
}

func jobByRunner(jobs []Job, runnerID int64) *Job {
	for i := range jobs {
		if jobs[i].RunnerID == runnerID {
			return &jobs[i]
		}
	}
	return nil
}

func nearestJob(jobs []Job, target time.Time) *Job {
	var best *Job
	var bestDiff time.Duration

	for i := range jobs {
		diff := absDuration(jobs[i].Date.Sub(target))
		if best == nil || diff < bestDiff {
			best = &jobs[i]
			bestDiff = diff
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
