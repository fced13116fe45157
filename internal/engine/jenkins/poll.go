package jenkins

import (
	"context"
	"time"

	"buildwatch/internal/engine"
	"buildwatch/internal/logger"
	"buildwatch/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// StatusesMatching locates the job's builds that were started with exactly
// the expected parameter set, among both pending queue items and recorded
// history. The queue listing and the job info are fetched concurrently; once
// the job info is in, every recorded build's status is fetched concurrently
// as well. The merged order is queued items first (the queue's own order),
// then history by build number descending, independent of fetch completion
// order. Any failing sub-fetch fails the whole call with no partial results.
func (e *Engine) StatusesMatching(ctx context.Context, jobName string, expectedParams map[string]string) (*engine.StatusIter, error) {
	if err := validateJobName(jobName); err != nil {
		return nil, err
	}

	start := time.Now()

	var (
		queue engine.Queue
		job   engine.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := e.client.GetQueue(gctx)
		queue = q
		return err
	})
	g.Go(func() error {
		j, err := e.client.GetJob(gctx, jobName)
		job = j
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.RecordPoll(jobName, "failed", time.Since(start))
		return nil, err
	}

	history, err := e.historyStatuses(ctx, jobName, job)
	if err != nil {
		metrics.RecordPoll(jobName, "failed", time.Since(start))
		return nil, err
	}

	// Queued items are always newer than any recorded build
	merged := append(engine.QueuedStatuses(queue, jobName), history...)

	metrics.RecordPoll(jobName, "success", time.Since(start))
	logger.Debug("Aggregated build statuses", "job", jobName, "total", len(merged), "history", len(history))

	return engine.NewStatusIter(merged, expectedParams), nil
}

// historyStatuses fetches the status of every recorded build of the job,
// newest first. Fetches run concurrently; each result lands in the slot of
// its build number's sorted position, so the output order never depends on
// completion timing.
func (e *Engine) historyStatuses(ctx context.Context, jobName string, job engine.Job) ([]engine.BuildStatus, error) {
	builds := make([]engine.Build, len(job.Builds))
	copy(builds, job.Builds)
	engine.SortBuildsDesc(builds)

	statuses := make([]engine.BuildStatus, len(builds))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range builds {
		i, b := i, b
		g.Go(func() error {
			s, err := e.client.GetBuild(gctx, jobName, b.Number)
			if err != nil {
				return err
			}
			statuses[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}
