// Package batch downloads a fixed set of URLs with bounded concurrency.
package batch

import (
	"context"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ytdl-ui/ytdl/internal/progress"
	"github.com/ytdl-ui/ytdl/internal/service"
)

// Result describes how one job of a batch ended.
type Result struct {
	JobID  string
	URL    string
	Status int  // as reported to Listener.Completed
	Known  bool // false when no exit code was collected
	State  service.JobState
	Record progress.Record
}

// Success reports whether yt-dlp exited with 0.
func (r Result) Success() bool {
	return r.State == service.StateCompleted && r.Known && r.Status == 0
}

// Run starts the jobs with at most limit of them running at once and yields
// one Result per job in the order they finish. Canceled ctx cancels the
// running jobs and the ones not started yet end without spawning anything.
// Breaking out of the loop cancels the rest as well; the iterator returns
// only after every job ended.
//
//	for res := range batch.Run(ctx, 2, jobs, "") {}
func Run(ctx context.Context, limit int, jobs []*service.Supervisor, format string) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(max(limit, 1))

		results := make(chan Result, len(jobs))
		go func() {
			for _, job := range jobs {
				g.Go(func() error {
					results <- runOne(ctx, job, format)
					return nil
				})
			}
			_ = g.Wait()
			close(results)
		}()

		for res := range results {
			if !yield(res) {
				cancel()
				for range results {
				}
				return
			}
		}
	}
}

func runOne(ctx context.Context, job *service.Supervisor, format string) Result {
	if ctx.Err() != nil {
		job.Cancel()
	} else if err := job.Start(ctx, format); err != nil {
		slog.WarnContext(ctx, "job not started", "url", job.URL(), "error", err)
	}
	<-job.Done()

	code, known := job.ExitStatus()
	status := code
	if !known {
		status = service.StatusKilled
	}
	return Result{
		JobID:  job.ID(),
		URL:    job.URL(),
		Status: status,
		Known:  known,
		State:  job.State(),
		Record: job.Snapshot(),
	}
}
