package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ytdl-ui/ytdl/internal/log"
	"github.com/ytdl-ui/ytdl/internal/progress"
	"github.com/ytdl-ui/ytdl/internal/service"
)

// logListener logs the progress of one job.
type logListener struct {
	ctx context.Context
	job *service.Supervisor
}

func newLogListener(ctx context.Context, job *service.Supervisor) *logListener {
	return &logListener{
		ctx: log.JobAttrs(ctx, job.ID(), job.URL()),
		job: job,
	}
}

func (l *logListener) StatusUpdate(rec progress.Record) {
	attrs := []any{
		"percent", rec.Percent,
		"size", rec.SizeBytes,
		"rate", rec.RateBytesPerSec,
	}
	if rec.ETAKnown() {
		attrs = append(attrs, "eta", time.Duration(rec.ETASeconds)*time.Second)
	}
	slog.DebugContext(l.ctx, "progress", attrs...)
}

func (l *logListener) Completed(status int) {
	rec := l.job.Snapshot()
	slog.InfoContext(l.ctx, "job completed",
		"status", status,
		"state", l.job.State().String(),
		"percent", rec.Percent,
		"size", rec.SizeBytes,
	)
}

// barListener draws a terminal progress bar. It is created once the size
// is known, which yt-dlp may still revise while downloading.
type barListener struct {
	w   io.Writer
	url string
	bar *progressbar.ProgressBar
}

func newBarListener(w io.Writer, url string) *barListener {
	return &barListener{w: w, url: url}
}

func (l *barListener) StatusUpdate(rec progress.Record) {
	if rec.SizeBytes <= 0 {
		return
	}
	if l.bar == nil {
		l.bar = progressbar.NewOptions64(rec.SizeBytes,
			progressbar.OptionSetWriter(l.w),
			progressbar.OptionSetDescription(l.url),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprintln(l.w)
			}),
		)
	} else if l.bar.GetMax64() != rec.SizeBytes {
		l.bar.ChangeMax64(rec.SizeBytes)
	}
	_ = l.bar.Set64(int64(rec.Percent / 100 * float64(rec.SizeBytes)))
}

func (l *barListener) Completed(status int) {
	if l.bar == nil {
		return
	}
	if status == 0 {
		_ = l.bar.Finish()
		return
	}
	_ = l.bar.Exit()
	_, _ = fmt.Fprintln(l.w)
}
