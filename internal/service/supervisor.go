package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytdl-ui/ytdl/internal/log"
	"github.com/ytdl-ui/ytdl/internal/progress"
)

const (
	DefaultBinary = "yt-dlp"
	// DefaultFormat prefers the best video merged with the best audio and
	// falls back to the best single file.
	DefaultFormat = "bestvideo*+bestaudio/best"
	// DefaultRetries is handed to yt-dlp's -R, retries are its business.
	DefaultRetries     = 1024
	DefaultKillTimeout = 5 * time.Second
	OutputTemplate     = "%(title)s.%(ext)s"
)

// Exit statuses reported to Listener.Completed besides the real exit codes.
const (
	// StatusKilled is reported when the job was cancelled and no exit code
	// could be collected.
	StatusKilled = -1
	// StatusSpawnFailed is reported when the process could not be started.
	StatusSpawnFailed = 127
)

type JobState int

const (
	StateIdle JobState = iota
	StateRunning
	StateCompleted
	StateCancelled
)

func (s JobState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "JobState(" + strconv.Itoa(int(s)) + ")"
	}
}

// Terminal reports whether no further transition is possible.
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

type Options struct {
	// OutputDir is created if missing; empty means yt-dlp's working directory.
	OutputDir string
	// Binary defaults to DefaultBinary.
	Binary string
	// Retries defaults to DefaultRetries when zero.
	Retries int
	// KillTimeout bounds how long a cancelled job waits for the exit code.
	KillTimeout time.Duration
	// Env is appended to the current environment of the child.
	Env []string
}

// Supervisor runs yt-dlp for one URL and tracks its progress.
//
//	Idle --Start--> Running --exit--> Completed
//	  |                |
//	  +----Cancel------+-----------> Cancelled
//
// The zero value is not usable, see NewSupervisor.
type Supervisor struct {
	id        string
	url       string
	opts      Options
	state     *progress.State
	listeners listenerSet
	runner    *Runner

	mx          sync.Mutex // guards jobState, status, statusKnown
	jobState    JobState
	status      int
	statusKnown bool

	cancel     chan struct{}
	cancelOnce sync.Once
	done       chan struct{}
}

func NewSupervisor(url string, opts Options) (*Supervisor, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrBlankURL
	}
	if strings.HasPrefix(url, "-") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.Retries == 0 {
		opts.Retries = DefaultRetries
	}
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = DefaultKillTimeout
	}

	return &Supervisor{
		id:     uuid.NewString(),
		url:    url,
		opts:   opts,
		state:  progress.NewState(url),
		runner: NewRunner(),
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

func (s *Supervisor) ID() string  { return s.id }
func (s *Supervisor) URL() string { return s.url }

func (s *Supervisor) AddListener(l Listener)    { s.listeners.add(l) }
func (s *Supervisor) RemoveListener(l Listener) { s.listeners.remove(l) }

// Snapshot returns the latest known progress without waiting for the process.
func (s *Supervisor) Snapshot() progress.Record {
	return s.state.Snapshot()
}

func (s *Supervisor) State() JobState {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.jobState
}

// IsComplete reports whether the job reached a terminal state.
func (s *Supervisor) IsComplete() bool {
	return s.State().Terminal()
}

// ExitStatus returns the exit code of the process, false while unknown.
func (s *Supervisor) ExitStatus() (int, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.status, s.statusKnown
}

// Done is closed after the completion was delivered to the listeners.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// StderrTail returns up to n last lines the process wrote to stderr.
func (s *Supervisor) StderrTail(n int) []string {
	return s.runner.StderrTail(n)
}

// Start launches yt-dlp with the given format selector (DefaultFormat if
// empty) and returns immediately. Returns ErrAlreadyRunning while running and
// ErrJobFinished once terminal. Cancelling ctx cancels the job.
func (s *Supervisor) Start(ctx context.Context, format string) error {
	s.mx.Lock()
	switch s.jobState {
	case StateRunning:
		s.mx.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, s.url)
	case StateCompleted, StateCancelled:
		s.mx.Unlock()
		return fmt.Errorf("%w: %s", ErrJobFinished, s.url)
	}
	s.jobState = StateRunning
	s.mx.Unlock()

	if format == "" {
		format = DefaultFormat
	}
	runningJobs.Inc()
	go s.pump(log.JobAttrs(ctx, s.id, s.url), format)
	return nil
}

// Cancel asks the job to stop. It does not wait for the process: the pump
// stops reading right away and the process group gets SIGKILL. Calling it
// again, or after the job ended, does nothing. Cancelling a job which was
// never started ends it immediately.
func (s *Supervisor) Cancel() {
	s.mx.Lock()
	switch s.jobState {
	case StateCompleted, StateCancelled:
		s.mx.Unlock()
		return
	case StateIdle:
		s.jobState = StateCancelled
		s.mx.Unlock()
		s.abort()
		s.complete(context.Background(), StateCancelled, 0, false, exitCancelled)
		return
	}
	s.mx.Unlock()
	s.abort()
}

func (s *Supervisor) abort() {
	s.cancelOnce.Do(func() { close(s.cancel) })
	if err := s.runner.Kill(); err != nil {
		slog.Warn("killing yt-dlp", "url", s.url, "error", err)
	}
}

func (s *Supervisor) cancelled() bool {
	select {
	case <-s.cancel:
		return true
	default:
		return false
	}
}

func (s *Supervisor) pump(ctx context.Context, format string) {
	defer runningJobs.Dec()

	cmd, err := s.command(format)
	var lines <-chan string
	if err == nil {
		slog.DebugContext(ctx, "spawning yt-dlp", "path", cmd.Path, "args", cmd.Args)
		lines, err = s.runner.Start(ctx, cmd, s.logStderr)
	}
	switch {
	case errors.Is(err, ErrKilled):
		s.complete(ctx, StateCancelled, 0, false, exitCancelled)
		return
	case err != nil:
		slog.ErrorContext(ctx, "starting yt-dlp failed", "error", err)
		startTotal.WithLabelValues("error").Inc()
		s.complete(ctx, StateCompleted, StatusSpawnFailed, true, exitSpawnError)
		return
	}
	startTotal.WithLabelValues("ok").Inc()
	slog.InfoContext(ctx, "download started", "format", format)

	if !s.readLines(ctx, lines) {
		s.awaitKilled(ctx)
		return
	}
	s.wait(ctx)
}

// wait completes the job once stdout reached end of stream.
func (s *Supervisor) wait(ctx context.Context) {
	// an exited process wins over a late Cancel
	select {
	case <-s.runner.Done():
		s.exited(ctx)
		return
	default:
	}

	select {
	case <-s.runner.Done():
		s.exited(ctx)
	case <-s.cancel:
		s.awaitKilled(ctx)
	case <-ctx.Done():
		s.abort()
		s.awaitKilled(ctx)
	}
}

// exited completes a job whose process ended on its own.
func (s *Supervisor) exited(ctx context.Context) {
	code, known := s.runner.Result().ExitCode()
	reason := exitFailure
	if known && code == 0 {
		reason = exitSuccess
	}
	s.complete(ctx, StateCompleted, code, known, reason)
}

// readLines feeds stdout to the parser until end of stream. Returns false
// when it stopped because of a cancellation.
func (s *Supervisor) readLines(ctx context.Context, lines <-chan string) bool {
	for {
		if s.cancelled() {
			return false
		}
		select {
		case <-s.cancel:
			return false
		case <-ctx.Done():
			s.abort()
			return false
		case line, ok := <-lines:
			if !ok {
				return true
			}
			s.handleLine(ctx, line)
		}
	}
}

// handleLine parses one line of output, updates the state and notifies the
// listeners. Lines without progress are ignored.
func (s *Supervisor) handleLine(ctx context.Context, line string) bool {
	p, err := progress.ParseLine(line)
	if err != nil {
		if line != "" {
			slog.DebugContext(ctx, "yt-dlp", "stdout", line)
		}
		return false
	}
	progressLinesTotal.Inc()
	rec := s.state.Apply(p)
	s.listeners.statusUpdate(rec)
	return true
}

// awaitKilled gives a killed process KillTimeout to exit so its code can be
// reported. The runner reaps it in the background either way. A process which
// exited with a code of its own before the kill landed completes normally.
func (s *Supervisor) awaitKilled(ctx context.Context) {
	timer := time.NewTimer(s.opts.KillTimeout)
	defer timer.Stop()

	select {
	case <-s.runner.Done():
		code, known := s.runner.Result().ExitCode()
		if known && code >= 0 {
			s.exited(ctx)
			return
		}
		s.complete(ctx, StateCancelled, code, known, exitCancelled)
	case <-timer.C:
		slog.WarnContext(ctx, "yt-dlp did not exit after kill", "timeout", s.opts.KillTimeout)
		s.complete(ctx, StateCancelled, 0, false, exitCancelled)
	}
}

// complete finalizes the record, enters the terminal state and delivers the
// last status update followed by the single completion.
func (s *Supervisor) complete(ctx context.Context, state JobState, code int, known bool, reason string) {
	rec := s.state.Finalize(reason == exitSuccess)

	s.mx.Lock()
	s.jobState = state
	s.status, s.statusKnown = code, known
	s.mx.Unlock()

	reported := code
	if !known {
		reported = StatusKilled
	}

	switch reason {
	case exitCancelled:
		slog.InfoContext(ctx, "download cancelled", "status", reported)
	case exitSuccess:
		slog.InfoContext(ctx, "download finished", "status", code)
	case exitFailure:
		slog.WarnContext(ctx, "download failed", "status", code, "stderr", s.runner.StderrTail(10))
	}
	exitTotal.WithLabelValues(reason).Inc()

	s.listeners.statusUpdate(rec)
	s.listeners.completed(reported)
	close(s.done)
}

func (s *Supervisor) logStderr(ctx context.Context, line string) {
	slog.DebugContext(ctx, "yt-dlp", "stderr", line)
}

// command builds the yt-dlp invocation and makes sure the output directory exists.
func (s *Supervisor) command(format string) (Command, error) {
	args := []string{
		s.url,
		"-R", strconv.Itoa(s.opts.Retries),
		"-f", format,
	}
	if dir := strings.TrimSpace(s.opts.OutputDir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Command{}, fmt.Errorf("creating output directory %s: %w", dir, err)
		}
		args = append(args, "-o", filepath.Join(dir, OutputTemplate))
	}
	return Command{
		Path: s.opts.Binary,
		Args: args,
		Env:  s.opts.Env,
	}, nil
}
