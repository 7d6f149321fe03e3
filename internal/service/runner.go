package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/ytdl-ui/ytdl/internal/procgroup"
)

var (
	ErrNotStarted = errors.New("process not started")
	ErrKilled     = errors.New("process killed before start")
)

const (
	stderrTail   = 64
	maxLineBytes = 1024 * 1024
)

type StderrFunc func(ctx context.Context, line string)

type Command struct {
	Path string
	Args []string
	Env  []string
}

type Result struct {
	Path    string
	Args    []string
	Started time.Time
	Stopped time.Time
	State   *os.ProcessState
	Err     error
}

// ExitCode returns the exit code of a finished process, false if it never
// ran to completion. A process terminated by a signal reports -1.
func (r Result) ExitCode() (int, bool) {
	if r.State == nil {
		return 0, false
	}
	return r.State.ExitCode(), true
}

// Runner owns a single child process. The mutex guards the process handle:
// Start and Kill exclude each other, and a Kill which wins the race
// suppresses the spawn altogether.
type Runner struct {
	mx      sync.Mutex
	cmd     *exec.Cmd
	started bool
	killed  bool
	result  Result

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	stderr   *lineRing
}

func NewRunner() *Runner {
	return &Runner{
		result: Result{Err: ErrNotStarted},
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		stderr: newLineRing(stderrTail),
	}
}

// Start spawns the process and returns the channel of its stdout lines, which
// is closed on end of stream. A Runner runs at most one process in its
// lifetime. Stderr is drained by a goroutine into stderrFunc (may be nil) and
// the stderr tail. Does NOT wait for the process, use Done for that.
func (r *Runner) Start(ctx context.Context, proto Command, stderrFunc StderrFunc) (<-chan string, error) {
	r.mx.Lock()
	defer r.mx.Unlock()
	if r.killed {
		return nil, ErrKilled
	}
	if r.started {
		return nil, ErrAlreadyRunning
	}
	r.started = true

	r.result = Result{
		Path: proto.Path,
		Args: append([]string(nil), proto.Args...),
	}

	cmd := exec.Command(proto.Path, proto.Args...) // #nosec G204
	if proto.Env != nil {
		cmd.Env = append(os.Environ(), proto.Env...)
	}
	procgroup.Set(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, r.failed(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, r.failed(err)
	}

	r.result.Started = time.Now().UTC()
	if err := cmd.Start(); err != nil {
		return nil, r.failed(err)
	}
	r.cmd = cmd

	lines := make(chan string)
	go r.run(ctx, cmd, stdout, stderr, stderrFunc, lines)
	return lines, nil
}

func (r *Runner) failed(err error) error {
	r.result.Stopped = time.Now().UTC()
	r.result.Err = err
	return err
}

// run pumps stdout into lines, then reaps the process. Once Kill was called
// the remaining output is discarded so the child never blocks on a full pipe.
func (r *Runner) run(ctx context.Context, cmd *exec.Cmd, stdout, stderr io.Reader, stderrFunc StderrFunc, lines chan<- string) {
	var wg sync.WaitGroup
	wg.Go(func() {
		r.processStderr(ctx, stderr, stderrFunc)
	})

	scanner := newLineScanner(stdout)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-r.stop:
		}
	}
	if err := scanner.Err(); err != nil {
		slog.DebugContext(ctx, "reading stdout", "error", err)
		_, _ = io.Copy(io.Discard, stdout)
	}
	close(lines)
	wg.Wait()

	err := cmd.Wait()
	stopped := time.Now().UTC()

	r.mx.Lock()
	r.result.Stopped = stopped
	r.result.State = cmd.ProcessState
	r.result.Err = err
	r.cmd = nil
	r.mx.Unlock()
	close(r.done)
}

func (r *Runner) processStderr(ctx context.Context, stderr io.Reader, stderrFunc StderrFunc) {
	scanner := newLineScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		r.stderr.add(line)
		if stderrFunc != nil {
			stderrFunc(ctx, line)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.DebugContext(ctx, "reading stderr", "error", err)
		_, _ = io.Copy(io.Discard, stderr)
	}
}

// Kill terminates the process group. Safe to call any number of times,
// before Start, during it, or after the process is gone.
func (r *Runner) Kill() error {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.killed = true
	r.stopOnce.Do(func() { close(r.stop) })
	if r.cmd == nil {
		return nil
	}
	return procgroup.Kill(r.cmd)
}

// Done is closed once a started process was reaped.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Result returns the last known result, ErrNotStarted if Start never succeeded.
func (r *Runner) Result() Result {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.result
}

// StderrTail returns up to n last lines written to stderr.
func (r *Runner) StderrTail(n int) []string {
	return r.stderr.lastN(n)
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	scanner.Split(scanLines)
	return scanner
}

// scanLines splits on \n and on a bare \r: yt-dlp redraws its progress line
// with carriage returns when stdout is not a terminal.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
