// Package procgroup starts children in their own process group so that
// signalling the leader also reaches whatever it spawned (yt-dlp runs ffmpeg
// for merging and post-processing).
package procgroup

import (
	"errors"
	"os/exec"
)

var ErrNotStarted = errors.New("process not started")

// Set configures cmd to start as the leader of a new process group.
// Must be called before cmd.Start.
func Set(cmd *exec.Cmd) {
	set(cmd)
}

// Kill sends SIGKILL to the whole group led by cmd. A group which is already
// gone is not an error.
func Kill(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return ErrNotStarted
	}
	return kill(cmd)
}
