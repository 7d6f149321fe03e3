package service_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ytdl-ui/ytdl/internal/progress"
	"github.com/ytdl-ui/ytdl/internal/service"
)

// fakeYtdlp writes a shell script standing in for yt-dlp and returns its path.
func fakeYtdlp(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("skipped, binary sh not available: %v", err)
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)
	require.NoError(t, err)
	return path
}

type recorder struct {
	mx              sync.Mutex
	updates         []progress.Record
	completions     []int
	afterCompletion int
}

func (r *recorder) StatusUpdate(rec progress.Record) {
	r.mx.Lock()
	defer r.mx.Unlock()
	if len(r.completions) > 0 {
		r.afterCompletion++
	}
	r.updates = append(r.updates, rec)
}

func (r *recorder) Completed(status int) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.completions = append(r.completions, status)
}

func (r *recorder) Updates() []progress.Record {
	r.mx.Lock()
	defer r.mx.Unlock()
	return append([]progress.Record(nil), r.updates...)
}

func (r *recorder) Completions() []int {
	r.mx.Lock()
	defer r.mx.Unlock()
	return append([]int(nil), r.completions...)
}

func (r *recorder) AfterCompletion() int {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.afterCompletion
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for the job to finish")
	}
}

func newSupervisor(t *testing.T, url string, opts service.Options) *service.Supervisor {
	t.Helper()
	sup, err := service.NewSupervisor(url, opts)
	require.NoError(t, err)
	return sup
}
