package main

import (
	"io"
	"sync"
)

// lockedWriter serializes writes of the logger and the progress bar, which
// run on different goroutines but share stderr.
type lockedWriter struct {
	mx sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.w.Write(p)
}
