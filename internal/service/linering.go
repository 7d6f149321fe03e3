package service

import "sync"

// lineRing keeps the last lines a child wrote to stderr, for error reports.
type lineRing struct {
	mx    sync.Mutex
	lines []string
	head  int
	count int
}

func newLineRing(capacity int) *lineRing {
	if capacity < 1 {
		capacity = 1
	}
	return &lineRing{lines: make([]string, capacity)}
}

func (r *lineRing) add(line string) {
	if line == "" {
		return
	}
	r.mx.Lock()
	defer r.mx.Unlock()
	r.lines[r.head] = line
	r.head = (r.head + 1) % len(r.lines)
	if r.count < len(r.lines) {
		r.count++
	}
}

// lastN returns up to n most recent lines, oldest first.
func (r *lineRing) lastN(n int) []string {
	r.mx.Lock()
	defer r.mx.Unlock()
	n = min(n, r.count)
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	start := r.head - n
	for i := range n {
		idx := (start + i + len(r.lines)) % len(r.lines)
		out = append(out, r.lines[idx])
	}
	return out
}
