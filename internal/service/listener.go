package service

import (
	"slices"
	"sync"

	"github.com/ytdl-ui/ytdl/internal/progress"
)

// Listener observes one download. StatusUpdate receives a copy of every
// newly parsed record, Completed is called exactly once when the job ends.
//
// Listeners are compared with == on removal, so register pointers.
type Listener interface {
	StatusUpdate(rec progress.Record)
	Completed(status int)
}

// Funcs adapts plain functions to Listener. Nil fields are skipped.
type Funcs struct {
	OnStatusUpdate func(rec progress.Record)
	OnCompleted    func(status int)
}

func (f *Funcs) StatusUpdate(rec progress.Record) {
	if f.OnStatusUpdate != nil {
		f.OnStatusUpdate(rec)
	}
}

func (f *Funcs) Completed(status int) {
	if f.OnCompleted != nil {
		f.OnCompleted(status)
	}
}

// listenerSet is safe to mutate while a notification is running: callers
// iterate over a copy taken by snapshot.
type listenerSet struct {
	mx        sync.Mutex
	listeners []Listener
}

func (s *listenerSet) add(l Listener) {
	if l == nil {
		return
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *listenerSet) remove(l Listener) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if idx := slices.Index(s.listeners, l); idx >= 0 {
		s.listeners = slices.Delete(s.listeners, idx, idx+1)
	}
}

func (s *listenerSet) snapshot() []Listener {
	s.mx.Lock()
	defer s.mx.Unlock()
	return slices.Clone(s.listeners)
}

func (s *listenerSet) statusUpdate(rec progress.Record) {
	for _, l := range s.snapshot() {
		l.StatusUpdate(rec)
	}
}

func (s *listenerSet) completed(status int) {
	for _, l := range s.snapshot() {
		l.Completed(status)
	}
}
