package progress

import "sync"

// State holds the latest Record of one job. Writers replace the whole record,
// readers get a copy, so nobody ever sees a half-written value.
type State struct {
	mx  sync.RWMutex
	rec Record
}

func NewState(url string) *State {
	return &State{rec: NewRecord(url)}
}

// Update replaces the held record.
func (s *State) Update(rec Record) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.rec = rec
}

// Snapshot returns a copy of the held record.
func (s *State) Snapshot() Record {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.rec
}

// Apply records a parsed line on top of the current record and returns the result.
func (s *State) Apply(p Progress) Record {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.rec = s.rec.WithProgress(p)
	return s.rec
}

// Finalize marks the record completed in one critical section, see Record.Finalize.
func (s *State) Finalize(success bool) Record {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.rec = s.rec.Finalize(success)
	return s.rec
}
