package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ytdl-ui/ytdl/internal/progress"
)

var ErrDispatcherRunning = errors.New("dispatcher already running")

// Dispatcher moves listener calls off the pump goroutine onto the goroutine
// which calls Run, e.g. the one owning a terminal or a UI.
//
// It holds at most one pending status update and one pending completion.
// A newer status replaces an undelivered older one, so a slow consumer sees
// only the latest progress and intermediate values are dropped on purpose.
// The completion is never dropped: once it is pending no status can replace
// it, and it is delivered after the last status, before Run returns.
type Dispatcher struct {
	listeners listenerSet

	mx         sync.Mutex
	status     *progress.Record
	completion *int

	wake    chan struct{}
	done    chan struct{}
	running atomic.Bool
	dropped atomic.Uint64
}

func NewDispatcher(listeners ...Listener) *Dispatcher {
	d := &Dispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, l := range listeners {
		d.listeners.add(l)
	}
	return d
}

func (d *Dispatcher) AddListener(l Listener)    { d.listeners.add(l) }
func (d *Dispatcher) RemoveListener(l Listener) { d.listeners.remove(l) }

// StatusUpdate stores rec as the pending status, replacing an undelivered one.
func (d *Dispatcher) StatusUpdate(rec progress.Record) {
	d.mx.Lock()
	if d.completion != nil {
		d.mx.Unlock()
		return
	}
	if d.status != nil {
		d.dropped.Add(1)
	}
	d.status = &rec
	d.mx.Unlock()
	d.notify()
}

// Completed stores the completion. Only the first one counts.
func (d *Dispatcher) Completed(status int) {
	d.mx.Lock()
	if d.completion == nil {
		d.completion = &status
	}
	d.mx.Unlock()
	d.notify()
}

func (d *Dispatcher) notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run delivers the pending events to the listeners until the completion was
// delivered. When ctx ends first, whatever is pending is flushed and
// ctx.Err() returned. Run may be called only once.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrDispatcherRunning
	}
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return ctx.Err()
		case <-d.wake:
			if d.drain() {
				return nil
			}
		}
	}
}

// drain dispatches the latest status and the completion if any; returns
// true when the completion went out.
func (d *Dispatcher) drain() bool {
	d.mx.Lock()
	status, completion := d.status, d.completion
	d.status = nil
	d.mx.Unlock()

	if status != nil {
		d.listeners.statusUpdate(*status)
	}
	if completion != nil {
		d.listeners.completed(*completion)
		return true
	}
	return false
}

// Done is closed when Run returns.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Dropped returns how many status updates were replaced before delivery.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}
