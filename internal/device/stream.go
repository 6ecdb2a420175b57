package device

import (
	"fmt"
	"sync"
)

// Stream is an ordered queue of device work. Operations run asynchronously
// with respect to the host but strictly in submission order, so the output
// of one operation is visible to the next without host synchronization.
//
// The first failing operation poisons the stream: later work is skipped and
// the error is reported by Synchronize, Err and Event.Wait.
type Stream struct {
	dev   *Device
	tasks chan task
	done  chan struct{}
	wg    sync.WaitGroup

	submitMu  sync.Mutex
	destroyed bool
	enqueued  int64

	errMu sync.Mutex
	err   error
}

type task struct {
	op     string
	fn     func() error
	always bool
}

// NewStream creates a stream bound to the device.
func (d *Device) NewStream() *Stream {
	s := &Stream{
		dev:   d,
		tasks: make(chan task, 64),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *Stream) Device() *Device {
	return s.dev
}

func (s *Stream) worker() {
	for t := range s.tasks {
		s.run(t)
		s.wg.Done()
	}
	close(s.done)
}

func (s *Stream) run(t task) {
	if !t.always && s.Err() != nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.fail(executionError(t.op, rec))
		}
	}()
	if err := t.fn(); err != nil {
		s.fail(fmt.Errorf("device %s failed: %w", t.op, err))
	}
}

func (s *Stream) fail(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
}

// Err returns the sticky stream error, if any.
func (s *Stream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Enqueued returns the number of operations ever submitted to the stream.
func (s *Stream) Enqueued() int64 {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()
	return s.enqueued
}

func (s *Stream) submit(t task) error {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()
	if s.destroyed {
		return ErrStreamDestroyed
	}
	s.enqueued++
	s.wg.Add(1)
	s.tasks <- t
	return nil
}

// Launch enqueues a compute operation.
func (s *Stream) Launch(op string, fn func() error) error {
	if fn == nil {
		return fmt.Errorf("%w: nil kernel for %s", ErrInvalidValue, op)
	}
	return s.submit(task{op: op, fn: fn})
}

// Synchronize blocks until all submitted work has finished.
func (s *Stream) Synchronize() error {
	s.wg.Wait()
	return s.Err()
}

// Destroy drains the stream and stops its worker. Further submissions fail.
func (s *Stream) Destroy() error {
	s.submitMu.Lock()
	if s.destroyed {
		s.submitMu.Unlock()
		return nil
	}
	s.destroyed = true
	close(s.tasks)
	s.submitMu.Unlock()
	<-s.done
	return nil
}

// Event marks a point in a stream.
type Event struct {
	s    *Stream
	done chan struct{}
}

// Record enqueues an event that completes once all prior work has run.
func (s *Stream) Record() (*Event, error) {
	ev := &Event{s: s, done: make(chan struct{})}
	err := s.submit(task{op: "event", always: true, fn: func() error {
		close(ev.done)
		return nil
	}})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (e *Event) Done() <-chan struct{} {
	return e.done
}

// Query reports whether the event has completed without blocking.
func (e *Event) Query() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the event completes and returns the stream error.
func (e *Event) Wait() error {
	<-e.done
	return e.s.Err()
}
