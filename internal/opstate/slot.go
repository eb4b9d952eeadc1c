// Package opstate tracks the lifecycle of one operator-triggered operation.
//
// A Slot moves idle -> loading -> succeeded|failed. Invoking again from any
// state restarts the cycle, and a terminal state can be dismissed back to
// idle. Slots never queue, coalesce or cancel: when two invocations overlap,
// both resolutions are applied and the last one processed wins.
package opstate

import (
	"fmt"
	"sync"
)

// Status is the lifecycle position of a slot.
type Status int

const (
	Idle Status = iota
	Loading
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether s is succeeded or failed.
func (s Status) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Observer is notified after every transition of a slot.
type Observer func(operation string, from, to Status)

// Snapshot is a consistent copy of a slot. Result is only meaningful when
// Status is Succeeded and Message only when Status is Failed.
type Snapshot[T any] struct {
	Operation string
	Status    Status
	Result    T
	Message   string
}

func (s Snapshot[T]) Loading() bool   { return s.Status == Loading }
func (s Snapshot[T]) Succeeded() bool { return s.Status == Succeeded }
func (s Snapshot[T]) Failed() bool    { return s.Status == Failed }

// Slot holds the state of one operation kind. It is safe for concurrent use.
type Slot[T any] struct {
	mu        sync.Mutex
	operation string
	status    Status
	result    T
	message   string
	observers []Observer
}

// NewSlot creates an idle slot for the named operation.
func NewSlot[T any](operation string, observers ...Observer) *Slot[T] {
	return &Slot[T]{operation: operation, observers: observers}
}

// Operation returns the name the slot was created with.
func (s *Slot[T]) Operation() string {
	return s.operation
}

// Observe registers an additional observer.
func (s *Slot[T]) Observe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Begin enters loading and clears any stored result or message. It is valid
// from every state, including loading.
func (s *Slot[T]) Begin() {
	var zero T
	s.transition(Loading, zero, "")
}

// Succeed stores v and enters succeeded. It applies regardless of the
// current state.
func (s *Slot[T]) Succeed(v T) {
	s.transition(Succeeded, v, "")
}

// Fail stores msg and enters failed. It applies regardless of the current
// state.
func (s *Slot[T]) Fail(msg string) {
	var zero T
	s.transition(Failed, zero, msg)
}

// Dismiss returns a terminal slot to idle. It reports whether anything was
// dismissed; idle and loading slots are left alone.
func (s *Slot[T]) Dismiss() bool {
	var zero T
	return s.transitionIf(Status.Terminal, Idle, zero, "")
}

func (s *Slot[T]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Result returns the stored payload when the slot has succeeded.
func (s *Slot[T]) Result() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.status == Succeeded
}

// Message returns the stored diagnostic when the slot has failed.
func (s *Slot[T]) Message() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message, s.status == Failed
}

func (s *Slot[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{
		Operation: s.operation,
		Status:    s.status,
		Result:    s.result,
		Message:   s.message,
	}
}

func (s *Slot[T]) transition(to Status, result T, msg string) {
	s.transitionIf(func(Status) bool { return true }, to, result, msg)
}

func (s *Slot[T]) transitionIf(allowed func(Status) bool, to Status, result T, msg string) bool {
	s.mu.Lock()
	from := s.status
	if !allowed(from) {
		s.mu.Unlock()
		return false
	}
	s.status = to
	s.result = result
	s.message = msg
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o(s.operation, from, to)
	}
	return true
}
