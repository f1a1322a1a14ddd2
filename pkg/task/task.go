// Package task runs a function once after a delay, with a cancellation token
// that guarantees a canceled task never runs.
package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentstation/userdetails/pkg/errors"
)

// Func is the deferred work. Its context is canceled if the task's parent
// context ends while it runs.
type Func func(ctx context.Context)

// State describes where a task is in its lifecycle.
type State int

// Task states.
const (
	Pending State = iota
	Running
	Completed
	Canceled
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Task is a single deferred invocation.
type Task struct {
	mu       sync.Mutex
	state    State
	err      error
	deadline time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// After schedules fn to run once delay has elapsed. The task is canceled,
// and fn never runs, if ctx ends first or Cancel is called.
func After(ctx context.Context, delay time.Duration, fn Func) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		deadline: time.Now().Add(delay),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go t.run(ctx, delay, fn)
	return t
}

func (t *Task) run(ctx context.Context, delay time.Duration, fn Func) {
	defer close(t.done)
	defer t.cancel()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		t.finish(Canceled, fmt.Errorf("%w: %w", errors.ErrCanceled, context.Cause(ctx)))
		return
	}

	t.mu.Lock()
	if t.state != Pending {
		t.mu.Unlock()
		return
	}
	if ctx.Err() != nil {
		t.state = Canceled
		t.err = fmt.Errorf("%w: %w", errors.ErrCanceled, context.Cause(ctx))
		t.mu.Unlock()
		return
	}
	t.state = Running
	t.mu.Unlock()

	fn(ctx)
	t.finish(Completed, nil)
}

func (t *Task) finish(state State, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Canceled || t.state == Completed {
		return
	}
	t.state = state
	t.err = err
}

// Cancel stops a pending task. It reports whether the task was still
// pending; a task that already started running is left to finish.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	if t.state != Pending {
		t.mu.Unlock()
		return false
	}
	t.state = Canceled
	t.err = errors.ErrCanceled
	t.mu.Unlock()

	t.cancel()
	return true
}

// State returns the current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns nil while pending or after completion, and an error wrapping
// errors.ErrCanceled after cancellation.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Deadline returns when the task is due to run.
func (t *Task) Deadline() time.Time {
	return t.deadline
}

// Done is closed once the task has completed or been canceled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
