// Package job adapts closures to the shard executor's Job interface.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apierrors "github.com/Graziano10/referral-admin/client/internal/errors"
)

// ErrNilJobFunc is returned when a Recorder wraps a nil function.
var ErrNilJobFunc = errors.New("nil JobFunc")

// ErrNotRun is reported by Result when the executor never ran the job,
// for example because its context was cancelled while it was queued.
var ErrNotRun = errors.New("job was not run")

// ErrPanicked is recorded for an attempt whose function panicked. The panic
// itself is re-raised for the executor to contain.
var ErrPanicked = &apierrors.APIError{Kind: apierrors.KindServer, Category: apierrors.Irrecoverable, Message: "job panicked"}

// Recorder runs a closure and remembers the outcome of its latest attempt.
// The executor may call Run several times when it retries; Result reflects
// the last one.
type Recorder struct {
	fn func(context.Context) error

	mu       sync.Mutex
	attempts int
	err      error
}

// New wraps fn.
func New(fn func(context.Context) error) *Recorder {
	return &Recorder{fn: fn}
}

// Run implements shardqueue.Job.
func (r *Recorder) Run(ctx context.Context) error {
	if r.fn == nil {
		return fmt.Errorf("jobfunc: %w", ErrNilJobFunc)
	}
	defer func() {
		if p := recover(); p != nil {
			r.record(ErrPanicked)
			panic(p)
		}
	}()
	err := r.fn(ctx)
	r.record(err)
	return err
}

func (r *Recorder) record(err error) {
	r.mu.Lock()
	r.attempts++
	r.err = err
	r.mu.Unlock()
}

// Result returns how many times the job ran and the error of the last run.
func (r *Recorder) Result() (attempts int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attempts == 0 {
		return 0, ErrNotRun
	}
	return r.attempts, r.err
}
