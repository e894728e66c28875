package shardqueue

import "context"

// Job is a unit of work executed by a ShardExecutor. The executor may call
// Run again after a recoverable error, so Run must tolerate repeated calls.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a plain function to a Job.
type JobFunc func(ctx context.Context) error

// Run implements Job for JobFunc.
func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }
