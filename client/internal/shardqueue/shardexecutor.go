// Package shardqueue provides a sharded work queue that keeps FIFO order per
// key while running different keys in parallel. The client uses it to delete
// many profiles at once: one job per profile id, retried with backoff while
// the failure is recoverable.
//
// Callers must not invoke Submit concurrently for the same key; FIFO
// ordering relies on that external serialisation.
package shardqueue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	apierrors "github.com/Graziano10/referral-admin/client/internal/errors"
)

type queuedJob struct {
	ctx context.Context
	job Job
}

// ShardExecutor executes Jobs on worker goroutines partitioned by a stable
// hash of the key. Jobs sharing a key run one at a time in submission order.
type ShardExecutor struct {
	cfg    Config
	queues []chan queuedJob // len == cfg.Shards

	done   chan struct{} // closed in Stop()
	closed uint32        // 0 → running, 1 → closed

	wg sync.WaitGroup
}

// NewShardExecutor constructs the executor and starts its shard workers.
func NewShardExecutor(cfg Config) *ShardExecutor {
	if cfg.Shards <= 0 {
		cfg.Shards = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 128
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 100 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	p := &ShardExecutor{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		p.queues[i] = ch
		p.wg.Add(1)
		go p.runWorker(i, ch)
	}
	return p
}

// Submit enqueues job for the shard derived from key.
//
//   - Returns ErrExecutorClosed if the executor is stopped.
//   - Returns a *QueueFullError (errors.Is ErrQueueFull) if the shard stays
//     full for EnqueueTimeout.
//   - Returns ctx.Err() if ctx is cancelled first.
func (p *ShardExecutor) Submit(ctx context.Context, key string, job Job) error {
	if atomic.LoadUint32(&p.closed) == 1 {
		return ErrExecutorClosed
	}
	select {
	case <-p.done:
		return ErrExecutorClosed
	default:
	}

	shard := p.shardFor(key)
	ch := p.queues[shard]

	timer := time.NewTimer(p.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, job: job}:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-p.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

// Barrier enqueues a no-op job on the shard for key and waits until it runs,
// so every job submitted earlier for that key has finished, retries included.
func (p *ShardExecutor) Barrier(ctx context.Context, key string) error {
	done := make(chan struct{})
	j := JobFunc(func(context.Context) error {
		close(done)
		return nil
	})
	if err := p.Submit(ctx, key, j); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Stop lets every worker drain its queue, waits for them, then returns.
// It is idempotent and safe for concurrent use.
func (p *ShardExecutor) Stop() {
	if !atomic.CompareAndSwapUint32(&p.closed, 0, 1) {
		return
	}
	log.Debug().Int("shards", p.cfg.Shards).Msg("shardqueue: stopping executor")
	close(p.done)
	p.wg.Wait()
	log.Debug().Msg("shardqueue: executor stopped")
}

// Close lets ShardExecutor satisfy io.Closer.
func (p *ShardExecutor) Close() error {
	p.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (p *ShardExecutor) runWorker(idx int, ch <-chan queuedJob) {
	defer p.wg.Done()
	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			if qj.job == nil {
				continue
			}
			if !p.execute(idx, label, qj) {
				p.drain(idx, label, ch)
				return
			}
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-p.done:
			p.drain(idx, label, ch)
			return
		}
	}
}

// drain runs every job still queued on ch once, without retries. Barriers
// queued behind a job interrupted by Stop are released here.
func (p *ShardExecutor) drain(idx int, label string, ch <-chan queuedJob) {
	drained := 0
	for {
		select {
		case qj := <-ch:
			if qj.job != nil {
				p.runOnce(idx, label, qj)
				drained++
			}
		default:
			if drained > 0 {
				log.Debug().Int("shard", idx).Int("jobs", drained).Msg("shardqueue: drained on stop")
			}
			queueDepth.WithLabelValues(label).Set(0)
			return
		}
	}
}

// execute runs qj with retries. It returns false when the executor stopped
// during a backoff wait and the worker should drain and exit.
func (p *ShardExecutor) execute(idx int, label string, qj queuedJob) bool {
	// A job cancelled while queued is reported but never run.
	if err := qj.ctx.Err(); err != nil {
		p.safeHandleError(err)
		return true
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = p.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()

	for attempt := 1; ; attempt++ {
		err := p.runOnce(idx, label, qj)
		if err == nil {
			return true
		}
		if apierrors.IsIrrecoverable(err) || attempt >= p.cfg.MaxAttempts {
			p.safeHandleError(err)
			return true
		}

		retriesTotal.WithLabelValues(label).Inc()
		select {
		case <-time.After(exp.NextBackOff()):
		case <-p.done:
			p.safeHandleError(err)
			return false
		case <-qj.ctx.Done():
			p.safeHandleError(qj.ctx.Err())
			return true
		}
	}
}

// runOnce invokes the job, converting a panic into an error so one bad job
// cannot take the shard down.
func (p *ShardExecutor) runOnce(idx int, label string, qj queuedJob) (err error) {
	start := time.Now()
	defer func() {
		runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			log.Error().Int("shard", idx).Interface("panic", r).Msg("shardqueue: job panic")
			err = &apierrors.APIError{Kind: apierrors.KindServer, Category: apierrors.Irrecoverable, Message: "job panicked"}
		}
	}()
	return qj.job.Run(qj.ctx)
}

func (p *ShardExecutor) safeHandleError(err error) {
	if err == nil || p.cfg.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("shardqueue: error handler panic")
		}
	}()
	p.cfg.ErrorHandler(err)
}

func (p *ShardExecutor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.cfg.Shards))
}
