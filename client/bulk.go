package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Graziano10/referral-admin/client/internal/job"
	"github.com/Graziano10/referral-admin/client/internal/shardqueue"
)

// executor abstracts the job runner behind DeleteProfiles.
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Barrier(context.Context, string) error
	Stop()
}

// BulkConfig tunes the executor used by DeleteProfiles.
type BulkConfig struct {
	Shards      int
	QueueSize   int
	MaxAttempts int
	BaseBackoff time.Duration
	MaxInterval time.Duration
}

// DefaultBulkConfig mirrors the shard queue defaults.
func DefaultBulkConfig() BulkConfig {
	return BulkConfig{
		Shards:      4,
		QueueSize:   128,
		MaxAttempts: 4,
		BaseBackoff: 100 * time.Millisecond,
		MaxInterval: 5 * time.Second,
	}
}

func (b BulkConfig) shardConfig(logger zerolog.Logger) shardqueue.Config {
	return shardqueue.Config{
		Shards:      b.Shards,
		QueueSize:   b.QueueSize,
		MaxAttempts: b.MaxAttempts,
		BaseBackoff: b.BaseBackoff,
		MaxInterval: b.MaxInterval,
		ErrorHandler: func(err error) {
			logger.Warn().Err(err).Msg("bulk job gave up")
		},
	}
}

// DeleteResult is the outcome for one id passed to DeleteProfiles.
type DeleteResult struct {
	ID       string
	Deleted  *DeletedProfile // nil on failure
	Attempts int
	Err      error
}

// DeleteProfiles deletes every id, retrying recoverable failures with
// backoff. Duplicate ids are deleted once. Results follow the order of first
// appearance in ids.
func (c *Client) DeleteProfiles(ctx context.Context, ids []string) []DeleteResult {
	type pending struct {
		rec     *job.Recorder
		deleted *DeletedProfile
		err     error // submit failure
	}

	seen := make(map[string]bool, len(ids))
	order := make([]string, 0, len(ids))
	jobs := make(map[string]*pending, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)

		p := &pending{}
		id := id
		p.rec = job.New(func(ctx context.Context) error {
			resp, err := c.api.DeleteProfile(ctx, id)
			if err != nil {
				return err
			}
			p.deleted = &resp.Profile
			return nil
		})
		jobs[id] = p
		if err := c.exec.Submit(ctx, id, p.rec); err != nil {
			p.err = translateSubmitErr(err)
		}
	}

	results := make([]DeleteResult, 0, len(order))
	for _, id := range order {
		p := jobs[id]
		r := DeleteResult{ID: id}
		switch {
		case p.err != nil:
			r.Err = p.err
		default:
			if err := c.exec.Barrier(ctx, id); err != nil {
				r.Err = translateSubmitErr(err)
				break
			}
			attempts, err := p.rec.Result()
			if errors.Is(err, job.ErrNotRun) && ctx.Err() != nil {
				err = ctx.Err()
			}
			r.Attempts, r.Err = attempts, err
			if err == nil {
				r.Deleted = p.deleted
			}
		}
		if r.Err != nil {
			bulkDeletesTotal.WithLabelValues("error").Inc()
		} else {
			bulkDeletesTotal.WithLabelValues("ok").Inc()
		}
		results = append(results, r)
	}
	return results
}

func translateSubmitErr(err error) error {
	switch {
	case errors.Is(err, shardqueue.ErrQueueFull):
		return fmt.Errorf("%w: %v", ErrBackPressure, err)
	case errors.Is(err, shardqueue.ErrExecutorClosed):
		return ErrClosed
	default:
		return err
	}
}
