package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	defaultStatsBuffer  = 1024
	defaultStatsTimeout = 250 * time.Millisecond
)

// ErrStatsDropped is returned by a stats queue that is full.
var ErrStatsDropped = errors.New("rate limit stats queue full")

// statsQueue decouples admission from the stats backend. Record never
// blocks; events that do not fit in the buffer are dropped and counted.
type statsQueue struct {
	next    StatsRecorder
	events  chan Event
	timeout time.Duration
	dropped atomic.Int64
	logger  *slog.Logger
}

func newStatsQueue(next StatsRecorder, size int, timeout time.Duration, logger *slog.Logger) *statsQueue {
	if size <= 0 {
		size = defaultStatsBuffer
	}
	if timeout <= 0 {
		timeout = defaultStatsTimeout
	}
	return &statsQueue{
		next:    next,
		events:  make(chan Event, size),
		timeout: timeout,
		logger:  logger,
	}
}

// Record enqueues ev for the drain loop.
func (q *statsQueue) Record(_ context.Context, ev Event) error {
	select {
	case q.events <- ev:
		return nil
	default:
		q.dropped.Add(1)
		return ErrStatsDropped
	}
}

// Dropped returns the number of events discarded because the queue was full.
func (q *statsQueue) Dropped() int64 {
	return q.dropped.Load()
}

// run writes queued events to the backend until ctx is done. Each write is
// bounded by the queue timeout so a stalled backend only delays the queue.
func (q *statsQueue) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q.events:
			wctx, cancel := context.WithTimeout(ctx, q.timeout)
			if err := q.next.Record(wctx, ev); err != nil {
				q.logger.Debug("rate limit stats not recorded",
					"key_id", ev.Key,
					"error", err,
				)
			}
			cancel()
		}
	}
}
