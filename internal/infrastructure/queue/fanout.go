// Package queue delivers reminder batches concurrently while keeping
// per-recipient ordering.
package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/core/ports"
)

const defaultWorkers = 8

// Fanout pushes reminders through a fixed set of workers, sharding by
// account id so messages to the same recipient never race each other.
// Delivery is best effort; failures are logged and counted, not retried.
type Fanout struct {
	workers  int
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewFanout creates a Fanout with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewFanout(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Fanout {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Fanout{workers: numWorkers, notifier: notifier, log: log}
}

// Deliver pushes every reminder and returns how many were delivered.
func (f *Fanout) Deliver(ctx context.Context, reminders []ports.Reminder) int {
	shards := make([][]ports.Reminder, f.workers)
	for _, r := range reminders {
		i := f.shardIndex(r.AccountID)
		shards[i] = append(shards[i], r)
	}

	var delivered atomic.Int64
	var wg sync.WaitGroup
	for _, shard := range shards {
		if len(shard) == 0 {
			continue
		}
		wg.Add(1)
		go func(shard []ports.Reminder) {
			defer wg.Done()
			for _, r := range shard {
				if err := f.notifier.Push(ctx, r.AccountID, r.Text); err != nil {
					f.log.Error().Err(err).
						Str("name", r.Name).
						Str("account_id", r.AccountID).
						Msg("reminder delivery failed")
					continue
				}
				delivered.Add(1)
			}
		}(shard)
	}
	wg.Wait()

	return int(delivered.Load())
}

// shardIndex maps an account id deterministically to a worker index.
func (f *Fanout) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32()) % f.workers
}
