package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardTTL = 24 * time.Hour

// CheckinGuard claims a (date, name) pair atomically so two concurrent
// check-ins for the same person cannot both pass the storage dedup read.
// Keys expire after a day; the ledger remains the source of truth.
type CheckinGuard struct {
	client *redis.Client
}

// NewCheckinGuard creates a CheckinGuard wrapping the given Redis client.
func NewCheckinGuard(client *redis.Client) *CheckinGuard {
	return &CheckinGuard{client: client}
}

// Acquire claims the pair. It reports false when another caller already
// holds it for the same date.
func (g *CheckinGuard) Acquire(ctx context.Context, date, name string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(date, name), "1", guardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("checkin guard acquire: %w", err)
	}
	return ok, nil
}

// Release frees the pair so a failed check-in can be retried.
func (g *CheckinGuard) Release(ctx context.Context, date, name string) error {
	if err := g.client.Del(ctx, g.key(date, name)).Err(); err != nil {
		return fmt.Errorf("checkin guard release: %w", err)
	}
	return nil
}

func (g *CheckinGuard) key(date, name string) string {
	return fmt.Sprintf("checkin:%s:%s", date, name)
}
