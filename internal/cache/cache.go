// Package cache is the explicit caching port around the read engines.
// Read paths go through this interface with short TTLs; invalidation
// happens exactly where engine inputs change (task status transitions,
// template edits, provisioning).
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cache is the port the services consume
type Cache interface {
	// Get returns the cached value and whether the key was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes keys; missing keys are not an error
	Invalidate(ctx context.Context, keys ...string) error

	// Close releases the underlying connection
	Close() error
}

// Key builders. One scheme for the whole engine so invalidation call sites
// cannot drift from read call sites.

// PointsKey caches PointsEngine results per tracker
func PointsKey(trackerID uuid.UUID) string {
	return fmt.Sprintf("trackpro:points:%s", trackerID)
}

// StreakKey caches StreakEngine results per tracker
func StreakKey(trackerID uuid.UUID) string {
	return fmt.Sprintf("trackpro:streak:%s", trackerID)
}

// InsightsKey caches HabitIntelligence summaries per tracker
func InsightsKey(trackerID uuid.UUID) string {
	return fmt.Sprintf("trackpro:insights:%s", trackerID)
}

// TrackerKeys returns every key derived from a tracker's data. Mutations
// that touch instances, tasks, or templates invalidate all of them.
func TrackerKeys(trackerID uuid.UUID) []string {
	return []string{
		PointsKey(trackerID),
		StreakKey(trackerID),
		InsightsKey(trackerID),
	}
}

// Noop is the cache used when no Redis URL is configured; reads always miss
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)             { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error      { return nil }
func (Noop) Invalidate(context.Context, ...string) error                   { return nil }
func (Noop) Close() error                                                  { return nil }

var _ Cache = Noop{}
