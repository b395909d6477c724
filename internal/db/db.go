package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
// Consumers depend on narrow sub-interfaces, not on Store itself.
type Store interface {
	Pinger
	HashStore
	SetStore
	SortedSetStore
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based record operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	// DelIfExists deletes a key and reports whether it still existed.
	// This is the arbiter for concurrent settlement: at most one caller
	// observes true for a given key.
	DelIfExists(ctx context.Context, key string) (bool, error)
}

// SetStore provides unordered set operations, used for id indexes.
type SetStore interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// SortedSetStore provides time-ordered set operations, used for
// conversations and trade history.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	// ZRangeByScore returns members with score in [min, max], ascending.
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
	// ZRevRange returns members by rank in [start, stop], descending score.
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// KVStore provides simple key-value operations, used for the vector cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
