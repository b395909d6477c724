// Package trade persists completed trades: a hash per trade plus
// time-ordered per-user and global indexes. Trades are append-only.
package trade

import (
	"context"
	"fmt"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// store is the consumer interface for the trade log.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo stores the trade audit trail.
type Repo struct {
	store store
}

// New creates a trade repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Append records a completed trade. Trades are never updated or deleted.
func (r *Repo) Append(ctx context.Context, t domain.Trade) error {
	if err := r.store.HSet(ctx, tradeKey(t.ID), tradeToFields(t)); err != nil {
		return fmt.Errorf("append trade %s: %w: %w", t.ID, domain.ErrStoreUnavailable, err)
	}

	score := float64(t.CompletedAt.UnixMilli())
	if err := r.store.ZAdd(ctx, allTradesKey(), score, t.ID); err != nil {
		return fmt.Errorf("index trade %s: %w: %w", t.ID, domain.ErrStoreUnavailable, err)
	}
	for _, userID := range t.Participants {
		if err := r.store.ZAdd(ctx, userTradesKey(userID), score, t.ID); err != nil {
			return fmt.Errorf("index trade %s for user %s: %w: %w",
				t.ID, userID, domain.ErrStoreUnavailable, err)
		}
	}
	return nil
}

// ByUser returns the user's trades, newest first.
func (r *Repo) ByUser(ctx context.Context, userID string) ([]domain.Trade, error) {
	ids, err := r.store.ZRevRange(ctx, userTradesKey(userID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list trades for user %s: %w: %w",
			userID, domain.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = tradeKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w: %w", domain.ErrStoreUnavailable, err)
	}

	trades := make([]domain.Trade, 0, len(ids))
	for i, fields := range maps {
		if len(fields) == 0 {
			continue
		}
		trades = append(trades, tradeFromFields(ids[i], fields))
	}
	return trades, nil
}

func tradeKey(id string) string {
	return domain.KeyPrefix + "trade:" + id
}

func allTradesKey() string {
	return domain.KeyPrefix + "trades"
}

func userTradesKey(userID string) string {
	return domain.KeyPrefix + "user:" + userID + ":trades"
}
