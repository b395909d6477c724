// Package message persists conversations as sorted sets scored by send
// time, one set per user pair. Reading "everything since t" is a single
// ZRANGEBYSCORE, which is what the polling clients issue.
package message

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// store is the consumer interface for conversations.
type store interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
}

// Repo stores conversation messages.
type Repo struct {
	store store
}

// New creates a message repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Append adds a message to the conversation between users a and b.
// The pair is the conversation identity; the sender may be a third
// party (the system) posting into it.
func (r *Repo) Append(ctx context.Context, a, b string, m domain.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message %s: %w", m.ID, err)
	}
	score := float64(m.SentAt.UnixMilli())
	if err := r.store.ZAdd(ctx, convKey(a, b), score, string(data)); err != nil {
		return fmt.Errorf("append message %s: %w: %w", m.ID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Between returns messages in the conversation between a and b sent
// strictly after since, oldest first. A zero since returns everything.
func (r *Repo) Between(ctx context.Context, a, b string, since time.Time) ([]domain.Message, error) {
	min := float64(0)
	if !since.IsZero() {
		min = float64(since.UnixMilli() + 1)
	}

	raw, err := r.store.ZRangeByScore(ctx, convKey(a, b), min, math.Inf(1))
	if err != nil {
		return nil, fmt.Errorf("fetch conversation: %w: %w", domain.ErrStoreUnavailable, err)
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, entry := range raw {
		var m domain.Message
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			return nil, fmt.Errorf("parse stored message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// convKey orders the pair so both sides resolve the same conversation.
func convKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return domain.KeyPrefix + "conv:" + a + ":" + b
}
