// Package offer persists open offers as Redis hashes with set-based id
// indexes. An offer's presence in the store is its eligibility for
// ranking and trade; settlement removes it, nothing else does.
package offer

import (
	"context"
	"fmt"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// store is the consumer interface for offers.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	DelIfExists(ctx context.Context, key string) (bool, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo stores offers.
type Repo struct {
	store store
}

// New creates an offer repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert stores an offer and registers it in the global and per-user indexes.
func (r *Repo) Insert(ctx context.Context, o domain.Offer) error {
	if err := r.store.HSet(ctx, offerKey(o.ID), offerToFields(o)); err != nil {
		return fmt.Errorf("insert offer %s: %w: %w", o.ID, domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SAdd(ctx, allOffersKey(), o.ID); err != nil {
		return fmt.Errorf("index offer %s: %w: %w", o.ID, domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SAdd(ctx, userOffersKey(o.UserID), o.ID); err != nil {
		return fmt.Errorf("index offer %s for user %s: %w: %w",
			o.ID, o.UserID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// All returns every live offer. Offers deleted between the index read
// and the hash fetch are silently dropped (ranking staleness is fine).
func (r *Repo) All(ctx context.Context) ([]domain.Offer, error) {
	ids, err := r.store.SMembers(ctx, allOffersKey())
	if err != nil {
		return nil, fmt.Errorf("list offers: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return r.fetch(ctx, ids)
}

// ByUser returns the user's live offers.
func (r *Repo) ByUser(ctx context.Context, userID string) ([]domain.Offer, error) {
	ids, err := r.store.SMembers(ctx, userOffersKey(userID))
	if err != nil {
		return nil, fmt.Errorf("list offers for user %s: %w: %w",
			userID, domain.ErrStoreUnavailable, err)
	}
	return r.fetch(ctx, ids)
}

// Get returns an offer by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.Offer, error) {
	fields, err := r.store.HGetAll(ctx, offerKey(id))
	if err != nil {
		return domain.Offer{}, fmt.Errorf("get offer %s: %w: %w",
			id, domain.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return domain.Offer{}, domain.ErrOfferNotFound
	}
	return offerFromFields(id, fields), nil
}

// DeleteIfExists removes an offer and reports whether it still existed.
// The hash delete is the atomic arbiter; index cleanup is idempotent and
// runs regardless so a lost race never leaves a dangling index entry.
func (r *Repo) DeleteIfExists(ctx context.Context, id, userID string) (bool, error) {
	existed, err := r.store.DelIfExists(ctx, offerKey(id))
	if err != nil {
		return false, fmt.Errorf("delete offer %s: %w: %w", id, domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SRem(ctx, allOffersKey(), id); err != nil {
		return existed, fmt.Errorf("unindex offer %s: %w: %w", id, domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SRem(ctx, userOffersKey(userID), id); err != nil {
		return existed, fmt.Errorf("unindex offer %s for user %s: %w: %w",
			id, userID, domain.ErrStoreUnavailable, err)
	}
	return existed, nil
}

func (r *Repo) fetch(ctx context.Context, ids []string) ([]domain.Offer, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = offerKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch offers: %w: %w", domain.ErrStoreUnavailable, err)
	}

	offers := make([]domain.Offer, 0, len(ids))
	for i, fields := range maps {
		if len(fields) == 0 {
			continue
		}
		offers = append(offers, offerFromFields(ids[i], fields))
	}
	return offers, nil
}

func offerKey(id string) string {
	return domain.KeyPrefix + "offer:" + id
}

func allOffersKey() string {
	return domain.KeyPrefix + "offers"
}

func userOffersKey(userID string) string {
	return domain.KeyPrefix + "user:" + userID + ":offers"
}
