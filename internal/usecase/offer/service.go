// Package offer manages the lifecycle of barter offers: posting,
// listing a user's inventory, and withdrawing.
package offer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// Service handles offer lifecycle operations.
type Service struct {
	repo Repository
}

// New creates an offer service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit validates and stores a new offer, assigning its identity and
// creation time. The stored offer is returned.
func (s *Service) Submit(ctx context.Context, o domain.Offer) (domain.Offer, error) {
	if o.UserID == "" {
		return domain.Offer{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	if o.Product == "" {
		return domain.Offer{}, fmt.Errorf("%w: product is required", domain.ErrInvalidRequest)
	}
	if o.Category == "" {
		return domain.Offer{}, fmt.Errorf("%w: category is required", domain.ErrInvalidRequest)
	}
	if o.Distance < 0 {
		return domain.Offer{}, fmt.Errorf("%w: distance must not be negative", domain.ErrInvalidRequest)
	}

	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()

	if err := s.repo.Insert(ctx, o); err != nil {
		return domain.Offer{}, fmt.Errorf("store offer: %w", err)
	}
	return o, nil
}

// ByUser returns all offers posted by the given user.
func (s *Service) ByUser(ctx context.Context, userID string) ([]domain.Offer, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	offers, err := s.repo.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

// Withdraw removes an offer owned by the given user. Withdrawing an
// offer that was already taken by a settlement reports not found.
func (s *Service) Withdraw(ctx context.Context, id, userID string) error {
	if id == "" || userID == "" {
		return fmt.Errorf("%w: offer id and user id are required", domain.ErrInvalidRequest)
	}

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get offer: %w", err)
	}
	if o.UserID != userID {
		return fmt.Errorf("offer %s: %w", id, domain.ErrOfferNotFound)
	}

	deleted, err := s.repo.DeleteIfExists(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	if !deleted {
		return fmt.Errorf("offer %s: %w", id, domain.ErrOfferNotFound)
	}
	return nil
}
