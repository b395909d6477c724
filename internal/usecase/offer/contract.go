package offer

import (
	"context"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// Repository defines the storage contract for offers.
type Repository interface {
	Insert(ctx context.Context, o domain.Offer) error
	ByUser(ctx context.Context, userID string) ([]domain.Offer, error)
	Get(ctx context.Context, id string) (domain.Offer, error)
	DeleteIfExists(ctx context.Context, id, userID string) (bool, error)
}
