package trade

import (
	"context"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// OfferRepository reads and conditionally removes live offers.
type OfferRepository interface {
	Get(ctx context.Context, id string) (domain.Offer, error)
	ByUser(ctx context.Context, userID string) ([]domain.Offer, error)
	DeleteIfExists(ctx context.Context, id, userID string) (bool, error)
	Insert(ctx context.Context, o domain.Offer) error
}

// TradeLog appends to and reads the immutable trade record.
type TradeLog interface {
	Append(ctx context.Context, t domain.Trade) error
	ByUser(ctx context.Context, userID string) ([]domain.Trade, error)
}

// Messenger posts the settlement notice into the pair's conversation.
type Messenger interface {
	PostSystemMessage(ctx context.Context, recipients [2]string, text string) error
}
