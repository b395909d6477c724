package rank

import (
	"context"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// OfferReader lists the candidate offers to rank.
type OfferReader interface {
	All(ctx context.Context) ([]domain.Offer, error)
}

// Scorer measures semantic similarity between two pieces of text.
type Scorer interface {
	Similarity(ctx context.Context, a, b string) float64
}
