package message

import (
	"context"
	"time"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// Repository defines the storage contract for conversations.
type Repository interface {
	Append(ctx context.Context, a, b string, m domain.Message) error
	Between(ctx context.Context, a, b string, since time.Time) ([]domain.Message, error)
}
