// Package message handles user-to-user conversations, including the
// trade proposals and settlement notices that ride on them.
package message

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// Service handles conversation operations.
type Service struct {
	repo Repository
}

// New creates a message service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Post validates and stores a message, assigning its identity and send
// time. An empty type defaults to a plain text message.
func (s *Service) Post(ctx context.Context, m domain.Message) (domain.Message, error) {
	if m.Sender == "" || m.Recipient == "" {
		return domain.Message{}, fmt.Errorf(
			"%w: sender and recipient are required", domain.ErrInvalidRequest)
	}

	switch m.Type {
	case "":
		m.Type = domain.MessageTypeText
	case domain.MessageTypeText:
	case domain.MessageTypeTrade:
		if m.Trade == nil {
			return domain.Message{}, fmt.Errorf(
				"%w: trade message requires a proposal", domain.ErrInvalidRequest)
		}
	default:
		return domain.Message{}, fmt.Errorf(
			"%w: unknown message type %q", domain.ErrInvalidRequest, m.Type)
	}

	if m.Type == domain.MessageTypeText && m.Text == "" {
		return domain.Message{}, fmt.Errorf("%w: text is required", domain.ErrInvalidRequest)
	}

	m.ID = uuid.NewString()
	m.SentAt = time.Now().UTC()

	if err := s.repo.Append(ctx, m.Sender, m.Recipient, m); err != nil {
		return domain.Message{}, fmt.Errorf("store message: %w", err)
	}
	return m, nil
}

// History returns the conversation between two users sent strictly
// after since, oldest first. A zero since returns everything.
func (s *Service) History(
	ctx context.Context, userID, peerID string, since time.Time,
) ([]domain.Message, error) {
	if userID == "" || peerID == "" {
		return nil, fmt.Errorf("%w: both participants are required", domain.ErrInvalidRequest)
	}
	messages, err := s.repo.Between(ctx, userID, peerID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}
	return messages, nil
}

// PostSystemMessage drops a marketplace notice into the conversation
// between the two recipients.
func (s *Service) PostSystemMessage(ctx context.Context, recipients [2]string, text string) error {
	m := domain.Message{
		ID:     uuid.NewString(),
		Sender: domain.SystemSender,
		Text:   text,
		Type:   domain.MessageTypeText,
		SentAt: time.Now().UTC(),
	}
	if err := s.repo.Append(ctx, recipients[0], recipients[1], m); err != nil {
		return fmt.Errorf("store system message: %w", err)
	}
	return nil
}
