package swapmeet

import (
	"context"
	"fmt"
	"time"
)

// OfferService manages barter offers.
type OfferService struct {
	svc offerUseCase
	obs *observer
}

// Post validates and stores a new offer, returning it with its
// assigned identity and creation time.
func (s *OfferService) Post(ctx context.Context, o Offer) (_ Offer, err error) {
	start := time.Now()
	defer func() { s.obs.observe("offer.post", start, err) }()

	stored, err := s.svc.Submit(ctx, o)
	if err != nil {
		return Offer{}, fmt.Errorf("post offer: %w", err)
	}
	return stored, nil
}

// ByUser returns all offers posted by the given user.
func (s *OfferService) ByUser(ctx context.Context, userID string) (_ []Offer, err error) {
	start := time.Now()
	defer func() { s.obs.observe("offer.by_user", start, err) }()

	offers, err := s.svc.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

// Withdraw removes an offer owned by the given user.
func (s *OfferService) Withdraw(ctx context.Context, id, userID string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("offer.withdraw", start, err) }()

	if err = s.svc.Withdraw(ctx, id, userID); err != nil {
		return fmt.Errorf("withdraw offer: %w", err)
	}
	return nil
}

// TradeService settles exchanges and reads the trade log.
type TradeService struct {
	svc tradeUseCase
	obs *observer
}

// Settle exchanges the initiator's offer against one of the
// counterparty's offers. On success both offers are gone from the
// marketplace.
func (s *TradeService) Settle(
	ctx context.Context, offerID, initiatorID, counterpartyID string,
) (_ Trade, err error) {
	start := time.Now()
	defer func() { s.obs.observe("trade.settle", start, err) }()

	t, err := s.svc.Settle(ctx, offerID, initiatorID, counterpartyID)
	if err != nil {
		return Trade{}, fmt.Errorf("settle trade: %w", err)
	}
	return t, nil
}

// History returns the user's completed trades, newest first.
func (s *TradeService) History(ctx context.Context, userID string) (_ []Trade, err error) {
	start := time.Now()
	defer func() { s.obs.observe("trade.history", start, err) }()

	trades, err := s.svc.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("trade history: %w", err)
	}
	return trades, nil
}

// MessageService handles user-to-user conversations.
type MessageService struct {
	svc messageUseCase
	obs *observer
}

// Post validates and stores a message.
func (s *MessageService) Post(ctx context.Context, m Message) (_ Message, err error) {
	start := time.Now()
	defer func() { s.obs.observe("message.post", start, err) }()

	stored, err := s.svc.Post(ctx, m)
	if err != nil {
		return Message{}, fmt.Errorf("post message: %w", err)
	}
	return stored, nil
}

// History returns the conversation between two users sent strictly
// after since, oldest first. A zero since returns everything.
func (s *MessageService) History(
	ctx context.Context, userID, peerID string, since time.Time,
) (_ []Message, err error) {
	start := time.Now()
	defer func() { s.obs.observe("message.history", start, err) }()

	messages, err := s.svc.History(ctx, userID, peerID, since)
	if err != nil {
		return nil, fmt.Errorf("message history: %w", err)
	}
	return messages, nil
}
