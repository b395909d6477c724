package swapmeet

import (
	"context"
	"time"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// --- offerUseCase mock ---

type mockOfferUC struct {
	submitFn   func(ctx context.Context, o domain.Offer) (domain.Offer, error)
	byUserFn   func(ctx context.Context, userID string) ([]domain.Offer, error)
	withdrawFn func(ctx context.Context, id, userID string) error
}

func (m *mockOfferUC) Submit(ctx context.Context, o domain.Offer) (domain.Offer, error) {
	return m.submitFn(ctx, o)
}

func (m *mockOfferUC) ByUser(ctx context.Context, userID string) ([]domain.Offer, error) {
	return m.byUserFn(ctx, userID)
}

func (m *mockOfferUC) Withdraw(ctx context.Context, id, userID string) error {
	return m.withdrawFn(ctx, id, userID)
}

// --- rankUseCase mock ---

type mockRankUC struct {
	rankFn func(ctx context.Context, q domain.Query) ([]domain.ScoredOffer, error)
}

func (m *mockRankUC) Rank(ctx context.Context, q domain.Query) ([]domain.ScoredOffer, error) {
	return m.rankFn(ctx, q)
}

// --- tradeUseCase mock ---

type mockTradeUC struct {
	settleFn  func(ctx context.Context, offerID, initiatorID, counterpartyID string) (domain.Trade, error)
	historyFn func(ctx context.Context, userID string) ([]domain.Trade, error)
}

func (m *mockTradeUC) Settle(
	ctx context.Context, offerID, initiatorID, counterpartyID string,
) (domain.Trade, error) {
	return m.settleFn(ctx, offerID, initiatorID, counterpartyID)
}

func (m *mockTradeUC) History(ctx context.Context, userID string) ([]domain.Trade, error) {
	return m.historyFn(ctx, userID)
}

// --- messageUseCase mock ---

type mockMessageUC struct {
	postFn    func(ctx context.Context, msg domain.Message) (domain.Message, error)
	historyFn func(ctx context.Context, userID, peerID string, since time.Time) ([]domain.Message, error)
}

func (m *mockMessageUC) Post(ctx context.Context, msg domain.Message) (domain.Message, error) {
	return m.postFn(ctx, msg)
}

func (m *mockMessageUC) History(
	ctx context.Context, userID, peerID string, since time.Time,
) ([]domain.Message, error) {
	return m.historyFn(ctx, userID, peerID, since)
}

// --- helpers ---

func testClient(
	offerSvc offerUseCase,
	rankSvc rankUseCase,
	tradeSvc tradeUseCase,
	msgSvc messageUseCase,
) *Client {
	return &Client{
		offerSvc: offerSvc,
		rankSvc:  rankSvc,
		tradeSvc: tradeSvc,
		msgSvc:   msgSvc,
	}
}
