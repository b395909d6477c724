package trade

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/swapmeet-io/swapmeet/internal/domain"
	"github.com/swapmeet-io/swapmeet/internal/metrics"
)

// --- Mocks ---

type mockOffers struct {
	getFn            func(ctx context.Context, id string) (domain.Offer, error)
	byUserFn         func(ctx context.Context, userID string) ([]domain.Offer, error)
	deleteIfExistsFn func(ctx context.Context, id, userID string) (bool, error)
	insertFn         func(ctx context.Context, o domain.Offer) error
	inserted         []domain.Offer
	deleted          []string
}

func (m *mockOffers) Get(ctx context.Context, id string) (domain.Offer, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Offer{}, domain.ErrOfferNotFound
}

func (m *mockOffers) ByUser(ctx context.Context, userID string) ([]domain.Offer, error) {
	if m.byUserFn != nil {
		return m.byUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockOffers) DeleteIfExists(ctx context.Context, id, userID string) (bool, error) {
	m.deleted = append(m.deleted, id)
	if m.deleteIfExistsFn != nil {
		return m.deleteIfExistsFn(ctx, id, userID)
	}
	return true, nil
}

func (m *mockOffers) Insert(ctx context.Context, o domain.Offer) error {
	m.inserted = append(m.inserted, o)
	if m.insertFn != nil {
		return m.insertFn(ctx, o)
	}
	return nil
}

type mockTradeLog struct {
	appendFn func(ctx context.Context, t domain.Trade) error
	byUserFn func(ctx context.Context, userID string) ([]domain.Trade, error)
	appended []domain.Trade
}

func (m *mockTradeLog) Append(ctx context.Context, t domain.Trade) error {
	m.appended = append(m.appended, t)
	if m.appendFn != nil {
		return m.appendFn(ctx, t)
	}
	return nil
}

func (m *mockTradeLog) ByUser(ctx context.Context, userID string) ([]domain.Trade, error) {
	if m.byUserFn != nil {
		return m.byUserFn(ctx, userID)
	}
	return nil, nil
}

type mockMessenger struct {
	postFn func(ctx context.Context, recipients [2]string, text string) error
	posted []string
}

func (m *mockMessenger) PostSystemMessage(ctx context.Context, recipients [2]string, text string) error {
	m.posted = append(m.posted, text)
	if m.postFn != nil {
		return m.postFn(ctx, recipients, text)
	}
	return nil
}

func initiatingOffer() domain.Offer {
	return domain.Offer{
		ID:      "o1",
		UserID:  "u1",
		Product: "desk lamp",
		CreatedAt: time.Date(
			2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func counterpartyInventory() []domain.Offer {
	return []domain.Offer{
		{ID: "c-newer", UserID: "u2", Product: "bicycle",
			CreatedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "c-older", UserID: "u2", Product: "toaster",
			CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func happyPathOffers() *mockOffers {
	return &mockOffers{
		getFn: func(_ context.Context, id string) (domain.Offer, error) {
			if id != "o1" {
				return domain.Offer{}, domain.ErrOfferNotFound
			}
			return initiatingOffer(), nil
		},
		byUserFn: func(_ context.Context, _ string) ([]domain.Offer, error) {
			return counterpartyInventory(), nil
		},
	}
}

// --- Tests ---

func TestSettle(t *testing.T) {
	offers := happyPathOffers()
	log := &mockTradeLog{}
	msgs := &mockMessenger{}
	svc := New(offers, log, msgs, zap.NewNop())

	tr, err := svc.Settle(context.Background(), "o1", "u1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tr.ID == "" {
		t.Error("expected an assigned trade id")
	}
	if tr.Participants != [2]string{"u1", "u2"} {
		t.Errorf("unexpected participants: %v", tr.Participants)
	}
	// The counterparty's oldest offer is taken.
	if tr.Items != [2]string{"o1", "c-older"} {
		t.Errorf("unexpected items: %v", tr.Items)
	}
	if tr.CompletedAt.IsZero() {
		t.Error("expected a completion time")
	}

	wantDeleted := []string{"o1", "c-older"}
	if len(offers.deleted) != 2 || offers.deleted[0] != wantDeleted[0] || offers.deleted[1] != wantDeleted[1] {
		t.Errorf("unexpected deletes: %v", offers.deleted)
	}
	if len(log.appended) != 1 || log.appended[0].ID != tr.ID {
		t.Errorf("trade not recorded: %v", log.appended)
	}
	if len(msgs.posted) != 1 {
		t.Fatalf("expected one settlement notice, got %d", len(msgs.posted))
	}
	if msgs.posted[0] != "Trade completed: desk lamp for toaster" {
		t.Errorf("unexpected notice: %q", msgs.posted[0])
	}
}

func TestSettle_InvalidRequest(t *testing.T) {
	svc := New(&mockOffers{}, &mockTradeLog{}, &mockMessenger{}, zap.NewNop())

	if _, err := svc.Settle(context.Background(), "", "u1", "u2"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.Settle(context.Background(), "o1", "", "u2"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.Settle(context.Background(), "o1", "u1", ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSettle_OfferOwnedBySomeoneElse(t *testing.T) {
	offers := happyPathOffers()
	log := &mockTradeLog{}
	svc := New(offers, log, &mockMessenger{}, zap.NewNop())

	_, err := svc.Settle(context.Background(), "o1", "impostor", "u2")
	if !errors.Is(err, domain.ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
	if len(offers.deleted) != 0 {
		t.Errorf("unexpected deletes: %v", offers.deleted)
	}
	if len(log.appended) != 0 {
		t.Errorf("unexpected trades: %v", log.appended)
	}
}

func TestSettle_OfferNotFound(t *testing.T) {
	svc := New(&mockOffers{}, &mockTradeLog{}, &mockMessenger{}, zap.NewNop())

	_, err := svc.Settle(context.Background(), "missing", "u1", "u2")
	if !errors.Is(err, domain.ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
}

func TestSettle_CounterpartyHasNoOffer(t *testing.T) {
	offers := happyPathOffers()
	offers.byUserFn = func(_ context.Context, _ string) ([]domain.Offer, error) {
		return nil, nil
	}
	log := &mockTradeLog{}
	svc := New(offers, log, &mockMessenger{}, zap.NewNop())

	_, err := svc.Settle(context.Background(), "o1", "u1", "u2")
	if !errors.Is(err, domain.ErrCounterpartyHasNoOffer) {
		t.Fatalf("expected ErrCounterpartyHasNoOffer, got %v", err)
	}
	// Nothing was deleted or recorded.
	if len(offers.deleted) != 0 {
		t.Errorf("unexpected deletes: %v", offers.deleted)
	}
	if len(log.appended) != 0 {
		t.Errorf("unexpected trades: %v", log.appended)
	}
}

func TestSettle_InitiatingOfferIsNotACandidate(t *testing.T) {
	// The counterparty's only listing is the initiating offer itself.
	offers := happyPathOffers()
	offers.byUserFn = func(_ context.Context, _ string) ([]domain.Offer, error) {
		return []domain.Offer{initiatingOffer()}, nil
	}
	svc := New(offers, &mockTradeLog{}, &mockMessenger{}, zap.NewNop())

	_, err := svc.Settle(context.Background(), "o1", "u1", "u1")
	if !errors.Is(err, domain.ErrCounterpartyHasNoOffer) {
		t.Fatalf("expected ErrCounterpartyHasNoOffer, got %v", err)
	}
}

func TestSettle_LosesRaceForInitiatingOffer(t *testing.T) {
	offers := happyPathOffers()
	offers.deleteIfExistsFn = func(_ context.Context, id, _ string) (bool, error) {
		return id != "o1", nil
	}
	log := &mockTradeLog{}
	svc := New(offers, log, &mockMessenger{}, zap.NewNop())

	_, err := svc.Settle(context.Background(), "o1", "u1", "u2")
	if !errors.Is(err, domain.ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
	if len(log.appended) != 0 {
		t.Errorf("no trade may be recorded after a lost race: %v", log.appended)
	}
}

func TestSettle_FallsThroughToNextCandidate(t *testing.T) {
	// The oldest candidate vanishes between listing and claiming.
	offers := happyPathOffers()
	offers.deleteIfExistsFn = func(_ context.Context, id, _ string) (bool, error) {
		return id != "c-older", nil
	}
	svc := New(offers, &mockTradeLog{}, &mockMessenger{}, zap.NewNop())

	tr, err := svc.Settle(context.Background(), "o1", "u1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Items[1] != "c-newer" {
		t.Errorf("expected next candidate taken, got %s", tr.Items[1])
	}
}

func TestSettle_RestoresInitiatingOfferWhenAllCandidatesVanish(t *testing.T) {
	offers := happyPathOffers()
	offers.deleteIfExistsFn = func(_ context.Context, id, _ string) (bool, error) {
		return id == "o1", nil
	}
	log := &mockTradeLog{}
	svc := New(offers, log, &mockMessenger{}, zap.NewNop())

	_, err := svc.Settle(context.Background(), "o1", "u1", "u2")
	if !errors.Is(err, domain.ErrCounterpartyHasNoOffer) {
		t.Fatalf("expected ErrCounterpartyHasNoOffer, got %v", err)
	}
	if len(offers.inserted) != 1 || offers.inserted[0].ID != "o1" {
		t.Errorf("initiating offer not restored: %v", offers.inserted)
	}
	if len(log.appended) != 0 {
		t.Errorf("no trade may be recorded: %v", log.appended)
	}
}

func TestSettle_StoreErrorDuringClaimRestores(t *testing.T) {
	offers := happyPathOffers()
	offers.deleteIfExistsFn = func(_ context.Context, id, _ string) (bool, error) {
		if id == "o1" {
			return true, nil
		}
		return false, domain.ErrStoreUnavailable
	}
	svc := New(offers, &mockTradeLog{}, &mockMessenger{}, zap.NewNop())

	_, err := svc.Settle(context.Background(), "o1", "u1", "u2")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if len(offers.inserted) != 1 {
		t.Errorf("initiating offer not restored: %v", offers.inserted)
	}
}

func TestSettle_MessengerFailureDoesNotFailSettlement(t *testing.T) {
	offers := happyPathOffers()
	msgs := &mockMessenger{
		postFn: func(_ context.Context, _ [2]string, _ string) error {
			return errors.New("conversation store down")
		},
	}
	svc := New(offers, &mockTradeLog{}, msgs, zap.NewNop())

	if _, err := svc.Settle(context.Background(), "o1", "u1", "u2"); err != nil {
		t.Fatalf("settlement must survive a messaging failure: %v", err)
	}
}

func TestSettle_TradeLogFailure(t *testing.T) {
	offers := happyPathOffers()
	log := &mockTradeLog{
		appendFn: func(_ context.Context, _ domain.Trade) error {
			return domain.ErrStoreUnavailable
		},
	}
	msgs := &mockMessenger{}
	svc := New(offers, log, msgs, zap.NewNop())

	_, err := svc.Settle(context.Background(), "o1", "u1", "u2")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	// Both claimed offers go back on the market.
	if len(offers.inserted) != 2 {
		t.Fatalf("expected both offers restored, got %v", offers.inserted)
	}
	if offers.inserted[0].ID != "o1" || offers.inserted[1].ID != "c-older" {
		t.Errorf("unexpected restores: %v", offers.inserted)
	}
	if len(msgs.posted) != 0 {
		t.Errorf("no notice may be posted for an unrecorded trade: %v", msgs.posted)
	}
}

func TestSettle_StoreErrorDuringGetCountsAsUnavailable(t *testing.T) {
	offers := happyPathOffers()
	offers.getFn = func(_ context.Context, _ string) (domain.Offer, error) {
		return domain.Offer{}, fmt.Errorf("get offer: %w", domain.ErrStoreUnavailable)
	}
	svc := New(offers, &mockTradeLog{}, &mockMessenger{}, zap.NewNop())

	before := testutil.ToFloat64(metrics.SettlementFailuresTotal.WithLabelValues("store_unavailable"))

	_, err := svc.Settle(context.Background(), "o1", "u1", "u2")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	after := testutil.ToFloat64(metrics.SettlementFailuresTotal.WithLabelValues("store_unavailable"))
	if after != before+1 {
		t.Errorf("store_unavailable failures = %v, want %v", after, before+1)
	}
}

func TestHistory(t *testing.T) {
	log := &mockTradeLog{
		byUserFn: func(_ context.Context, userID string) ([]domain.Trade, error) {
			if userID != "u1" {
				t.Errorf("unexpected user: %s", userID)
			}
			return []domain.Trade{{ID: "t1"}}, nil
		},
	}
	svc := New(&mockOffers{}, log, &mockMessenger{}, zap.NewNop())

	trades, err := svc.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 1 || trades[0].ID != "t1" {
		t.Errorf("unexpected trades: %v", trades)
	}
}

func TestHistory_EmptyUserID(t *testing.T) {
	svc := New(&mockOffers{}, &mockTradeLog{}, &mockMessenger{}, zap.NewNop())

	if _, err := svc.History(context.Background(), ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
