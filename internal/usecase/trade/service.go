// Package trade settles barter exchanges. A settlement removes the
// initiating offer and one of the counterparty's offers, then records
// the swap in the immutable trade log. The conditional delete on the
// offer hash is the arbiter: when two settlements race for the same
// offer, exactly one delete succeeds, so at most one trade is written.
package trade

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swapmeet-io/swapmeet/internal/domain"
	"github.com/swapmeet-io/swapmeet/internal/metrics"
)

// Service coordinates trade settlement.
type Service struct {
	offers  OfferRepository
	log     TradeLog
	msgs    Messenger
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures the service.
type Option func(*Service)

// WithTimeout bounds how long a single settlement may run.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a settlement service.
func New(offers OfferRepository, log TradeLog, msgs Messenger, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{offers: offers, log: log, msgs: msgs, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settle exchanges the initiating offer against one of the
// counterparty's offers. The counterparty's oldest offer is taken.
// On success both offers are gone from the marketplace and the
// returned trade has been appended to the log.
func (s *Service) Settle(
	ctx context.Context, offerID, initiatorID, counterpartyID string,
) (domain.Trade, error) {
	if offerID == "" || initiatorID == "" || counterpartyID == "" {
		metrics.SettlementFailuresTotal.WithLabelValues("invalid_request").Inc()
		return domain.Trade{}, fmt.Errorf(
			"%w: offer id, initiator id and counterparty id are required",
			domain.ErrInvalidRequest)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	initiating, err := s.offers.Get(ctx, offerID)
	if err != nil {
		metrics.SettlementFailuresTotal.WithLabelValues(failureLabel(err)).Inc()
		return domain.Trade{}, fmt.Errorf("get initiating offer: %w", err)
	}
	if initiating.UserID != initiatorID {
		metrics.SettlementFailuresTotal.WithLabelValues("offer_not_found").Inc()
		return domain.Trade{}, fmt.Errorf("offer %s does not belong to user %s: %w",
			offerID, initiatorID, domain.ErrOfferNotFound)
	}

	candidates, err := s.counterpartyOffers(ctx, counterpartyID, offerID)
	if err != nil {
		metrics.SettlementFailuresTotal.WithLabelValues("store_unavailable").Inc()
		return domain.Trade{}, err
	}
	if len(candidates) == 0 {
		metrics.SettlementFailuresTotal.WithLabelValues("no_counterparty_offer").Inc()
		return domain.Trade{}, fmt.Errorf(
			"user %s: %w", counterpartyID, domain.ErrCounterpartyHasNoOffer)
	}

	// Claim the initiating offer first. Losing here means a concurrent
	// settlement or withdrawal already took it.
	claimed, err := s.offers.DeleteIfExists(ctx, initiating.ID, initiating.UserID)
	if err != nil {
		metrics.SettlementFailuresTotal.WithLabelValues("store_unavailable").Inc()
		return domain.Trade{}, fmt.Errorf("claim initiating offer: %w", err)
	}
	if !claimed {
		metrics.SettlementFailuresTotal.WithLabelValues("lost_race").Inc()
		return domain.Trade{}, fmt.Errorf("offer %s already taken: %w",
			initiating.ID, domain.ErrOfferNotFound)
	}

	surrendered, err := s.claimCounterpartyOffer(ctx, candidates, counterpartyID)
	if err != nil {
		// Settlement cannot complete; put the initiating offer back.
		s.restore(ctx, initiating)
		return domain.Trade{}, err
	}

	t := domain.Trade{
		ID:           uuid.NewString(),
		Participants: [2]string{initiating.UserID, counterpartyID},
		Items:        [2]string{initiating.ID, surrendered.ID},
		CompletedAt:  time.Now().UTC(),
	}
	if err := s.log.Append(ctx, t); err != nil {
		// An unrecorded trade must not consume the offers.
		s.restore(ctx, initiating)
		s.restore(ctx, surrendered)
		metrics.SettlementFailuresTotal.WithLabelValues("store_unavailable").Inc()
		return domain.Trade{}, fmt.Errorf("record trade: %w", err)
	}

	s.notify(ctx, initiating, surrendered)

	metrics.TradesSettledTotal.Inc()
	s.logger.Info("trade settled",
		zap.String("trade_id", t.ID),
		zap.String("offer", initiating.ID),
		zap.String("counterpart", surrendered.ID))

	return t, nil
}

// History returns the user's completed trades, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]domain.Trade, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	trades, err := s.log.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return trades, nil
}

// counterpartyOffers returns the counterparty's offers oldest first,
// excluding the initiating offer itself.
func (s *Service) counterpartyOffers(
	ctx context.Context, counterpartyID, initiatingOfferID string,
) ([]domain.Offer, error) {
	all, err := s.offers.ByUser(ctx, counterpartyID)
	if err != nil {
		return nil, fmt.Errorf("list counterparty offers: %w", err)
	}

	candidates := make([]domain.Offer, 0, len(all))
	for _, o := range all {
		if o.ID == initiatingOfferID {
			continue
		}
		candidates = append(candidates, o)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return candidates, nil
}

// claimCounterpartyOffer takes the first candidate whose conditional
// delete succeeds. Candidates can vanish between listing and claiming
// when settlements race; losing one just moves on to the next.
func (s *Service) claimCounterpartyOffer(
	ctx context.Context, candidates []domain.Offer, counterpartyID string,
) (domain.Offer, error) {
	for _, c := range candidates {
		claimed, err := s.offers.DeleteIfExists(ctx, c.ID, counterpartyID)
		if err != nil {
			metrics.SettlementFailuresTotal.WithLabelValues("store_unavailable").Inc()
			return domain.Offer{}, fmt.Errorf("claim counterparty offer: %w", err)
		}
		if claimed {
			return c, nil
		}
	}
	metrics.SettlementFailuresTotal.WithLabelValues("no_counterparty_offer").Inc()
	return domain.Offer{}, fmt.Errorf(
		"user %s: %w", counterpartyID, domain.ErrCounterpartyHasNoOffer)
}

// restore re-inserts a claimed offer after a failed settlement. A
// failure here strands the offer; all we can do is log it.
func (s *Service) restore(ctx context.Context, o domain.Offer) {
	if err := s.offers.Insert(ctx, o); err != nil {
		s.logger.Error("failed to restore offer after aborted settlement",
			zap.String("offer_id", o.ID),
			zap.String("user_id", o.UserID),
			zap.Error(err))
	}
}

// failureLabel distinguishes a dead store from a genuinely missing offer.
func failureLabel(err error) string {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return "store_unavailable"
	}
	return "offer_not_found"
}

// notify posts the settlement notice. The trade is already recorded;
// a messaging failure is not worth failing the settlement over.
func (s *Service) notify(ctx context.Context, initiating, surrendered domain.Offer) {
	text := fmt.Sprintf("Trade completed: %s for %s", initiating.Product, surrendered.Product)
	recipients := [2]string{initiating.UserID, surrendered.UserID}
	if err := s.msgs.PostSystemMessage(ctx, recipients, text); err != nil {
		s.logger.Warn("failed to post settlement notice",
			zap.String("offer", initiating.ID),
			zap.Error(err))
	}
}
