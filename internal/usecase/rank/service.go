// Package rank orders the marketplace's open offers against a query.
// Every offer gets a composite score from three signals: an exact
// category match, semantic similarity of product and details text, and
// proximity of travel distance. The category bonus is large enough
// that any category match outranks any non-match.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/swapmeet-io/swapmeet/internal/domain"
	"github.com/swapmeet-io/swapmeet/internal/metrics"
)

const (
	categoryMatchBonus = 10000
	similarityWeight   = 50
	proximityBase      = 25
)

// Service ranks offers against queries.
type Service struct {
	offers  OfferReader
	scorer  Scorer
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures the service.
type Option func(*Service)

// WithTimeout bounds how long a single ranking request may run.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a ranking service.
func New(offers OfferReader, scorer Scorer, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{offers: offers, scorer: scorer, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank scores every open offer against the query and returns the full
// set ordered best first. Ties break toward the newer offer.
func (s *Service) Rank(ctx context.Context, q domain.Query) ([]domain.ScoredOffer, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()

	candidates, err := s.offers.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load offers: %w", err)
	}

	scored := make([]domain.ScoredOffer, 0, len(candidates))
	for _, o := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ranking aborted: %w: %w", domain.ErrStoreUnavailable, err)
		}
		scored = append(scored, s.score(ctx, q, o))
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].CreatedAt.After(scored[j].CreatedAt)
	})

	metrics.RankDuration.Observe(time.Since(start).Seconds())
	metrics.RankCandidates.Observe(float64(len(scored)))

	s.logger.Debug("ranked offers",
		zap.Int("candidates", len(scored)),
		zap.Duration("took", time.Since(start)))

	return scored, nil
}

func (s *Service) score(ctx context.Context, q domain.Query, o domain.Offer) domain.ScoredOffer {
	so := domain.ScoredOffer{Offer: o}

	if q.Category != "" && q.Category == o.Category {
		so.CategoryScore = categoryMatchBonus
	}

	so.SimilarityScore = similarityWeight *
		(s.scorer.Similarity(ctx, q.Details, o.Details) +
			s.scorer.Similarity(ctx, q.Product, o.Product))

	gap := math.Abs(float64(q.Distance - o.Distance))
	so.DistanceScore = proximityBase / (1 + gap)

	so.Score = so.CategoryScore + so.SimilarityScore + so.DistanceScore
	return so
}
