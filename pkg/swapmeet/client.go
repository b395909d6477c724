package swapmeet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/swapmeet-io/swapmeet/internal/db"
	dbRedis "github.com/swapmeet-io/swapmeet/internal/db/redis"
	"github.com/swapmeet-io/swapmeet/internal/domain"
	"github.com/swapmeet-io/swapmeet/internal/embedding/word2vec"
	messagerepo "github.com/swapmeet-io/swapmeet/internal/repository/message"
	offerrepo "github.com/swapmeet-io/swapmeet/internal/repository/offer"
	traderepo "github.com/swapmeet-io/swapmeet/internal/repository/trade"
	"github.com/swapmeet-io/swapmeet/internal/similarity"
	healthuc "github.com/swapmeet-io/swapmeet/internal/usecase/health"
	messageuc "github.com/swapmeet-io/swapmeet/internal/usecase/message"
	offeruc "github.com/swapmeet-io/swapmeet/internal/usecase/offer"
	rankuc "github.com/swapmeet-io/swapmeet/internal/usecase/rank"
	tradeuc "github.com/swapmeet-io/swapmeet/internal/usecase/trade"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so service wrappers can be stubbed in tests.
type offerUseCase interface {
	Submit(ctx context.Context, o domain.Offer) (domain.Offer, error)
	ByUser(ctx context.Context, userID string) ([]domain.Offer, error)
	Withdraw(ctx context.Context, id, userID string) error
}

type rankUseCase interface {
	Rank(ctx context.Context, q domain.Query) ([]domain.ScoredOffer, error)
}

type tradeUseCase interface {
	Settle(ctx context.Context, offerID, initiatorID, counterpartyID string) (domain.Trade, error)
	History(ctx context.Context, userID string) ([]domain.Trade, error)
}

type messageUseCase interface {
	Post(ctx context.Context, m domain.Message) (domain.Message, error)
	History(ctx context.Context, userID, peerID string, since time.Time) ([]domain.Message, error)
}

// Client is the swapmeet SDK entry point.
type Client struct {
	store    db.Store
	offerSvc offerUseCase
	rankSvc  rankUseCase
	tradeSvc tradeUseCase
	msgSvc   messageUseCase
	health   *healthuc.Service
	obs      *observer
}

// New creates a swapmeet Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{dimensions: word2vec.DefaultDimensions}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("swapmeet: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("swapmeet: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("swapmeet: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	vectorizer := buildVectorizer(cfg)

	// Internal services log through zap; the SDK surfaces its own
	// observer instead, so the inner logger stays silent.
	logger := zap.NewNop()
	scorer := similarity.New(vectorizer, logger)

	offerRepo := offerrepo.New(store)
	tradeRepo := traderepo.New(store)
	msgRepo := messagerepo.New(store)

	msgSvc := messageuc.New(msgRepo)

	var rankOpts []rankuc.Option
	if cfg.rankTimeout > 0 {
		rankOpts = append(rankOpts, rankuc.WithTimeout(cfg.rankTimeout))
	}
	var tradeOpts []tradeuc.Option
	if cfg.tradeTimeout > 0 {
		tradeOpts = append(tradeOpts, tradeuc.WithTimeout(cfg.tradeTimeout))
	}

	var localCheck healthuc.DegradedReporter
	if dr, ok := vectorizer.(healthuc.DegradedReporter); ok {
		localCheck = dr
	}

	return &Client{
		store:    store,
		offerSvc: offeruc.New(offerRepo),
		rankSvc:  rankuc.New(offerRepo, scorer, logger, rankOpts...),
		tradeSvc: tradeuc.New(offerRepo, tradeRepo, msgSvc, logger, tradeOpts...),
		msgSvc:   msgSvc,
		health:   healthuc.New(store, nil, localCheck),
		obs:      obs,
	}
}

// buildVectorizer picks the token vector source: a custom vectorizer,
// a word2vec model file, or a degraded zero-vector fallback.
func buildVectorizer(cfg *clientConfig) Vectorizer {
	if cfg.vectorizer != nil {
		return cfg.vectorizer
	}
	if cfg.word2vecPath != "" {
		lookup, err := word2vec.Load(cfg.word2vecPath)
		if err == nil {
			return lookup
		}
	}
	return word2vec.NewDegraded(cfg.dimensions)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health reports component status.
func (c *Client) Health(ctx context.Context) healthuc.Report {
	return c.health.Check(ctx)
}

// Rank scores every open offer against the query, best first.
func (c *Client) Rank(ctx context.Context, q Query) (_ []ScoredOffer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rank", start, err) }()

	ranked, err := c.rankSvc.Rank(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	return ranked, nil
}

// Offers returns the offer lifecycle service.
func (c *Client) Offers() *OfferService {
	return &OfferService{svc: c.offerSvc, obs: c.obs}
}

// Trades returns the settlement service.
func (c *Client) Trades() *TradeService {
	return &TradeService{svc: c.tradeSvc, obs: c.obs}
}

// Messages returns the conversation service.
func (c *Client) Messages() *MessageService {
	return &MessageService{svc: c.msgSvc, obs: c.obs}
}
