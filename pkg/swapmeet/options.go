package swapmeet

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	word2vecPath string
	vectorizer   Vectorizer
	dimensions   int

	rankTimeout  time.Duration
	tradeTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithWord2Vec loads token vectors from a binary word2vec model. If
// the file cannot be read the client still works; similarity scores
// just contribute nothing to ranking.
func WithWord2Vec(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.word2vecPath = path
	})
}

// WithVectorizer sets a custom token vector source. Takes precedence
// over WithWord2Vec.
func WithVectorizer(v Vectorizer) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorizer = v
	})
}

// WithDimensions sets the vector dimension used when no model could
// be loaded. Defaults to 300.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithRankTimeout bounds a single ranking pass. Zero means no bound.
func WithRankTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.rankTimeout = d
	})
}

// WithTradeTimeout bounds a single settlement. Zero means no bound.
func WithTradeTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.tradeTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
