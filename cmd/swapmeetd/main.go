package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/swapmeet-io/swapmeet/internal/config"
	dbRedis "github.com/swapmeet-io/swapmeet/internal/db/redis"
	"github.com/swapmeet-io/swapmeet/internal/domain"
	"github.com/swapmeet-io/swapmeet/internal/embedding/word2vec"
	logpkg "github.com/swapmeet-io/swapmeet/internal/logger"
	"github.com/swapmeet-io/swapmeet/internal/metrics"
	messagerepo "github.com/swapmeet-io/swapmeet/internal/repository/message"
	offerrepo "github.com/swapmeet-io/swapmeet/internal/repository/offer"
	traderepo "github.com/swapmeet-io/swapmeet/internal/repository/trade"
	"github.com/swapmeet-io/swapmeet/internal/repository/veccache"
	"github.com/swapmeet-io/swapmeet/internal/similarity"
	chiTransport "github.com/swapmeet-io/swapmeet/internal/transport/chi"
	openaiVec "github.com/swapmeet-io/swapmeet/internal/transport/openai"
	healthuc "github.com/swapmeet-io/swapmeet/internal/usecase/health"
	messageuc "github.com/swapmeet-io/swapmeet/internal/usecase/message"
	offeruc "github.com/swapmeet-io/swapmeet/internal/usecase/offer"
	rankuc "github.com/swapmeet-io/swapmeet/internal/usecase/rank"
	tradeuc "github.com/swapmeet-io/swapmeet/internal/usecase/trade"
	"github.com/swapmeet-io/swapmeet/internal/version"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting swapmeet API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register marketplace metrics explicitly (no init())
	metrics.RegisterDomainMetrics()

	// Build the token vector provider — composition root
	var (
		vectorizer  domain.Vectorizer
		remoteCheck healthuc.VectorChecker
		localCheck  healthuc.DegradedReporter
	)
	switch cfg.Embedding.Provider {
	case "word2vec":
		lookup, err := word2vec.Load(cfg.Embedding.Word2Vec.ModelPath)
		if err != nil {
			// Degraded mode: similarity contributes nothing, ranking
			// still works on category and distance signals.
			logger.Warn("Embedding model failed to load, ranking runs degraded",
				zap.String("path", cfg.Embedding.Word2Vec.ModelPath),
				zap.Error(err))
			lookup = word2vec.NewDegraded(cfg.Embedding.Word2Vec.Dimensions)
		} else {
			logger.Info("Embedding model loaded",
				zap.String("path", cfg.Embedding.Word2Vec.ModelPath),
				zap.Int("tokens", lookup.Size()),
				zap.Int("dimensions", lookup.Dimensions()))
		}
		vectorizer = lookup
		localCheck = lookup
	case "openai":
		base := openaiVec.NewVectorizer(&openaiVec.Config{
			APIKey:     cfg.Embedding.OpenAI.APIKey,
			BaseURL:    cfg.Embedding.OpenAI.BaseURL,
			Model:      cfg.Embedding.OpenAI.Model,
			Dimensions: cfg.Embedding.OpenAI.Dimensions,
			Provider:   "openai",
			Logger:     logger,
		})
		vectorizer = base
		remoteCheck = base
		if cfg.Embedding.OpenAI.CacheVectors {
			vectorizer = veccache.New(
				base, store, cfg.Embedding.OpenAI.Model, metrics.VectorCacheTotal, logger,
			)
		}
		logger.Info("Remote vector provider created",
			zap.String("model", cfg.Embedding.OpenAI.Model),
			zap.Bool("cache", cfg.Embedding.OpenAI.CacheVectors))
	default:
		logger.Fatal("Unknown embedding provider", zap.String("provider", cfg.Embedding.Provider))
	}

	scorer := similarity.New(vectorizer, logger)

	// Create repositories
	offerRepo := offerrepo.New(store)
	tradeRepo := traderepo.New(store)
	msgRepo := messagerepo.New(store)

	// Create use case services
	offerSvc := offeruc.New(offerRepo)
	rankSvc := rankuc.New(offerRepo, scorer, logger,
		rankuc.WithTimeout(time.Duration(cfg.Ranking.TimeoutSec)*time.Second))
	msgSvc := messageuc.New(msgRepo)
	tradeSvc := tradeuc.New(offerRepo, tradeRepo, msgSvc, logger,
		tradeuc.WithTimeout(time.Duration(cfg.Trading.TimeoutSec)*time.Second))
	healthSvc := healthuc.New(store, remoteCheck, localCheck)

	server := chiTransport.NewServer(offerSvc, rankSvc, tradeSvc, msgSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
