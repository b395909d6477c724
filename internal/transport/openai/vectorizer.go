// Package openai provides token vectors from an OpenAI-compatible
// embeddings API, as an alternative to the local word2vec model.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/swapmeet-io/swapmeet/internal/metrics"
)

// Vectorizer implements domain.Vectorizer against an OpenAI-compatible API.
type Vectorizer struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	provider   string
	logger     *zap.Logger
}

// Config holds the vector provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Provider   string
	Logger     *zap.Logger
}

// NewVectorizer creates an OpenAI-compatible token vector provider.
func NewVectorizer(cfg *Config) *Vectorizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Vectorizer{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Vector embeds a single token with transport-level metrics.
func (v *Vectorizer) Vector(ctx context.Context, token string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{token},
		Model:          v.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if v.dimensions > 0 {
		req.Dimensions = v.dimensions
	}

	start := time.Now()

	resp, err := v.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.VectorRequestsTotal.WithLabelValues(v.provider, string(v.model), "error").Inc()
		return nil, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		metrics.VectorRequestsTotal.WithLabelValues(v.provider, string(v.model), "error").Inc()
		return nil, fmt.Errorf("empty embedding response for token %q", token)
	}

	metrics.VectorRequestsTotal.WithLabelValues(v.provider, string(v.model), "success").Inc()
	metrics.VectorRequestDuration.WithLabelValues(v.provider, string(v.model)).Observe(duration.Seconds())

	return resp.Data[0].Embedding, nil
}

// Dimensions returns the configured vector width.
func (v *Vectorizer) Dimensions() int { return v.dimensions }

// HealthCheck verifies API availability via ListModels (free endpoint).
func (v *Vectorizer) HealthCheck(ctx context.Context) error {
	if _, err := v.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("embedding API error %d: %s", reqErr.HTTPStatusCode, detail)
		}
		return fmt.Errorf("embedding API error %d: %w", reqErr.HTTPStatusCode, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error: %s", apiErr.Message)
	}

	return fmt.Errorf("embedding request: %w", err)
}

// extractDetail pulls the "detail" or "message" field out of a raw error body.
func extractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}
