package veccache

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

// mockVectorizer is the inner provider.
type mockVectorizer struct {
	vec    []float32
	err    error
	calls  int
	tokens []string
}

func (m *mockVectorizer) Vector(_ context.Context, token string) ([]float32, error) {
	m.calls++
	m.tokens = append(m.tokens, token)
	return m.vec, m.err
}

func (m *mockVectorizer) Dimensions() int { return len(m.vec) }

func newTestCachedVectorizer(t *testing.T, inner *mockVectorizer) (*CachedVectorizer, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	cv := New(inner, ms, "test-model", nil, zap.NewNop())
	return cv, ms
}
