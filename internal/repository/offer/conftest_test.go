package offer

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delIfExistsFn  func(ctx context.Context, key string) (bool, error)
	saddFn         func(ctx context.Context, key string, members ...string) error
	sremFn         func(ctx context.Context, key string, members ...string) error
	smembersFn     func(ctx context.Context, key string) ([]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) DelIfExists(ctx context.Context, key string) (bool, error) {
	if m.delIfExistsFn != nil {
		return m.delIfExistsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) SAdd(ctx context.Context, key string, members ...string) error {
	if m.saddFn != nil {
		return m.saddFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) SRem(ctx context.Context, key string, members ...string) error {
	if m.sremFn != nil {
		return m.sremFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.smembersFn != nil {
		return m.smembersFn(ctx, key)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testOffer(id string) domain.Offer {
	return domain.Offer{
		ID:        id,
		UserID:    "u1",
		UserName:  "kevin",
		Product:   "Desk Lamp",
		Category:  "Furniture",
		Distance:  5,
		Details:   "barely used lamp",
		CreatedAt: time.UnixMilli(1700000000000).UTC(),
	}
}

func testFields(o domain.Offer) map[string]string {
	return map[string]string{
		fieldUserID:    o.UserID,
		fieldUserName:  o.UserName,
		fieldProduct:   o.Product,
		fieldCategory:  o.Category,
		fieldDistance:  strconv.Itoa(o.Distance),
		fieldDetails:   o.Details,
		fieldCreatedAt: strconv.FormatInt(o.CreatedAt.UnixMilli(), 10),
	}
}
