package offer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	insertFn         func(ctx context.Context, o domain.Offer) error
	byUserFn         func(ctx context.Context, userID string) ([]domain.Offer, error)
	getFn            func(ctx context.Context, id string) (domain.Offer, error)
	deleteIfExistsFn func(ctx context.Context, id, userID string) (bool, error)
}

func (m *mockRepo) Insert(ctx context.Context, o domain.Offer) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, o)
	}
	return nil
}

func (m *mockRepo) ByUser(ctx context.Context, userID string) ([]domain.Offer, error) {
	if m.byUserFn != nil {
		return m.byUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (domain.Offer, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Offer{}, domain.ErrOfferNotFound
}

func (m *mockRepo) DeleteIfExists(ctx context.Context, id, userID string) (bool, error) {
	if m.deleteIfExistsFn != nil {
		return m.deleteIfExistsFn(ctx, id, userID)
	}
	return false, nil
}

// --- Tests ---

func TestSubmit_AssignsIdentityAndTime(t *testing.T) {
	var stored domain.Offer
	repo := &mockRepo{
		insertFn: func(_ context.Context, o domain.Offer) error {
			stored = o
			return nil
		},
	}
	svc := New(repo)

	got, err := svc.Submit(context.Background(), domain.Offer{
		UserID:   "u1",
		UserName: "alice",
		Product:  "desk lamp",
		Category: "home",
		Distance: 5,
		Details:  "warm light, works fine",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID == "" {
		t.Error("expected an assigned id")
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected an assigned creation time")
	}
	if time.Since(got.CreatedAt) > time.Minute {
		t.Errorf("creation time not recent: %v", got.CreatedAt)
	}
	if stored.ID != got.ID || stored.Product != "desk lamp" {
		t.Errorf("stored offer mismatch: %+v", stored)
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc := New(&mockRepo{})

	cases := []struct {
		name  string
		offer domain.Offer
	}{
		{"missing user", domain.Offer{Product: "lamp", Category: "home"}},
		{"missing product", domain.Offer{UserID: "u1", Category: "home"}},
		{"missing category", domain.Offer{UserID: "u1", Product: "lamp"}},
		{"negative distance", domain.Offer{UserID: "u1", Product: "lamp", Category: "home", Distance: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.offer)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestSubmit_StoreError(t *testing.T) {
	repo := &mockRepo{
		insertFn: func(_ context.Context, _ domain.Offer) error {
			return domain.ErrStoreUnavailable
		},
	}
	svc := New(repo)

	_, err := svc.Submit(context.Background(), domain.Offer{UserID: "u1", Product: "lamp", Category: "home"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestByUser(t *testing.T) {
	repo := &mockRepo{
		byUserFn: func(_ context.Context, userID string) ([]domain.Offer, error) {
			if userID != "u1" {
				t.Errorf("unexpected user: %s", userID)
			}
			return []domain.Offer{{ID: "o1"}, {ID: "o2"}}, nil
		},
	}
	svc := New(repo)

	offers, err := svc.ByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 2 {
		t.Errorf("expected 2 offers, got %d", len(offers))
	}
}

func TestByUser_EmptyUserID(t *testing.T) {
	svc := New(&mockRepo{})

	if _, err := svc.ByUser(context.Background(), ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	repo := &mockRepo{
		getFn: func(_ context.Context, id string) (domain.Offer, error) {
			return domain.Offer{ID: id, UserID: "u1"}, nil
		},
		deleteIfExistsFn: func(_ context.Context, id, userID string) (bool, error) {
			if id != "o1" || userID != "u1" {
				t.Errorf("unexpected delete args: %s %s", id, userID)
			}
			return true, nil
		},
	}
	svc := New(repo)

	if err := svc.Withdraw(context.Background(), "o1", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithdraw_NotOwner(t *testing.T) {
	repo := &mockRepo{
		getFn: func(_ context.Context, id string) (domain.Offer, error) {
			return domain.Offer{ID: id, UserID: "someone-else"}, nil
		},
	}
	svc := New(repo)

	err := svc.Withdraw(context.Background(), "o1", "u1")
	if !errors.Is(err, domain.ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
}

func TestWithdraw_AlreadyGone(t *testing.T) {
	repo := &mockRepo{
		getFn: func(_ context.Context, id string) (domain.Offer, error) {
			return domain.Offer{ID: id, UserID: "u1"}, nil
		},
		deleteIfExistsFn: func(_ context.Context, _, _ string) (bool, error) {
			// Settled out from under us between Get and delete.
			return false, nil
		},
	}
	svc := New(repo)

	err := svc.Withdraw(context.Background(), "o1", "u1")
	if !errors.Is(err, domain.ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
}

func TestWithdraw_MissingArgs(t *testing.T) {
	svc := New(&mockRepo{})

	if err := svc.Withdraw(context.Background(), "", "u1"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if err := svc.Withdraw(context.Background(), "o1", ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
