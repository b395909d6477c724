package swapmeet

import "github.com/swapmeet-io/swapmeet/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrOfferNotFound          = domain.ErrOfferNotFound
	ErrCounterpartyHasNoOffer = domain.ErrCounterpartyHasNoOffer
	ErrStoreUnavailable       = domain.ErrStoreUnavailable
)
