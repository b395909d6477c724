package domain

import "errors"

var (
	// ErrInvalidRequest signals missing or malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrOfferNotFound signals that the referenced offer no longer exists.
	ErrOfferNotFound = errors.New("offer not found")
	// ErrCounterpartyHasNoOffer signals that the counterparty has nothing to trade.
	ErrCounterpartyHasNoOffer = errors.New("counterparty has no open offer")
	// ErrStoreUnavailable signals a transient storage failure, retryable by the caller.
	ErrStoreUnavailable = errors.New("store unavailable")
)
