package swapmeet

import "github.com/swapmeet-io/swapmeet/internal/domain"

// Domain types re-exported for SDK callers.
type (
	// Offer is a barter listing.
	Offer = domain.Offer
	// Query describes what a user is looking for.
	Query = domain.Query
	// ScoredOffer is an offer with its ranking breakdown.
	ScoredOffer = domain.ScoredOffer
	// Trade is a completed exchange.
	Trade = domain.Trade
	// Message is a conversation entry.
	Message = domain.Message
	// TradeProposal rides on a trade message.
	TradeProposal = domain.TradeProposal
)

// Vectorizer supplies token vectors for similarity scoring. Implement
// it to plug in a custom embedding source.
type Vectorizer = domain.Vectorizer
