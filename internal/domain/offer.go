package domain

import "time"

// KeyPrefix namespaces all storage keys.
const KeyPrefix = "swapmeet:"

// Offer is a unit of goods a user is willing to give away.
// An offer is eligible for trade exactly as long as it exists in the store;
// completed trades remove it, there is no status field.
type Offer struct {
	ID        string
	UserID    string
	UserName  string
	Product   string
	Category  string
	Distance  int // travel radius in miles, never negative
	Details   string
	CreatedAt time.Time
}

// Query describes what a user wants. It is supplied per ranking call and
// never persisted. Empty fields mean "no signal", not an error.
type Query struct {
	Product  string
	Category string
	Details  string
	Distance int
}

// ScoredOffer annotates an offer with its ranking terms. It exists only
// inside a ranking response.
type ScoredOffer struct {
	Offer

	CategoryScore   float64
	SimilarityScore float64
	DistanceScore   float64
	Score           float64
}
