package domain

import "time"

// Trade is the immutable record of a completed two-party exchange.
// Participants and Items always hold exactly two entries, index-aligned:
// Items[0] was surrendered by Participants[0], Items[1] by Participants[1].
// A trade is never updated or deleted once written.
type Trade struct {
	ID           string
	Participants [2]string
	Items        [2]string
	CompletedAt  time.Time
}
