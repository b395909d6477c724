package domain

import "context"

// Vectorizer maps a single vocabulary token to a fixed-width embedding
// vector. Implementations must return a vector of exactly Dimensions()
// elements; a token outside the vocabulary resolves to the zero vector,
// which contributes nothing to aggregate sums or similarity.
type Vectorizer interface {
	Vector(ctx context.Context, token string) ([]float32, error)
	Dimensions() int
}

// DegradedReporter is implemented by vectorizers that can lose their
// backing resource and fall back to zero vectors. Callers use it to tell
// "scored with real vectors" apart from "scored with zeros".
type DegradedReporter interface {
	Degraded() bool
}
