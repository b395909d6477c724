// Package similarity computes a coarse bag-of-embeddings similarity
// between two texts: each text is reduced to the element-wise sum of its
// per-token vectors and the two sums are compared by cosine.
package similarity

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

// Scorer scores text pairs against a token vectorizer.
type Scorer struct {
	vec    domain.Vectorizer
	logger *zap.Logger
}

// New creates a scorer.
func New(vec domain.Vectorizer, logger *zap.Logger) *Scorer {
	return &Scorer{vec: vec, logger: logger}
}

// Similarity returns the cosine similarity of the two texts' aggregate
// vectors, in [-1, 1]. Either text empty, or either aggregate zero
// (all tokens unknown, or the vectorizer degraded), yields 0. A failing
// vectorizer never fails the call; its tokens contribute nothing.
func (s *Scorer) Similarity(ctx context.Context, a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return cosine(s.TextVector(ctx, a), s.TextVector(ctx, b))
}

// TextVector returns the element-wise sum of the text's token vectors.
// Tokenization is whitespace splitting, nothing more.
func (s *Scorer) TextVector(ctx context.Context, text string) []float32 {
	agg := make([]float32, s.vec.Dimensions())
	for _, token := range strings.Fields(text) {
		v, err := s.vec.Vector(ctx, token)
		if err != nil {
			s.logger.Debug("token vector unavailable, scoring as zero",
				zap.String("token", token), zap.Error(err))
			continue
		}
		if len(v) != len(agg) {
			s.logger.Warn("token vector dimension mismatch",
				zap.String("token", token),
				zap.Int("got", len(v)), zap.Int("want", len(agg)))
			continue
		}
		for i := range agg {
			agg[i] += v[i]
		}
	}
	return agg
}

// cosine returns the cosine of the angle between a and b, or 0 when
// either vector is zero.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
