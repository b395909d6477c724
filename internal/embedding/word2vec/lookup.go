// Package word2vec loads a binary word2vec model into memory and serves
// per-token vectors. A lookup that lost its model file degrades to the
// zero vector for every token instead of failing the process.
package word2vec

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// DefaultDimensions matches the GoogleNews-vectors-negative300 model.
const DefaultDimensions = 300

// Lookup maps vocabulary tokens to fixed-width vectors.
type Lookup struct {
	dims     int
	vectors  map[string][]float32
	zero     []float32
	degraded bool
}

var _ interface {
	Vector(ctx context.Context, token string) ([]float32, error)
	Dimensions() int
	Degraded() bool
} = (*Lookup)(nil)

// Load reads a binary word2vec model file (header "vocab dims\n", then
// per entry: token, space, dims little-endian float32 values, newline).
func Load(path string) (*Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	return parse(bufio.NewReaderSize(f, 1<<20))
}

// NewDegraded creates a lookup with no vocabulary. Every token resolves
// to the zero vector and Degraded reports true.
func NewDegraded(dims int) *Lookup {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Lookup{
		dims:     dims,
		vectors:  map[string][]float32{},
		zero:     make([]float32, dims),
		degraded: true,
	}
}

// Vector returns the token's vector, or the zero vector for tokens
// outside the vocabulary. It never fails.
func (l *Lookup) Vector(_ context.Context, token string) ([]float32, error) {
	if v, ok := l.vectors[token]; ok {
		return v, nil
	}
	return l.zero, nil
}

// Dimensions returns the vector width.
func (l *Lookup) Dimensions() int { return l.dims }

// Degraded reports whether the model failed to load and every token
// resolves to the zero vector.
func (l *Lookup) Degraded() bool { return l.degraded }

// Size returns the vocabulary size.
func (l *Lookup) Size() int { return len(l.vectors) }

func parse(r *bufio.Reader) (*Lookup, error) {
	var vocab, dims int
	if _, err := fmt.Fscanf(r, "%d %d\n", &vocab, &dims); err != nil {
		return nil, fmt.Errorf("parse model header: %w", err)
	}
	if vocab <= 0 || dims <= 0 {
		return nil, fmt.Errorf("invalid model header: vocab=%d dims=%d", vocab, dims)
	}

	l := &Lookup{
		dims:    dims,
		vectors: make(map[string][]float32, vocab),
		zero:    make([]float32, dims),
	}

	raw := make([]byte, dims*4)
	for i := 0; i < vocab; i++ {
		token, err := readToken(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: read token: %w", i, err)
		}
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("entry %d (%s): read vector: %w", i, token, err)
		}

		vec := make([]float32, dims)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[j*4:]))
		}
		l.vectors[token] = vec
	}

	return l, nil
}

// readToken reads up to the separating space, skipping the newline that
// terminates the previous entry. Tokens never contain whitespace.
func readToken(r *bufio.Reader) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case ' ':
			return string(buf), nil
		case '\n', '\r':
			continue
		default:
			buf = append(buf, b)
		}
	}
}
