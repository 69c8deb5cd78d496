package rag

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyCorpus is returned when an index build is attempted with no
// vectors. Callers must short-circuit before searching an empty index and
// report "no documents" to the user instead.
var ErrEmptyCorpus = errors.New("rag: empty corpus")

// Hit is one nearest-neighbor search result: the insertion index of the
// matched vector and its squared Euclidean distance from the query.
type Hit struct {
	Index    int
	Distance float32
}

// FlatIndex is an exact nearest-neighbor index over a fixed set of vectors.
// Every search scans the full corpus with squared L2 distance — no
// approximation, no tuning. An index is immutable once built; the only way
// to change the corpus is to build a new index and swap it in.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

// NewFlatIndex builds an index over vectors. All vectors must share the same
// dimensionality. Fails with [ErrEmptyCorpus] when vectors is empty.
func NewFlatIndex(vectors [][]float32) (*FlatIndex, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyCorpus
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("rag: zero-dimensional vectors")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("rag: vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return &FlatIndex{dim: dim, vectors: vectors}, nil
}

// Len returns the number of vectors in the index.
func (ix *FlatIndex) Len() int { return len(ix.vectors) }

// Dimension returns the dimensionality of the indexed vectors.
func (ix *FlatIndex) Dimension() int { return ix.dim }

// Search returns the min(k, Len) vectors nearest to query, ordered by
// squared Euclidean distance ascending. Equal distances preserve insertion
// order (earlier-inserted wins), keeping results reproducible.
func (ix *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("rag: query has dimension %d, want %d", len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{Index: i, Distance: sqDistance(query, v)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// sqDistance computes the squared L2 distance between two equal-length
// vectors. Squared distance preserves ranking and skips the sqrt.
func sqDistance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
