package rag

import (
	"errors"
	"testing"
)

func Test_NewFlatIndex_EmptyCorpus(t *testing.T) {
	t.Parallel()
	if _, err := NewFlatIndex(nil); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("want ErrEmptyCorpus, got %v", err)
	}
	if _, err := NewFlatIndex([][]float32{}); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("want ErrEmptyCorpus, got %v", err)
	}
}

func Test_NewFlatIndex_DimensionMismatch(t *testing.T) {
	t.Parallel()
	_, err := NewFlatIndex([][]float32{{1, 2}, {1, 2, 3}})
	if err == nil {
		t.Fatal("expected error for mismatched vector dimensions")
	}
}

func Test_NewFlatIndex_LenMatchesInput(t *testing.T) {
	t.Parallel()
	vectors := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	ix, err := NewFlatIndex(vectors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ix.Len() != len(vectors) {
		t.Errorf("Len = %d, want %d", ix.Len(), len(vectors))
	}
	if ix.Dimension() != 2 {
		t.Errorf("Dimension = %d, want 2", ix.Dimension())
	}
}

func Test_Search_RankedBySquaredDistance(t *testing.T) {
	t.Parallel()
	// Distances from origin: index 0 → 9, index 1 → 1, index 2 → 4.
	ix, err := NewFlatIndex([][]float32{{3, 0}, {1, 0}, {2, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, err := ix.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	wantOrder := []int{1, 2, 0}
	wantDist := []float32{1, 4, 9}
	for i := range wantOrder {
		if hits[i].Index != wantOrder[i] {
			t.Errorf("rank %d: index %d, want %d", i, hits[i].Index, wantOrder[i])
		}
		if hits[i].Distance != wantDist[i] {
			t.Errorf("rank %d: distance %v, want %v", i, hits[i].Distance, wantDist[i])
		}
	}
}

func Test_Search_TiesPreserveInsertionOrder(t *testing.T) {
	t.Parallel()
	// All three vectors are distance 1 from the query.
	ix, err := NewFlatIndex([][]float32{{1, 0}, {0, 1}, {-1, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, err := ix.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for i, hit := range hits {
		if hit.Index != i {
			t.Errorf("tie-break violated: rank %d has index %d", i, hit.Index)
		}
	}
}

func Test_Search_ResultCountBounded(t *testing.T) {
	t.Parallel()
	ix, err := NewFlatIndex([][]float32{{1}, {2}, {3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		k    int
		want int
	}{
		{1, 1},
		{3, 3},
		{10, 3}, // k beyond corpus size clamps to corpus size
	}
	for _, tc := range cases {
		hits, err := ix.Search([]float32{0}, tc.k)
		if err != nil {
			t.Fatalf("search k=%d: %v", tc.k, err)
		}
		if len(hits) != tc.want {
			t.Errorf("k=%d: got %d hits, want %d", tc.k, len(hits), tc.want)
		}
	}
}

func Test_Search_QueryDimensionMismatch(t *testing.T) {
	t.Parallel()
	ix, err := NewFlatIndex([][]float32{{1, 2, 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ix.Search([]float32{1, 2}, 1); err == nil {
		t.Error("expected error for query dimension mismatch")
	}
}
