package vectorindex

import (
	"errors"
	"testing"

	"github.com/0xcro3dile/autorag-go/internal/domain/entities"
)

func TestNew_LengthMismatch(t *testing.T) {
	_, err := New([][]float32{{1, 0}}, []string{"a", "b"}, 2)
	if !errors.Is(err, entities.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNew_WrongDimensionality(t *testing.T) {
	_, err := New([][]float32{{1, 0}, {0, 1, 0}}, []string{"a", "b"}, 2)
	if !errors.Is(err, entities.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSearch_TopKAndThreshold(t *testing.T) {
	ix, err := New(
		[][]float32{{1, 0}, {0, 1}, {0.7, 0.7}},
		[]string{"first", "second", "third"},
		2,
	)
	if err != nil {
		t.Fatalf("building index: %v", err)
	}

	results := ix.Search([]float32{1, 0}, 2, 0.5)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Text != "first" || results[1].Text != "third" {
		t.Errorf("expected [first third], got [%s %s]", results[0].Text, results[1].Text)
	}
}

func TestSearch_SortedDescendingWithinBounds(t *testing.T) {
	ix, _ := New(
		[][]float32{{0, 1}, {1, 0}, {0.6, 0.8}, {0.8, 0.6}},
		[]string{"a", "b", "c", "d"},
		2,
	)

	results := ix.Search([]float32{1, 0}, 10, 0.1)

	if len(results) > 10 {
		t.Fatal("result longer than topK")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not sorted at %d", i)
		}
	}
	for _, r := range results {
		if r.Similarity < 0.1 {
			t.Errorf("similarity %f below threshold", r.Similarity)
		}
	}
}

func TestSearch_SelfSimilarityTopHit(t *testing.T) {
	q := []float32{0.6, 0.8}
	ix, _ := New([][]float32{{0, 1}, q, {1, 0}}, []string{"a", "self", "b"}, 2)

	results := ix.Search(q, 3, 0)
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].Text != "self" {
		t.Errorf("expected self as top hit, got %s", results[0].Text)
	}
	if results[0].Similarity < 0.999 {
		t.Errorf("expected similarity ~1.0, got %f", results[0].Similarity)
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	ix, _ := New(
		[][]float32{{1, 0}, {1, 0}, {1, 0}},
		[]string{"a", "b", "c"},
		2,
	)

	results := ix.Search([]float32{1, 0}, 3, 0)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Text != "a" || results[1].Text != "b" || results[2].Text != "c" {
		t.Error("tied results out of insertion order")
	}
}

func TestSearch_EmptyCases(t *testing.T) {
	ix, _ := New([][]float32{{1, 0}}, []string{"a"}, 2)

	if r := ix.Search([]float32{1, 0}, 0, 0); len(r) != 0 {
		t.Error("topK=0 should return empty")
	}
	if r := ix.Search([]float32{0, 1}, 5, 0.5); len(r) != 0 {
		t.Error("nothing above threshold should return empty")
	}

	empty, err := New(nil, nil, 2)
	if err != nil {
		t.Fatalf("empty index should build: %v", err)
	}
	if r := empty.Search([]float32{1, 0}, 5, 0); len(r) != 0 {
		t.Error("empty index should return empty")
	}
}
