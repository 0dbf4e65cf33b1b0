// Package vectorindex provides the transient in-memory similarity index built
// once per query from the request's materialized corpus. It is never cached or
// shared between requests.
package vectorindex

import (
	"fmt"
	"sort"

	"github.com/0xcro3dile/autorag-go/internal/domain/entities"
)

// Index holds parallel unit-normalized embeddings and their texts for one
// document. Since inputs are unit-normalized, cosine similarity reduces to the
// dot product.
type Index struct {
	embeddings [][]float32
	texts      []string
	dimension  int
}

// New builds an index over parallel embeddings and texts. Fails with
// entities.ErrDimensionMismatch when the slices differ in length or any
// embedding's dimensionality is not dim.
func New(embeddings [][]float32, texts []string, dim int) (*Index, error) {
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: %d embeddings vs %d texts",
			entities.ErrDimensionMismatch, len(embeddings), len(texts))
	}
	for i, emb := range embeddings {
		if len(emb) != dim {
			return nil, fmt.Errorf("%w: embedding %d has %d dimensions, want %d",
				entities.ErrDimensionMismatch, i, len(emb), dim)
		}
	}
	return &Index{embeddings: embeddings, texts: texts, dimension: dim}, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.texts) }

// Dimension returns the embedding dimensionality the index was built with.
func (ix *Index) Dimension() int { return ix.dimension }

// Search returns the texts of the topK most similar chunks with similarity at
// least threshold, ordered by descending similarity. Ties keep insertion order.
// topK <= 0, an empty index or a query whose length differs from the index
// dimensionality all yield an empty result, not an error; callers that need to
// distinguish a mis-sized query must check against Dimension first.
func (ix *Index) Search(query []float32, topK int, threshold float32) []entities.RetrievedSegment {
	if topK <= 0 || len(ix.texts) == 0 || len(query) != ix.dimension {
		return nil
	}

	scored := make([]entities.RetrievedSegment, 0, len(ix.texts))
	for i := range ix.embeddings {
		sim := dot(query, ix.embeddings[i])
		if sim >= threshold {
			scored = append(scored, entities.RetrievedSegment{
				Text:       ix.texts[i],
				Similarity: sim,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
