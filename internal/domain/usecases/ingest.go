// Package usecases - ingest.go turns extracted document text into persisted,
// embedded chunks.
package usecases

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/0xcro3dile/autorag-go/internal/domain/chunker"
	"github.com/0xcro3dile/autorag-go/internal/domain/entities"
	"github.com/0xcro3dile/autorag-go/internal/domain/ports"
)

// IngestPipeline runs Chunker then Embedding Gateway over a document and
// replaces the document's stored corpus wholesale. One entry point handles all
// split strategies; the strategy is data, not a separate code path.
type IngestPipeline struct {
	embedder  ports.EmbeddingService
	store     ports.ChunkStore
	chunkSize int
	overlap   int
}

// NewIngestPipeline creates an IngestPipeline with injected dependencies.
func NewIngestPipeline(embedder ports.EmbeddingService, store ports.ChunkStore, chunkSize, overlap int) *IngestPipeline {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultMaxLength
	}
	if overlap < 0 {
		overlap = chunkSize / 10
	}
	return &IngestPipeline{
		embedder:  embedder,
		store:     store,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Ingest splits the document with the given strategy, embeds every chunk and
// persists the result, replacing any previous corpus for the document. Returned
// chunks carry contiguous zero-based indices in chunk order.
func (p *IngestPipeline) Ingest(ctx context.Context, doc *entities.Document, method entities.SplitMethod) ([]entities.Chunk, error) {
	texts := p.split(doc, method)
	if len(texts) == 0 {
		// Re-ingesting an empty document still clears the old corpus.
		if err := p.store.Delete(ctx, doc.ID); err != nil {
			return nil, fmt.Errorf("clearing document %s: %w", doc.ID, err)
		}
		return nil, nil
	}

	log.Printf("[INFO] Embedding %d chunks for document %s (%s split)", len(texts), doc.ID, method)
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	chunks := make([]entities.Chunk, len(texts))
	for i := range texts {
		chunks[i] = entities.Chunk{
			DocumentID: doc.ID,
			Index:      i,
			Content:    texts[i],
			Embedding:  embeddings[i],
		}
	}

	if err := p.store.Replace(ctx, doc.ID, chunks); err != nil {
		return nil, fmt.Errorf("storing chunks: %w", err)
	}
	return chunks, nil
}

// Delete removes a document's corpus from the store.
func (p *IngestPipeline) Delete(ctx context.Context, documentID string) error {
	return p.store.Delete(ctx, documentID)
}

// split applies the requested strategy. Table rows are already atomic units and
// are never split further.
func (p *IngestPipeline) split(doc *entities.Document, method entities.SplitMethod) []string {
	switch method {
	case entities.SplitTable:
		rows := doc.Rows
		if rows == nil && doc.Content != "" {
			rows = strings.Split(doc.Content, "\n")
		}
		var texts []string
		for _, row := range rows {
			if s := strings.TrimSpace(row); s != "" {
				texts = append(texts, s)
			}
		}
		return texts
	case entities.SplitToken:
		return chunker.SplitTokens(doc.Content, p.chunkSize)
	default:
		return chunker.Split(doc.Content, p.chunkSize, p.overlap)
	}
}
