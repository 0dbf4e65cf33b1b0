// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/0xcro3dile/autorag-go/internal/domain/entities"
)

// EmbeddingService generates unit-normalized vector embeddings of a fixed
// dimensionality. Output order matches input order; empty input yields empty
// output. The gateway performs no retries - callers decide.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the fixed output dimensionality.
	Dimension() int
}

// LLMService wraps a chat-completion capability. Responses are untrusted free
// text even when JSON was requested.
type LLMService interface {
	// Complete produces a response for the prompt using the named model.
	Complete(ctx context.Context, prompt string, temperature float32, model string) (string, error)
}

// ChunkStore persists chunks and chat history. Re-ingestion replaces a
// document's chunks wholesale - no partial updates.
type ChunkStore interface {
	// Replace deletes all chunks for the document and inserts the given ones.
	Replace(ctx context.Context, documentID string, chunks []entities.Chunk) error

	// Load returns all chunks for a document in insertion order.
	Load(ctx context.Context, documentID string) ([]entities.Chunk, error)

	// Delete removes all chunks for a document.
	Delete(ctx context.Context, documentID string) error

	// SaveMessage appends one conversation turn.
	SaveMessage(ctx context.Context, msg entities.ChatMessage) error

	// Messages returns a chat's history in chronological order.
	Messages(ctx context.Context, chatID string) ([]entities.ChatMessage, error)

	// ChunkCount returns the number of stored chunks for a document.
	ChunkCount(ctx context.Context, documentID string) (int, error)
}

// DocumentLoader reads already-extracted documents from disk.
type DocumentLoader interface {
	// Load reads a document from the given path.
	Load(ctx context.Context, path string) (*entities.Document, error)

	// SupportedExtensions returns file extensions this loader handles.
	SupportedExtensions() []string
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
