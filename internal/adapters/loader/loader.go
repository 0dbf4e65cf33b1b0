// Package loader provides document loading adapters. The pipeline only ever
// sees already-extracted plain text; these loaders cover the formats that need
// no extraction step.
package loader

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/0xcro3dile/autorag-go/internal/domain/entities"
)

// TextLoader loads plain text documents (.txt, .md).
type TextLoader struct{}

// NewTextLoader creates a new text document loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load reads a text document from the given path.
func (l *TextLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return &entities.Document{
		ID:        generateDocID(path),
		Name:      filepath.Base(path),
		Path:      path,
		Content:   string(content),
		CreatedAt: info.ModTime(),
		UpdatedAt: time.Now(),
	}, nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *TextLoader) SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// TableLoader loads tabular documents (.csv, .tsv) as pre-chunked rows: one
// row is one atomic unit, never split further.
type TableLoader struct{}

// NewTableLoader creates a new table document loader.
func NewTableLoader() *TableLoader {
	return &TableLoader{}
}

// Load reads a table document, one row per line, blank lines dropped.
func (l *TableLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			rows = append(rows, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return &entities.Document{
		ID:        generateDocID(path),
		Name:      filepath.Base(path),
		Path:      path,
		Rows:      rows,
		CreatedAt: info.ModTime(),
		UpdatedAt: time.Now(),
	}, nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *TableLoader) SupportedExtensions() []string {
	return []string{".csv", ".tsv"}
}

// MultiLoader combines multiple loaders by extension.
type MultiLoader struct {
	loaders map[string]interface {
		Load(context.Context, string) (*entities.Document, error)
	}
}

// NewMultiLoader creates a loader that handles all supported file types.
func NewMultiLoader() *MultiLoader {
	text := NewTextLoader()
	table := NewTableLoader()
	return &MultiLoader{
		loaders: map[string]interface {
			Load(context.Context, string) (*entities.Document, error)
		}{
			".txt":      text,
			".md":       text,
			".markdown": text,
			".csv":      table,
			".tsv":      table,
		},
	}
}

// Load dispatches to the appropriate loader based on extension.
func (m *MultiLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := m.loaders[ext]
	if !ok {
		loader = NewTextLoader()
	}
	return loader.Load(ctx, path)
}

// SupportedExtensions returns all supported extensions.
func (m *MultiLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(m.loaders))
	for ext := range m.loaders {
		exts = append(exts, ext)
	}
	return exts
}

// SplitMethodFor returns the split strategy matching a loaded document: table
// documents keep their rows, everything else goes through the sentence chunker.
func SplitMethodFor(doc *entities.Document) entities.SplitMethod {
	if doc.Rows != nil {
		return entities.SplitTable
	}
	return entities.SplitSentence
}

// DocumentIDForPath returns the deterministic document ID for a file path.
// Deleting a watched file needs the ID without loading the file.
func DocumentIDForPath(path string) string {
	return generateDocID(path)
}

// generateDocID creates a deterministic ID for a document path.
func generateDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}
