// Package embedding provides the OpenAI-compatible embedding gateway.
// Clean Architecture: This is an adapter that implements ports.EmbeddingService.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/0xcro3dile/autorag-go/internal/domain/entities"
)

// DefaultDimension matches the deployment's embedding model output size.
const DefaultDimension = 312

// OpenAIAdapter implements ports.EmbeddingService against any
// OpenAI-compatible embeddings endpoint. Vectors come back L2-normalized and
// with a fixed dimensionality, so cosine search can use plain dot products.
type OpenAIAdapter struct {
	client *openai.Client
	model  string
	dim    int
}

// Config configures the embedding gateway.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Dim     int
	Timeout time.Duration
}

// NewOpenAIAdapter creates a new embedding gateway. The client handle is
// stateless and safe to share across requests.
func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dim <= 0 {
		cfg.Dim = DefaultDimension
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		dim:    cfg.Dim,
	}
}

// Dimension returns the fixed output dimensionality.
func (a *OpenAIAdapter) Dimension() int { return a.dim }

// Embed generates an embedding for a single text.
func (a *OpenAIAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := a.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call, preserving
// input order. Empty input yields empty output without touching the network.
// Failures surface as GatewayError; no retries happen here.
func (a *OpenAIAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	log.Printf("[DEBUG] Embedding %d texts with model %s", len(texts), a.model)
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(a.model),
		Input: texts,
	})
	if err != nil {
		return nil, &entities.GatewayError{Op: "embed", Timeout: isTimeout(err), Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &entities.GatewayError{
			Op:  "embed",
			Err: fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, &entities.GatewayError{
				Op:  "embed",
				Err: fmt.Errorf("embedding index %d out of range", d.Index),
			}
		}
		if len(d.Embedding) != a.dim {
			return nil, &entities.GatewayError{
				Op:  "embed",
				Err: fmt.Errorf("model returned %d dimensions, want %d", len(d.Embedding), a.dim),
			}
		}
		v := make([]float32, len(d.Embedding))
		for i := range d.Embedding {
			v[i] = float32(d.Embedding[i])
		}
		l2normalize(v)
		vectors[d.Index] = v
	}
	return vectors, nil
}

// l2normalize scales the vector to unit length in place. Required for cosine
// similarity via dot product.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}

// isTimeout reports whether the capability call failed on a deadline, so the
// pipeline can tell a hang from a hard failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
