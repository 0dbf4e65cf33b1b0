// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/0xcro3dile/autorag-go/internal/domain/entities"
	"github.com/0xcro3dile/autorag-go/internal/domain/ports"
	"github.com/0xcro3dile/autorag-go/internal/domain/prompt"
	"github.com/0xcro3dile/autorag-go/internal/domain/vectorindex"
)

// Canned user-facing strings for the non-success outcomes.
const (
	RejectedMessage = "Sorry, this question cannot be answered by the document assistant."
	NoAnswerMessage = "Sorry, no relevant information was found to answer your question."
)

// QueryPipeline is the stage chain answering one user question from an indexed
// document: admission filter, query rewrite, retrieval, map-reduce context
// selection, answer generation. Each stage can short-circuit the run with a
// terminal outcome; no stage is retried or revisited.
type QueryPipeline struct {
	embedder    ports.EmbeddingService
	llm         ports.LLMService
	batchSize   int // passages per map-reduce batch
	maxParallel int // concurrent map-reduce LLM calls
}

// NewQueryPipeline creates a QueryPipeline with injected gateways.
func NewQueryPipeline(embedder ports.EmbeddingService, llm ports.LLMService, batchSize, maxParallel int) *QueryPipeline {
	if batchSize <= 0 {
		batchSize = 3
	}
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &QueryPipeline{
		embedder:    embedder,
		llm:         llm,
		batchSize:   batchSize,
		maxParallel: maxParallel,
	}
}

// Process runs the stage chain over one request and always returns a terminal
// outcome; it never panics the caller and writes nothing back itself.
func (p *QueryPipeline) Process(ctx context.Context, req *entities.PipelineRequest) entities.PipelineOutcome {
	if req.MessageID == "" {
		req.MessageID = uuid.NewString()
	}
	if req.TopK < 1 {
		req.TopK = 5
	}

	log.Printf("[INFO] Processing query for chat %s, document %s", req.ChatID, req.DocumentID)

	// Stage 1: admission filter.
	admitted, err := p.admit(ctx, req)
	if err != nil {
		return entities.Failure(fmt.Errorf("admission filter: %w", err))
	}
	if !admitted {
		log.Printf("[INFO] Query rejected by admission filter for chat %s", req.ChatID)
		return entities.Rejected(RejectedMessage)
	}

	// Stage 2: query rewrite. The rewritten text is used only for embedding;
	// the original user message feeds the later prompts.
	query, err := p.rewriteQuery(ctx, req)
	if err != nil {
		return entities.Failure(fmt.Errorf("query rewrite: %w", err))
	}

	// Stage 3: retrieval over a transient index built from the request corpus.
	segments, err := p.retrieve(ctx, req, query)
	if err != nil {
		return entities.Failure(fmt.Errorf("retrieval: %w", err))
	}
	if len(segments) == 0 {
		log.Printf("[INFO] No chunks above threshold %.2f for chat %s", req.Threshold, req.ChatID)
		return entities.NoAnswer(NoAnswerMessage)
	}

	// Stage 4: map-reduce context selection.
	selected, err := p.selectContext(ctx, req, segments)
	if err != nil {
		return entities.Failure(fmt.Errorf("context selection: %w", err))
	}
	if len(selected) == 0 {
		log.Printf("[INFO] Selection kept no segments for chat %s", req.ChatID)
		return entities.NoAnswer(NoAnswerMessage)
	}

	// Stage 5: answer generation.
	answer, err := p.generate(ctx, req, selected)
	if err != nil {
		return entities.Failure(fmt.Errorf("answer generation: %w", err))
	}

	log.Printf("[INFO] Query answered for chat %s", req.ChatID)
	return entities.Success(answer)
}

// admit classifies the user message with the fixed admission prompt. A response
// that fails to parse or does not answer "yes" rejects the query; only a
// gateway failure is an error.
func (p *QueryPipeline) admit(ctx context.Context, req *entities.PipelineRequest) (bool, error) {
	rendered := prompt.Render(prompt.Admission, req.UserMessage, "")
	raw, err := p.llm.Complete(ctx, rendered, 0, req.Model)
	if err != nil {
		return false, err
	}

	var verdict struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &verdict); err != nil {
		log.Printf("[DEBUG] Admission response not parseable, rejecting: %q", raw)
		return false, nil
	}
	return strings.EqualFold(strings.TrimSpace(verdict.Result), "yes"), nil
}

// rewriteQuery expands the user message through the retrieve prompt. An empty
// rewrite falls back to the original message.
func (p *QueryPipeline) rewriteQuery(ctx context.Context, req *entities.PipelineRequest) (string, error) {
	rendered := prompt.Render(req.PromptRetrieve, req.UserMessage, "")
	raw, err := p.llm.Complete(ctx, rendered, req.Temperature, req.Model)
	if err != nil {
		return "", err
	}
	query := strings.TrimSpace(raw)
	if query == "" {
		return req.UserMessage, nil
	}
	return query, nil
}

// retrieve embeds the rewritten query and searches a transient index built from
// the request's corpus. The index lives only for this call.
func (p *QueryPipeline) retrieve(ctx context.Context, req *entities.PipelineRequest, query string) ([]entities.RetrievedSegment, error) {
	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(embedding) != p.embedder.Dimension() {
		return nil, fmt.Errorf("query embedding has %d dimensions, want %d: %w",
			len(embedding), p.embedder.Dimension(), entities.ErrDimensionMismatch)
	}

	index, err := vectorindex.New(req.Embeddings, req.TextChunks, p.embedder.Dimension())
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	return index.Search(embedding, req.TopK, req.Threshold), nil
}

// selectContext partitions segments into batches of batchSize (retrieval order)
// and asks the LLM to keep the relevant ones per batch. Batches run in parallel
// bounded by maxParallel; a batch whose response is not valid JSON is logged and
// contributes nothing, while a failed LLM call aborts the stage. Results are
// recombined in batch order.
func (p *QueryPipeline) selectContext(ctx context.Context, req *entities.PipelineRequest, segments []entities.RetrievedSegment) ([]string, error) {
	batches := batchSegments(segments, p.batchSize)
	picked := make([][]string, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			info := strings.Join(batch, "\n")
			rendered := prompt.Render(req.PromptAugment, req.UserMessage, info)
			raw, err := p.llm.Complete(gctx, rendered, req.Temperature, req.Model)
			if err != nil {
				return err
			}
			items, err := parseStringList(raw)
			if err != nil {
				// Malformed output is confined to its own batch.
				log.Printf("[ERROR] Batch %d selection not valid JSON, skipping: %v", i, err)
				return nil
			}
			picked[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var selected []string
	for _, items := range picked {
		selected = append(selected, items...)
	}
	return selected, nil
}

// generate joins the selected segments and produces the final answer.
func (p *QueryPipeline) generate(ctx context.Context, req *entities.PipelineRequest, selected []string) (string, error) {
	rendered := prompt.Render(req.PromptGenerate, req.UserMessage, strings.Join(selected, "\n"))
	answer, err := p.llm.Complete(ctx, rendered, req.Temperature, req.Model)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// batchSegments groups segment texts into fixed-size batches, preserving
// retrieval order. The last batch may be short.
func batchSegments(segments []entities.RetrievedSegment, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(segments); start += size {
		end := start + size
		if end > len(segments) {
			end = len(segments)
		}
		batch := make([]string, 0, end-start)
		for _, seg := range segments[start:end] {
			batch = append(batch, seg.Text)
		}
		batches = append(batches, batch)
	}
	return batches
}

// parseStringList decodes an LLM response expected to be a JSON list of
// strings, trimming items and dropping empty ones.
func parseStringList(raw string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(stripFences(raw)), &items); err != nil {
		return nil, &entities.MalformedOutputError{Stage: "selection", Raw: raw, Err: err}
	}
	out := items[:0]
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// stripFences removes a surrounding markdown code fence, which models add
// around JSON more often than not.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:] // drop a language tag like "json"
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
