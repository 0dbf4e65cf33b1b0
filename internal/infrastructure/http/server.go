// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0xcro3dile/autorag-go/internal/domain/entities"
	"github.com/0xcro3dile/autorag-go/internal/domain/ports"
	"github.com/0xcro3dile/autorag-go/internal/domain/prompt"
	"github.com/0xcro3dile/autorag-go/internal/domain/usecases"
)

// Defaults are applied to request fields the client leaves unset.
type Defaults struct {
	TopK        int
	Temperature float32
	Threshold   float32
	Model       string
}

// Server is the HTTP server for the RAG API.
type Server struct {
	pipeline     *usecases.QueryPipeline
	ingest       *usecases.IngestPipeline
	store        ports.ChunkStore
	defaults     Defaults
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewServer creates a new HTTP server. Zero timeouts fall back to 15s read and
// 300s write.
func NewServer(
	pipeline *usecases.QueryPipeline,
	ingest *usecases.IngestPipeline,
	store ports.ChunkStore,
	defaults Defaults,
	addr string,
	readTimeout, writeTimeout time.Duration,
) *Server {
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 300 * time.Second
	}
	return &Server{
		pipeline:     pipeline,
		ingest:       ingest,
		store:        store,
		defaults:     defaults,
		addr:         addr,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/rag/process", s.handleProcess)
	mux.HandleFunc("/api/v1/documents", s.handleDocuments)
	mux.HandleFunc("/api/v1/chats/", s.handleChatHistory)
	mux.HandleFunc("/api/v1/health", s.handleHealth)

	server := &http.Server{
		Addr:         s.addr,
		Handler:      corsMiddleware(loggingMiddleware(mux)),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	log.Printf("[INFO] AutoRAG server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

// ragRequest is the wire shape of a query. Optional fields are pointers so an
// absent value and an explicit zero can be told apart.
type ragRequest struct {
	ChatID      string   `json:"chat_id"`
	MessageID   string   `json:"message_id,omitempty"`
	UserMessage string   `json:"user_message"`
	DocumentID  string   `json:"document_id"`
	Model       string   `json:"llm,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	Threshold   *float32 `json:"threshold,omitempty"`

	PromptRetrieve     string `json:"prompt_retrieve,omitempty"`
	PromptAugmentation string `json:"prompt_augmentation,omitempty"`
	PromptGeneration   string `json:"prompt_generation,omitempty"`

	Embeddings [][]float32 `json:"embeddings,omitempty"`
	TextChunks []string    `json:"text_chunks,omitempty"`
}

type ragResponse struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	ChatID          string `json:"chat_id"`
	MessageID       string `json:"message_id"`
	DocumentID      string `json:"document_id"`
	GeneratedAnswer string `json:"generated_answer,omitempty"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ChatID == "" || strings.TrimSpace(req.UserMessage) == "" || req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "chat_id, user_message and document_id are required")
		return
	}

	preq, err := s.toPipelineRequest(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading document corpus: "+err.Error())
		return
	}

	outcome := s.pipeline.Process(r.Context(), preq)

	resp := ragResponse{
		ChatID:     preq.ChatID,
		MessageID:  preq.MessageID,
		DocumentID: preq.DocumentID,
	}

	switch outcome.Kind {
	case entities.OutcomeSuccess:
		resp.Status = "success"
		resp.Message = "Request processed successfully"
		resp.GeneratedAnswer = outcome.Answer
	case entities.OutcomeRejected, entities.OutcomeNoAnswer:
		resp.Status = "success"
		resp.Message = "Request processed successfully"
		resp.GeneratedAnswer = outcome.Reason
	default:
		log.Printf("[ERROR] Pipeline failed for chat %s: %v", preq.ChatID, outcome.Err)
		resp.Status = "error"
		resp.Message = outcome.Err.Error()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(resp)
		return
	}

	s.saveHistory(r.Context(), preq, resp.GeneratedAnswer)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toPipelineRequest applies configured defaults and materializes the document
// corpus. An inline corpus wins; otherwise chunks are loaded from the store.
func (s *Server) toPipelineRequest(ctx context.Context, req *ragRequest) (*entities.PipelineRequest, error) {
	preq := &entities.PipelineRequest{
		ChatID:      req.ChatID,
		MessageID:   req.MessageID,
		UserMessage: req.UserMessage,
		DocumentID:  req.DocumentID,

		PromptRetrieve: req.PromptRetrieve,
		PromptAugment:  req.PromptAugmentation,
		PromptGenerate: req.PromptGeneration,

		Model:       req.Model,
		TopK:        s.defaults.TopK,
		Temperature: s.defaults.Temperature,
		Threshold:   s.defaults.Threshold,

		Embeddings: req.Embeddings,
		TextChunks: req.TextChunks,
	}

	if req.TopK != nil {
		preq.TopK = *req.TopK
	}
	if req.Temperature != nil {
		preq.Temperature = *req.Temperature
	}
	if req.Threshold != nil {
		preq.Threshold = *req.Threshold
	}
	if preq.Model == "" {
		preq.Model = s.defaults.Model
	}
	if preq.PromptRetrieve == "" {
		preq.PromptRetrieve = prompt.DefaultRetrieve
	}
	if preq.PromptAugment == "" {
		preq.PromptAugment = prompt.DefaultAugment
	}
	if preq.PromptGenerate == "" {
		preq.PromptGenerate = prompt.DefaultGenerate
	}

	if len(preq.Embeddings) == 0 {
		chunks, err := s.store.Load(ctx, preq.DocumentID)
		if err != nil {
			return nil, err
		}
		preq.Embeddings = make([][]float32, len(chunks))
		preq.TextChunks = make([]string, len(chunks))
		for i, c := range chunks {
			preq.Embeddings[i] = c.Embedding
			preq.TextChunks[i] = c.Content
		}
	}

	return preq, nil
}

// saveHistory persists the conversation turn after the outcome is known.
// Failures are logged, not surfaced; the answer already exists.
func (s *Server) saveHistory(ctx context.Context, req *entities.PipelineRequest, answer string) {
	user := entities.ChatMessage{
		ChatID:    req.ChatID,
		MessageID: req.MessageID,
		Role:      "user",
		Content:   req.UserMessage,
	}
	assistant := entities.ChatMessage{
		ChatID:    req.ChatID,
		MessageID: uuid.NewString(),
		Role:      "assistant",
		Content:   answer,
	}
	if err := s.store.SaveMessage(ctx, user); err != nil {
		log.Printf("[WARN] Failed to save user message for chat %s: %v", req.ChatID, err)
		return
	}
	if err := s.store.SaveMessage(ctx, assistant); err != nil {
		log.Printf("[WARN] Failed to save assistant message for chat %s: %v", req.ChatID, err)
	}
}

type documentRequest struct {
	DocumentID  string   `json:"document_id"`
	Text        string   `json:"text,omitempty"`
	Rows        []string `json:"rows,omitempty"`
	SplitMethod string   `json:"split_method,omitempty"`
}

type documentResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	DocumentID     string `json:"document_id"`
	ChunkCount     int    `json:"chunk_count"`
	ProcessingTime int64  `json:"processing_time_ms"`
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "document_id is required")
		return
	}

	doc := &entities.Document{
		ID:      req.DocumentID,
		Content: req.Text,
		Rows:    req.Rows,
	}

	method := entities.SplitMethod(req.SplitMethod)
	switch method {
	case entities.SplitSentence, entities.SplitToken, entities.SplitTable:
	case "":
		if req.Rows != nil {
			method = entities.SplitTable
		} else {
			method = entities.SplitSentence
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown split_method: "+req.SplitMethod)
		return
	}

	start := time.Now()
	chunks, err := s.ingest.Ingest(r.Context(), doc, method)
	if err != nil {
		log.Printf("[ERROR] Ingestion failed for document %s: %v", req.DocumentID, err)
		writeError(w, http.StatusInternalServerError, "ingestion failed: "+err.Error())
		return
	}

	// Report the persisted count, not the in-flight one.
	count, err := s.store.ChunkCount(r.Context(), req.DocumentID)
	if err != nil {
		log.Printf("[WARN] Counting chunks for document %s: %v", req.DocumentID, err)
		count = len(chunks)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(documentResponse{
		Status:         "success",
		Message:        "Document ingested successfully",
		DocumentID:     req.DocumentID,
		ChunkCount:     count,
		ProcessingTime: time.Since(start).Milliseconds(),
	})
}

type chatMessageResponse struct {
	MessageID string    `json:"message_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// handleChatHistory serves GET /api/v1/chats/{chat_id}/history.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/chats/")
	chatID, ok := strings.CutSuffix(rest, "/history")
	if !ok || chatID == "" || strings.Contains(chatID, "/") {
		http.NotFound(w, r)
		return
	}

	messages, err := s.store.Messages(r.Context(), chatID)
	if err != nil {
		log.Printf("[ERROR] Loading history for chat %s: %v", chatID, err)
		writeError(w, http.StatusInternalServerError, "loading chat history: "+err.Error())
		return
	}

	out := make([]chatMessageResponse, len(messages))
	for i, m := range messages {
		out[i] = chatMessageResponse{
			MessageID: m.MessageID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "success",
		"chat_id":  chatID,
		"messages": out,
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": msg})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			return
		}
		next.ServeHTTP(w, r)
	})
}
