// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// Document represents a source document whose text has already been extracted.
// This is a core entity - no knowledge of storage or external systems.
type Document struct {
	ID        string
	Name      string
	Path      string
	Content   string
	Rows      []string // populated for table documents, one row per atomic unit
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SplitMethod selects how a document is divided into chunks.
type SplitMethod string

const (
	// SplitSentence cuts character windows at sentence boundaries with overlap.
	SplitSentence SplitMethod = "sentence"
	// SplitToken accumulates word tokens up to the size limit, no overlap.
	SplitToken SplitMethod = "token"
	// SplitTable treats each row as one pre-chunked unit.
	SplitTable SplitMethod = "table"
)

// Chunk is a bounded text segment plus its unit-normalized embedding.
// Immutable once created; (DocumentID, Index) is unique and Index follows
// insertion order within the document.
type Chunk struct {
	DocumentID string
	Index      int
	Content    string
	Embedding  []float32
}

// RetrievedSegment is a transient retrieval hit. Never persisted.
type RetrievedSegment struct {
	Text       string
	Similarity float32
}

// PipelineRequest carries everything one query run needs. The stage chain owns it
// for the lifetime of a single call; the corpus arrives already materialized.
type PipelineRequest struct {
	ChatID      string
	MessageID   string // generated if empty
	UserMessage string
	DocumentID  string

	PromptRetrieve string
	PromptAugment  string
	PromptGenerate string

	TopK        int
	Temperature float32
	Threshold   float32
	Model       string

	Embeddings [][]float32
	TextChunks []string
}

// OutcomeKind tags the terminal result of one pipeline run.
type OutcomeKind string

const (
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeNoAnswer OutcomeKind = "no_answer"
	OutcomeError    OutcomeKind = "error"
)

// PipelineOutcome is the tagged terminal result of one invocation. Exactly one of
// Answer, Reason or Err is meaningful depending on Kind; outcomes are never retried.
type PipelineOutcome struct {
	Kind   OutcomeKind
	Answer string // OutcomeSuccess
	Reason string // OutcomeRejected, OutcomeNoAnswer
	Err    error  // OutcomeError
}

// Success builds an outcome carrying the generated answer.
func Success(answer string) PipelineOutcome {
	return PipelineOutcome{Kind: OutcomeSuccess, Answer: answer}
}

// Rejected builds an outcome for a query that failed the admission filter.
func Rejected(reason string) PipelineOutcome {
	return PipelineOutcome{Kind: OutcomeRejected, Reason: reason}
}

// NoAnswer builds an outcome for a query with no relevant context.
func NoAnswer(reason string) PipelineOutcome {
	return PipelineOutcome{Kind: OutcomeNoAnswer, Reason: reason}
}

// Failure builds an outcome for an unexpected pipeline failure.
func Failure(err error) PipelineOutcome {
	return PipelineOutcome{Kind: OutcomeError, Err: err}
}

// ChatMessage represents one stored conversation turn.
type ChatMessage struct {
	ChatID    string
	MessageID string
	Role      string // "user" or "assistant"
	Content   string
	CreatedAt time.Time
}
