// Package prompt renders caller-supplied prompt templates and carries the
// default prompts used when a request omits its own.
package prompt

import "strings"

// Placeholder names understood by Render.
const (
	RequestVar = "{request}"
	InfoVar    = "{info}"
)

// Render substitutes the named placeholders into template. Unknown placeholders
// are left untouched; templates are plain strings on the wire, not Go templates.
func Render(template, request, info string) string {
	r := strings.NewReplacer(RequestVar, request, InfoVar, info)
	return r.Replace(template)
}

// Admission is the fixed classification prompt of the admission filter. The
// model must answer with a JSON object {"result": "yes"} or {"result": "no"}.
const Admission = `You are a gatekeeper for a document question-answering system.
Decide whether the following user message is an appropriate question that can be
answered from document content. Answer with a JSON object of exactly this form
and nothing else: {"result": "yes"} or {"result": "no"}.

User message: {request}`

// DefaultRetrieve rewrites the user message into a better retrieval query.
const DefaultRetrieve = `Rewrite the following user question as a short,
self-contained search query. Expand abbreviations and add likely synonyms.
Return only the rewritten query text.

Question: {request}`

// DefaultAugment is the map-reduce selection prompt applied per batch of
// retrieved passages. The model must return a JSON list of strings.
const DefaultAugment = `You select passages that help answer a question.
From the passages below, keep only those relevant to the question, condensing
each kept passage where possible. Return a JSON list of strings and nothing
else. Return [] if none are relevant.

Question: {request}

Passages:
{info}`

// DefaultGenerate produces the final grounded answer.
const DefaultGenerate = `Answer the question using only the provided context.
If the context does not contain the answer, say so honestly.

Context:
{info}

Question: {request}

Answer:`
