// Package chunker splits raw document text into bounded, non-empty segments.
// Pure functions of their inputs: the same text and parameters always yield the
// same chunk boundaries.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultMaxLength is the character limit per chunk when none is configured.
const DefaultMaxLength = 3000

// Split cuts text into ordered chunks of at most maxLength characters,
// preferring sentence boundaries. Each non-final window is cut at the nearest
// sentence terminator in its second half, falling back to the nearest
// whitespace there; a window without any safe cut extends to the next
// whitespace so words are never split. Consecutive windows overlap by overlap
// characters. Chunks are trimmed and empty ones dropped.
func Split(text string, maxLength, overlap int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if overlap < 0 || overlap >= maxLength {
		overlap = maxLength / 10
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= maxLength {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + maxLength
		if end >= n {
			appendChunk(&chunks, runes[start:n])
			break
		}

		cut := findCut(runes, start, end)
		if cut < 0 {
			// No terminator or whitespace in the second half: extend forward to
			// the next whitespace rather than splitting mid-word.
			cut = end
			for cut < n && !unicode.IsSpace(runes[cut]) {
				cut++
			}
		}

		appendChunk(&chunks, runes[start:cut])
		if cut >= n {
			break
		}

		next := cut - overlap
		if next <= start {
			// Forward progress even when overlap swallows the whole window.
			next = cut
		}
		start = next
	}
	return chunks
}

// findCut searches backward from end for a sentence terminator, then for
// whitespace, within the second half of the window. Returns -1 if neither
// exists there.
func findCut(runes []rune, start, end int) int {
	half := start + (end-start)/2
	for i := end - 1; i > half; i-- {
		if isTerminator(runes[i]) {
			return i + 1
		}
	}
	for i := end - 1; i > half; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func appendChunk(chunks *[]string, window []rune) {
	s := strings.TrimSpace(string(window))
	if s != "" {
		*chunks = append(*chunks, s)
	}
}

// wordSep matches token boundaries the way pre-tokenized flows expect: runs of
// whitespace or single non-word characters.
var wordSep = regexp.MustCompile(`\s+|[^0-9A-Za-z_\p{L}]`)

// SplitTokens is the secondary policy: word-token based accumulation up to
// maxLength characters, no overlap, never cutting inside a token. Used for
// pre-tokenized flows such as tabular rows. Same output contract as Split.
func SplitTokens(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var chunks []string
	var current strings.Builder
	length := 0
	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		length = 0
	}

	for _, tok := range tokenize(text) {
		tl := len([]rune(tok))
		if length+tl > maxLength && length > 0 {
			flush()
		}
		current.WriteString(tok)
		length += tl
	}
	flush()
	return chunks
}

// tokenize splits text on wordSep while keeping the separators, so joining the
// tokens reproduces the input exactly.
func tokenize(text string) []string {
	var toks []string
	last := 0
	for _, loc := range wordSep.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			toks = append(toks, text[last:loc[0]])
		}
		toks = append(toks, text[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(text) {
		toks = append(toks, text[last:])
	}
	return toks
}
