package chunker

import (
	"strings"
	"testing"
)

func TestSplit_ShortTextReturnedWhole(t *testing.T) {
	text := "A short sentence that fits."
	chunks := Split(text, 100, 10)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("expected text unchanged, got %q", chunks[0])
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if chunks := Split("", 100, 10); chunks != nil {
		t.Errorf("expected no chunks for empty input, got %v", chunks)
	}
	if chunks := Split("   \n\t  ", 100, 10); chunks != nil {
		t.Errorf("expected no chunks for whitespace input, got %v", chunks)
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	text := "First sentence ends here. Second sentence is also quite long and keeps going."
	chunks := Split(text, 40, 0)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0] != "First sentence ends here." {
		t.Errorf("expected cut after sentence terminator, got %q", chunks[0])
	}
}

func TestSplit_FallsBackToWhitespace(t *testing.T) {
	text := strings.Repeat("word ", 30) // no terminators at all
	chunks := Split(text, 40, 0)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		for _, w := range strings.Fields(c) {
			if w != "word" {
				t.Errorf("chunk %d split mid-word: %q", i, c)
			}
		}
	}
}

func TestSplit_OversizedWordKeptWhole(t *testing.T) {
	long := strings.Repeat("x", 250)
	chunks := Split(long, 100, 10)

	if len(chunks) != 1 {
		t.Fatalf("expected single oversized chunk, got %d", len(chunks))
	}
	if chunks[0] != long {
		t.Error("oversized word must not be split")
	}
}

func TestSplit_NoEmptyChunks(t *testing.T) {
	text := "One.   \n\n   Two.   \n\n   Three.   " + strings.Repeat("Four. ", 50)
	for _, c := range Split(text, 30, 5) {
		if strings.TrimSpace(c) == "" {
			t.Fatal("produced an empty chunk")
		}
		if c != strings.TrimSpace(c) {
			t.Errorf("chunk not trimmed: %q", c)
		}
	}
}

func TestSplit_NoContentLostWithoutOverlap(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	chunks := Split(text, 80, 0)

	strip := func(s string) string {
		return strings.Join(strings.Fields(s), "")
	}
	got := strip(strings.Join(chunks, " "))
	if got != strip(text) {
		t.Error("concatenated chunks do not recover the original content")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Sentences vary in length. Some are short! Others go on? ", 10)
	a := Split(text, 64, 8)
	b := Split(text, 64, 8)

	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_OverlapMakesProgress(t *testing.T) {
	text := strings.Repeat("tiny words here. ", 40)
	// overlap close to maxLength must not loop forever or duplicate endlessly
	chunks := Split(text, 20, 19)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if len(chunks) > len(text) {
		t.Fatalf("suspicious chunk explosion: %d chunks", len(chunks))
	}
}

func TestSplitTokens_RespectsLimit(t *testing.T) {
	text := strings.Repeat("alpha beta gamma ", 30)
	chunks := SplitTokens(text, 50)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > 50+len("gamma") {
			t.Errorf("chunk %d exceeds limit: %d chars", i, len(c))
		}
		for _, w := range strings.Fields(c) {
			switch w {
			case "alpha", "beta", "gamma":
			default:
				t.Errorf("chunk %d split a token: %q", i, w)
			}
		}
	}
}

func TestSplitTokens_NoContentLost(t *testing.T) {
	text := "Rows: a | b | c, and some punctuation-heavy text (with brackets)."
	chunks := SplitTokens(text, 16)

	strip := func(s string) string {
		return strings.Join(strings.Fields(s), "")
	}
	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c)
		joined.WriteString(" ")
	}
	if strip(joined.String()) != strip(text) {
		t.Error("token chunks do not recover the original content")
	}
}

func TestSplitTokens_EmptyInput(t *testing.T) {
	if chunks := SplitTokens("", 100); chunks != nil {
		t.Errorf("expected no chunks, got %v", chunks)
	}
}
