package prompt

import (
	"strings"
	"testing"
)

func TestRender_SubstitutesBothPlaceholders(t *testing.T) {
	got := Render("Q: {request}\nCtx: {info}", "why?", "because")
	if got != "Q: why?\nCtx: because" {
		t.Errorf("unexpected render: %q", got)
	}
}

func TestRender_RepeatedAndMissingPlaceholders(t *testing.T) {
	got := Render("{request} and {request}", "x", "unused")
	if got != "x and x" {
		t.Errorf("expected both occurrences replaced, got %q", got)
	}

	got = Render("no placeholders here", "x", "y")
	if got != "no placeholders here" {
		t.Errorf("template without placeholders must pass through, got %q", got)
	}
}

func TestDefaultPrompts_CarryPlaceholders(t *testing.T) {
	for name, tpl := range map[string]string{
		"admission": Admission,
		"retrieve":  DefaultRetrieve,
		"augment":   DefaultAugment,
		"generate":  DefaultGenerate,
	} {
		if !strings.Contains(tpl, RequestVar) {
			t.Errorf("%s prompt is missing %s", name, RequestVar)
		}
	}
	if !strings.Contains(DefaultAugment, InfoVar) || !strings.Contains(DefaultGenerate, InfoVar) {
		t.Error("augment and generate prompts must carry {info}")
	}
}
