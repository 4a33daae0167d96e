package prompt

import (
	"strings"
	"testing"

	"chatd/pkg/types"
)

func transcript() []types.Message {
	return []types.Message{
		{Role: types.RoleSystem, Content: "Be terse."},
		{Role: types.RoleUser, Content: "Hello"},
		{Role: types.RoleAssistant, Content: "Hi."},
		{Role: types.RoleUser, Content: "What is Go?"},
	}
}

func TestForFamily(t *testing.T) {
	cases := []struct {
		family string
		marker string
	}{
		{"gemma", "<start_of_turn>"},
		{"gemma3", "<start_of_turn>"},
		{"llama3", "<|start_header_id|>"},
		{"qwen2", "<|im_start|>"},
		{"mistral", "[INST]"},
		{"", "<start_of_turn>"},          // default family
		{"no-such-family", "assistant:"}, // plain fallback
	}
	for _, tc := range cases {
		fn := ForFamily(tc.family)
		got := fn(transcript())
		if !strings.Contains(got, tc.marker) {
			t.Fatalf("family %q: prompt missing %q:\n%s", tc.family, tc.marker, got)
		}
	}
}

// Every message must appear in the prompt, in original order.
func TestAllMessagesInOrder(t *testing.T) {
	msgs := transcript()
	for family, fn := range registry {
		got := fn(msgs)
		pos := -1
		for _, m := range msgs {
			idx := strings.Index(got, m.Content)
			if idx < 0 {
				t.Fatalf("family %q: content %q missing from prompt", family, m.Content)
			}
			if idx < pos {
				t.Fatalf("family %q: content %q out of order", family, m.Content)
			}
			pos = idx
		}
	}
}

// Formatting the same transcript twice yields an identical prompt string.
func TestFormattingIsIdempotent(t *testing.T) {
	msgs := transcript()
	for family, fn := range registry {
		a := fn(msgs)
		b := fn(msgs)
		if a != b {
			t.Fatalf("family %q: formatting not deterministic", family)
		}
	}
}

func TestGemmaRoleMapping(t *testing.T) {
	got := FormatGemma(transcript())
	// System and user turns share the user tag; assistant maps to model.
	if !strings.Contains(got, "<start_of_turn>user\nBe terse.<end_of_turn>\n") {
		t.Fatalf("system turn not folded into user tag:\n%s", got)
	}
	if !strings.Contains(got, "<start_of_turn>model\nHi.<end_of_turn>\n") {
		t.Fatalf("assistant turn not mapped to model tag:\n%s", got)
	}
	if !strings.HasSuffix(got, "<start_of_turn>model\n") {
		t.Fatalf("missing generation header:\n%s", got)
	}
}

func TestPlainKeepsRoleTags(t *testing.T) {
	got := FormatPlain(transcript())
	for _, line := range []string{"system: Be terse.", "user: Hello", "assistant: Hi.", "user: What is Go?"} {
		if !strings.Contains(got, line) {
			t.Fatalf("missing line %q in:\n%s", line, got)
		}
	}
	if !strings.HasSuffix(got, "assistant:") {
		t.Fatalf("missing assistant header:\n%s", got)
	}
}

func TestKnown(t *testing.T) {
	if !Known("gemma") || !Known("LLAMA3") {
		t.Fatalf("expected known families")
	}
	if Known("") || Known("bogus") {
		t.Fatalf("unexpected known family")
	}
}
