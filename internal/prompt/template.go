// Package prompt turns an ordered transcript into the single prompt string a
// given model family expects. Formatting is a pure function of the messages:
// no model handle, no state, same input yields the same prompt.
package prompt

import (
	"strings"

	"chatd/pkg/types"
)

// Func formats a transcript into a prompt, ending with the family's
// generation header so the model continues as the assistant.
type Func func(messages []types.Message) string

// registry maps family names to their chat template functions.
var registry = map[string]Func{
	"gemma":   FormatGemma,
	"gemma2":  FormatGemma,
	"gemma3":  FormatGemma,
	"llama":   FormatLlama3,
	"llama3":  FormatLlama3,
	"qwen2":   FormatQwen2,
	"mistral": FormatMistral,
	"plain":   FormatPlain,
}

// ForFamily returns the template for the given family. The empty string maps
// to gemma (the default model family); unrecognized families fall back to
// the plain role-prefixed format.
func ForFamily(family string) Func {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		return FormatGemma
	}
	if fn, ok := registry[family]; ok {
		return fn
	}
	return FormatPlain
}

// Known reports whether the family has a registered template.
func Known(family string) bool {
	_, ok := registry[strings.ToLower(strings.TrimSpace(family))]
	return ok
}

// FormatGemma formats messages using the Gemma chat template.
//
// Format:
//
//	<start_of_turn>user
//	{user_message}<end_of_turn>
//	<start_of_turn>model
//
// Gemma has no system role; system messages are emitted as user turns.
func FormatGemma(messages []types.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleAssistant:
			b.WriteString("<start_of_turn>model\n")
		default:
			b.WriteString("<start_of_turn>user\n")
		}
		b.WriteString(msg.Content)
		b.WriteString("<end_of_turn>\n")
	}
	b.WriteString("<start_of_turn>model\n")
	return b.String()
}

// FormatLlama3 formats messages using the Llama 3 Instruct chat template.
func FormatLlama3(messages []types.Message) string {
	var b strings.Builder
	b.WriteString("<|begin_of_text|>")
	for _, msg := range messages {
		b.WriteString("<|start_header_id|>")
		b.WriteString(string(msg.Role))
		b.WriteString("<|end_header_id|>\n\n")
		b.WriteString(msg.Content)
		b.WriteString("<|eot_id|>")
	}
	b.WriteString("<|start_header_id|>assistant<|end_header_id|>\n\n")
	return b.String()
}

// FormatQwen2 formats messages using the Qwen2 chat template. A default
// system turn is injected when the transcript carries none.
func FormatQwen2(messages []types.Message) string {
	var b strings.Builder
	hasSystem := false
	for _, msg := range messages {
		if msg.Role == types.RoleSystem {
			hasSystem = true
			break
		}
	}
	if !hasSystem {
		b.WriteString("<|im_start|>system\nYou are a helpful assistant.<|im_end|>\n")
	}
	for _, msg := range messages {
		b.WriteString("<|im_start|>")
		b.WriteString(string(msg.Role))
		b.WriteString("\n")
		b.WriteString(msg.Content)
		b.WriteString("<|im_end|>\n")
	}
	b.WriteString("<|im_start|>assistant\n")
	return b.String()
}

// FormatMistral formats messages using the Mistral Instruct chat template.
// System content is folded into the first [INST] block.
func FormatMistral(messages []types.Message) string {
	var b strings.Builder
	b.WriteString("<s>")
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			b.WriteString("[INST] ")
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		case types.RoleUser:
			b.WriteString("[INST] ")
			b.WriteString(msg.Content)
			b.WriteString(" [/INST]")
		case types.RoleAssistant:
			b.WriteString(msg.Content)
			b.WriteString("</s>")
		}
	}
	return b.String()
}

// FormatPlain is the templateless fallback: one "role: content" line per
// message, then a bare assistant header to prompt a reply.
func FormatPlain(messages []types.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("assistant:")
	return b.String()
}
