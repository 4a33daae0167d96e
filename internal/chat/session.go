package chat

import (
	"context"
	"fmt"
	"io"
	"strings"

	"chatd/pkg/types"
)

// LineReader abstracts the interactive input source so the session loop can
// be driven by a real line editor or by a test script.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Generator is the part of Client the session needs.
type Generator interface {
	Chat(ctx context.Context, messages []types.Message, maxTokens int, temperature float64) (types.Message, error)
	Health(ctx context.Context) error
}

// Session is one interactive conversation: a REPL over a transcript.
type Session struct {
	client      Generator
	in          LineReader
	out         io.Writer
	transcript  Transcript
	maxTokens   int
	temperature float64
}

// NewSession wires a session together. maxTokens/temperature of zero let the
// server pick its defaults.
func NewSession(client Generator, in LineReader, out io.Writer, maxTokens int, temperature float64) *Session {
	return &Session{
		client:      client,
		in:          in,
		out:         out,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

const divider = "--------------------------------------------------"

// Run executes the read-eval-print loop until an exit sentinel, EOF or
// interrupt. Request failures are printed and the loop continues; note the
// failed user turn stays in local history with no assistant reply.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to chatd! (Type 'quit' or 'exit' to leave, 'clear' to reset history)")
	fmt.Fprintln(s.out, divider)

	if err := s.client.Health(ctx); err != nil {
		fmt.Fprintln(s.out, "Warning: could not reach the server. Make sure chatd is running.")
		fmt.Fprintln(s.out, divider)
	}

	for {
		line, err := s.in.ReadLine("You: ")
		if err != nil {
			// EOF or interrupt ends the session.
			fmt.Fprintln(s.out, "\nGoodbye!")
			return nil
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "quit", "exit":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		case "clear":
			s.transcript.Clear()
			fmt.Fprintln(s.out, "History cleared.")
			continue
		}

		s.transcript.Append(types.RoleUser, input)

		reply, err := s.client.Chat(ctx, s.transcript.Window(), s.maxTokens, s.temperature)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			fmt.Fprintln(s.out, divider)
			continue
		}
		fmt.Fprintf(s.out, "Bot: %s\n", reply.Content)
		fmt.Fprintln(s.out, divider)
		s.transcript.Append(types.RoleAssistant, reply.Content)
	}
}

// Transcript exposes the session history (for tests and status displays).
func (s *Session) Transcript() *Transcript { return &s.transcript }
