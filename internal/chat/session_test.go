package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"chatd/pkg/types"
)

// scriptReader feeds a fixed sequence of lines, then EOF.
type scriptReader struct {
	lines []string
	i     int
}

func (s *scriptReader) ReadLine(prompt string) (string, error) {
	if s.i >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.i]
	s.i++
	return line, nil
}

// fakeGenerator counts requests and returns a canned reply or error.
type fakeGenerator struct {
	reply     string
	err       error
	healthErr error
	calls     int
	lastMsgs  []types.Message
}

func (f *fakeGenerator) Chat(ctx context.Context, messages []types.Message, maxTokens int, temperature float64) (types.Message, error) {
	f.calls++
	f.lastMsgs = messages
	if f.err != nil {
		return types.Message{}, f.err
	}
	return types.Message{Role: types.RoleAssistant, Content: f.reply}, nil
}

func (f *fakeGenerator) Health(ctx context.Context) error { return f.healthErr }

func runSession(t *testing.T, gen *fakeGenerator, lines ...string) (*Session, string) {
	t.Helper()
	var out bytes.Buffer
	s := NewSession(gen, &scriptReader{lines: lines}, &out, 0, 0)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return s, out.String()
}

func TestExitWithoutRequest(t *testing.T) {
	gen := &fakeGenerator{reply: "hi"}
	_, out := runSession(t, gen, "exit")
	if gen.calls != 0 {
		t.Fatalf("exit sentinel sent %d requests", gen.calls)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Fatalf("missing goodbye: %q", out)
	}
}

func TestOneTurnThenExit(t *testing.T) {
	gen := &fakeGenerator{reply: "Hello back"}
	s, out := runSession(t, gen, "Hello", "quit")
	if gen.calls != 1 {
		t.Fatalf("calls=%d", gen.calls)
	}
	if n := strings.Count(out, "Bot: "); n != 1 {
		t.Fatalf("bot lines=%d in %q", n, out)
	}
	if !strings.Contains(out, "Bot: Hello back") {
		t.Fatalf("missing reply: %q", out)
	}
	msgs := s.Transcript().Messages()
	if len(msgs) != 2 || msgs[0].Role != types.RoleUser || msgs[1].Role != types.RoleAssistant {
		t.Fatalf("transcript: %+v", msgs)
	}
}

func TestBlankInputIgnored(t *testing.T) {
	gen := &fakeGenerator{reply: "hi"}
	_, _ = runSession(t, gen, "", "   ", "exit")
	if gen.calls != 0 {
		t.Fatalf("blank input sent %d requests", gen.calls)
	}
}

// A failed request is printed and the loop continues; the user turn stays in
// history with no assistant reply.
func TestFailureKeepsLoopAlive(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	s, out := runSession(t, gen, "Hello", "again", "exit")
	if gen.calls != 2 {
		t.Fatalf("loop did not continue after failure: calls=%d", gen.calls)
	}
	if !strings.Contains(out, "Error: connection refused") {
		t.Fatalf("missing error output: %q", out)
	}
	msgs := s.Transcript().Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript: %+v", msgs)
	}
	for _, m := range msgs {
		if m.Role != types.RoleUser {
			t.Fatalf("unexpected assistant entry after failures: %+v", msgs)
		}
	}
}

func TestClearResetsHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "hi"}
	s, out := runSession(t, gen, "Hello", "clear", "exit")
	if !strings.Contains(out, "History cleared.") {
		t.Fatalf("missing clear confirmation: %q", out)
	}
	if s.Transcript().Len() != 0 {
		t.Fatalf("transcript not cleared: %+v", s.Transcript().Messages())
	}
}

func TestEOFEndsSession(t *testing.T) {
	gen := &fakeGenerator{reply: "hi"}
	_, out := runSession(t, gen) // no lines: immediate EOF
	if !strings.Contains(out, "Goodbye!") {
		t.Fatalf("missing goodbye on EOF: %q", out)
	}
}

func TestServerDownWarning(t *testing.T) {
	gen := &fakeGenerator{healthErr: errors.New("refused")}
	_, out := runSession(t, gen, "exit")
	if !strings.Contains(out, "Warning: could not reach the server") {
		t.Fatalf("missing warning: %q", out)
	}
}

func TestWindowSentNotFullHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "r"}
	lines := make([]string, 0, 16)
	for i := 0; i < 12; i++ {
		lines = append(lines, "turn")
	}
	lines = append(lines, "exit")
	_, _ = runSession(t, gen, lines...)
	if len(gen.lastMsgs) > historyWindow {
		t.Fatalf("sent %d messages, window is %d", len(gen.lastMsgs), historyWindow)
	}
}
