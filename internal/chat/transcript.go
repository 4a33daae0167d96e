// Package chat holds the client side of a conversation: the in-memory
// transcript, the HTTP client for the daemon and the interactive session
// loop. Nothing here persists; the transcript lives and dies with one
// session.
package chat

import "chatd/pkg/types"

const (
	// historyWindow is how many trailing messages are sent per request.
	historyWindow = 10
	// historyCap bounds local history growth (10 user/assistant pairs).
	historyCap = 20
)

// Transcript is the ordered, append-only conversation of one session.
type Transcript struct {
	msgs []types.Message
}

// Append adds a message to the end of the transcript, trimming the oldest
// entries once the cap is exceeded.
func (t *Transcript) Append(role types.Role, content string) {
	t.msgs = append(t.msgs, types.Message{Role: role, Content: content})
	if len(t.msgs) > historyCap {
		t.msgs = t.msgs[len(t.msgs)-historyCap:]
	}
}

// Window returns the trailing slice of the transcript sent with a request.
func (t *Transcript) Window() []types.Message {
	start := 0
	if len(t.msgs) > historyWindow {
		start = len(t.msgs) - historyWindow
	}
	out := make([]types.Message, len(t.msgs)-start)
	copy(out, t.msgs[start:])
	return out
}

// Messages returns a copy of the whole transcript.
func (t *Transcript) Messages() []types.Message {
	out := make([]types.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Len reports the number of messages held.
func (t *Transcript) Len() int { return len(t.msgs) }

// Clear drops all history.
func (t *Transcript) Clear() { t.msgs = nil }
