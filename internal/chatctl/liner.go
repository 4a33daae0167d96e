package chatctl

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// linerReader adapts peterh/liner to the chat.LineReader interface, with a
// history file so arrow-key recall survives sessions.
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader() (*linerReader, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile := ""
	if dir, err := os.UserConfigDir(); err == nil {
		cfgDir := filepath.Join(dir, "chatd")
		if err := os.MkdirAll(cfgDir, 0o755); err == nil {
			historyFile = filepath.Join(cfgDir, "chat_history")
		}
	}
	r := &linerReader{line: line, historyFile: historyFile}
	r.loadHistory()
	return r, nil
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		// Ctrl+C and Ctrl+D both end the session.
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *linerReader) loadHistory() {
	if r.historyFile == "" {
		return
	}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}
}

func (r *linerReader) saveHistory() {
	if r.historyFile == "" {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = r.line.WriteHistory(f)
}

// Close persists history and restores the terminal.
func (r *linerReader) Close() {
	r.saveHistory()
	r.line.Close()
}
