// Package history keeps the bounded, newest-first record of processed
// commands. It is owned by the control loop; the core pipeline never touches
// it.
package history

import (
	"strings"
	"time"

	"reaperbridge/internal/model"
)

// DefaultLimit matches the capacity the bridge has always shipped with.
const DefaultLimit = 20

// Entry is one processed command. ToolCalls is empty for clarification
// rounds and failures.
type Entry struct {
	Timestamp time.Time
	Command   string
	ToolCalls []model.ToolCall
}

// History is an append-only ring capped at a fixed limit, newest first.
// Not safe for concurrent use; there is exactly one control loop.
type History struct {
	limit   int
	entries []Entry
}

func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Add records a command. Blank commands are ignored.
func (h *History) Add(command string, calls []model.ToolCall) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}
	entry := Entry{Timestamp: time.Now(), Command: command, ToolCalls: calls}
	h.entries = append([]Entry{entry}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// Entries returns a copy, newest first.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Len reports the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}
