package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// historyPrefix marks the mode of each line in the history file.
var historyPrefix = map[inputMode]string{
	modeExpand: "X:",
	modeCtrl:   "C:",
}

// HistoryEntry is one submitted line and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

func (e HistoryEntry) String() string { return historyPrefix[e.Mode] + e.Line }

func parseHistoryEntry(line string) HistoryEntry {
	for mode, prefix := range historyPrefix {
		if s, ok := strings.CutPrefix(line, prefix); ok {
			return HistoryEntry{Line: s, Mode: mode}
		}
	}

	return HistoryEntry{Line: line, Mode: modeExpand}
}

// History is the list of submitted lines, persisted to a file.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory returns an empty history persisted at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those read from the history file. A missing
// file is not an error.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.entries = append(h.entries, parseHistoryEntry(line))
		}
	}

	return scanner.Err()
}

// Add appends line entered in mode. Repeating the last entry is a no-op; an
// earlier duplicate is moved to the end.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	entry := HistoryEntry{Line: line, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	if i := slices.Index(h.entries, entry); i >= 0 {
		h.entries = append(slices.Delete(h.entries, i, i+1), entry)

		return h.rewrite()
	}

	h.entries = append(h.entries, entry)

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.String() + "\n")

	return err
}

// Entry returns the entry at index i, oldest first.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of every entry.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// rewrite writes every entry to the history file. h.mu must be held.
func (h *History) rewrite() error {
	var sb strings.Builder

	for _, e := range h.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}

	return os.WriteFile(h.path, []byte(sb.String()), 0o600)
}
