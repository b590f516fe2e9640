package feedback

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Log is an append-only store of user feedback entries, kept as a single
// JSON array on disk. Volume is tiny, so read-modify-write is fine.
type Log struct {
	mu   sync.Mutex
	path string
}

func NewLog(path string) *Log { return &Log{path: path} }

// Append adds one feedback entry to the log, creating the file (and its
// directory) on first use.
func (l *Log) Append(entry json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []json.RawMessage
	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
	case errors.Is(err, os.ErrNotExist):
		// First entry, start a fresh array.
	default:
		return err
	}
	entries = append(entries, entry)

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(l.path, out, 0o644)
}
