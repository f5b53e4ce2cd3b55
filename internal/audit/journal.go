// Package audit appends order attempts and outcomes as JSON lines.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one journaled event: a normalized request, a raw exchange
// response, or a failure with full detail.
type Entry struct {
	Ts       time.Time         `json:"ts"`
	Event    string            `json:"event"`
	Symbol   string            `json:"symbol,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Response json.RawMessage   `json:"response,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Journal writes entries to an append-only JSONL file.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJournal creates/opens the target file and returns a journal.
func NewJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record appends a single entry. Timestamps default to now.
func (j *Journal) Record(e Entry) {
	if j == nil {
		return
	}
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(e)
}

// Close flushes and closes the file handle.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
