package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/segmentio/encoding/json"
)

const logSuffix = "-practice.jsonl"

// Logger records session events.
type Logger interface {
	Log(event Event) error
	Close() error
}

// JSONLogger writes events as newline-delimited JSON (NDJSON).
type JSONLogger struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	path string
}

// NewJSONLogger creates a logger that writes NDJSON to the given path.
// Parent directories are created automatically.
func NewJSONLogger(path string) (*JSONLogger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating session log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}

	return &JSONLogger{
		file: f,
		enc:  json.NewEncoder(f),
		path: path,
	}, nil
}

// Log writes a single event as one JSON line.
func (l *JSONLogger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(event)
}

// Close flushes and closes the underlying file.
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Path returns the file path of the session log.
func (l *JSONLogger) Path() string {
	return l.path
}

// NopLogger discards all events.
type NopLogger struct{}

func (NopLogger) Log(Event) error { return nil }
func (NopLogger) Close() error    { return nil }

// DefaultLogPath returns a timestamped practice log path inside dir. The
// short session id keeps concurrent sessions from sharing a file.
func DefaultLogPath(dir, sessionID string) string {
	ts := time.Now().UTC().Format("20060102T150405Z")
	if len(sessionID) > 8 {
		sessionID = sessionID[:8]
	}
	if sessionID == "" {
		return filepath.Join(dir, ts+logSuffix)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", ts, sessionID, logSuffix))
}
