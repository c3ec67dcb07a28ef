// Package notify delivers short, non-blocking status messages ("toasts").
// A failed side effect is reported here and never surfaces as an error.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows a message to the user. Implementations must return
// promptly and must not fail.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a function to the Notifier interface.
type Func func(level Level, message string)

func (f Func) Notify(level Level, message string) { f(level, message) }

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(Level, string) {}

// SlogNotifier logs messages. A nil Logger uses slog.Default().
type SlogNotifier struct {
	Logger *slog.Logger
}

func (n SlogNotifier) Notify(level Level, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), slogLevel(level), message, "toast", string(level))
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Console writes one prefixed line per message, e.g. to stderr.
type Console struct {
	W io.Writer

	mu sync.Mutex
}

var icons = map[Level]string{
	LevelInfo:    "ℹ",
	LevelSuccess: "✓",
	LevelWarning: "⚠",
	LevelError:   "✗",
}

func (c *Console) Notify(level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	icon, ok := icons[level]
	if !ok {
		icon = "•"
	}
	fmt.Fprintf(c.W, "%s %s\n", icon, message) //nolint:errcheck
}

// Note is a message captured by a Recorder.
type Note struct {
	Level   Level
	Message string
}

// Recorder keeps every message; tests use it to assert on toasts.
type Recorder struct {
	mu    sync.Mutex
	notes []Note
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Note{Level: level, Message: message})
}

// Notes returns a copy of the captured messages in arrival order.
func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Note(nil), r.notes...)
}
