// Package export sends finished work to the clipboard, a file or any
// writer. Export is a side effect: failures are toast-notified and never
// interrupt the caller.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/klauspost/compress/gzip"
	"github.com/lyra-ai/mentor/internal/notify"
)

const (
	ContentText = "text/plain"
	ContentJSON = "application/json"
)

// Payload is one exported document.
type Payload struct {
	Title       string
	ContentType string
	Body        []byte
}

// TextPayload wraps plain text.
func TextPayload(title, text string) Payload {
	return Payload{Title: title, ContentType: ContentText, Body: []byte(text)}
}

// Sink is an export destination.
type Sink interface {
	Write(ctx context.Context, p Payload) error
	// Describe names the destination for user messages.
	Describe() string
}

// ErrClipboardUnsupported is returned when no clipboard utility is available.
var ErrClipboardUnsupported = errors.New("clipboard is not available on this system")

// ClipboardSink copies the payload body to the system clipboard.
type ClipboardSink struct {
	write func(string) error
}

func NewClipboardSink() *ClipboardSink {
	return &ClipboardSink{}
}

func (c *ClipboardSink) Write(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	write := c.write
	if write == nil {
		if clipboard.Unsupported {
			return ErrClipboardUnsupported
		}
		write = clipboard.WriteAll
	}
	if err := write(string(p.Body)); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}

func (c *ClipboardSink) Describe() string { return "clipboard" }

// FileSink writes the payload to Path, gzip-compressed when Gzip is set or
// Path ends in ".gz". Existing files are replaced.
type FileSink struct {
	Path string
	Gzip bool
}

func (f *FileSink) compressed() bool {
	return f.Gzip || strings.HasSuffix(f.Path, ".gz")
}

func (f *FileSink) Write(ctx context.Context, p Payload) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	file, err := os.Create(f.Path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing export file: %w", cerr)
		}
	}()

	var w io.Writer = file
	if f.compressed() {
		zw := gzip.NewWriter(file)
		zw.Name = filepath.Base(strings.TrimSuffix(f.Path, ".gz"))
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("finishing gzip stream: %w", cerr)
			}
		}()
		w = zw
	}

	if _, err := w.Write(p.Body); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}

func (f *FileSink) Describe() string { return f.Path }

// WriterSink writes the payload to W followed by a newline.
type WriterSink struct {
	W    io.Writer
	Name string
}

func (s WriterSink) Write(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := p.Body
	if len(body) == 0 || body[len(body)-1] != '\n' {
		body = append(append([]byte(nil), body...), '\n')
	}
	_, err := s.W.Write(body)
	return err
}

func (s WriterSink) Describe() string {
	if s.Name == "" {
		return "output"
	}
	return s.Name
}

// Send writes p to sink and reports the outcome through n. It returns
// whether the export succeeded and never fails the caller.
func Send(ctx context.Context, sink Sink, p Payload, n notify.Notifier) bool {
	if n == nil {
		n = notify.Nop{}
	}
	what := p.Title
	if what == "" {
		what = "Result"
	}
	if err := sink.Write(ctx, p); err != nil {
		n.Notify(notify.LevelError, fmt.Sprintf("Couldn't export to %s: %v", sink.Describe(), err))
		return false
	}
	n.Notify(notify.LevelSuccess, fmt.Sprintf("%s exported to %s", what, sink.Describe()))
	return true
}
