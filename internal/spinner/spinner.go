// Package spinner draws a one-line progress indicator while the coach or
// another slow call is working.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

// Interval is the time between frames.
const Interval = 80 * time.Millisecond

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Start draws frames followed by message on w until the returned stop func
// is called. stop clears the line, blocks until the drawing goroutine has
// exited, and is safe to call more than once.
func Start(w io.Writer, message string) (stop func()) {
	return start(w, message, Interval)
}

func start(w io.Writer, message string, interval time.Duration) func() {
	done := make(chan struct{})
	cleared := make(chan struct{})
	// frame + space + message, measured in terminal columns
	width := runewidth.StringWidth(message) + 2

	go func() {
		defer close(cleared)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], message) //nolint:errcheck
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-cleared
	}
}
