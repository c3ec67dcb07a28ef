package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
)

// LogFile is a practice log found on disk.
type LogFile struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	NumEvents int
}

// ListLogs finds practice logs in dir, newest first.
func ListLogs(dir string) ([]LogFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading session directory: %w", err)
	}

	var files []LogFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), logSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		p := filepath.Join(dir, e.Name())
		n, _ := countLines(p) //nolint:errcheck
		files = append(files, LogFile{
			Path:      p,
			Name:      e.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			NumEvents: n,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

// ReadEvents parses every well-formed event in a practice log. Malformed
// lines are skipped.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	return events, nil
}

// RenderTimeline writes a human-readable timeline of events to w.
//
//nolint:errcheck // display-only writes
func RenderTimeline(w io.Writer, events []Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	fmt.Fprintln(w, "PRACTICE TIMELINE")
	fmt.Fprintln(w, strings.Repeat("─", 48))

	start := events[0].Timestamp
	for _, ev := range events {
		ts := formatDuration(ev.Timestamp.Sub(start))
		d := ev.Data

		switch ev.Type {
		case EventSessionStart:
			fmt.Fprintf(w, "[%s] session started  rubric=%s  scenarios=%d\n",
				ts, str(d["rubric"]), jsonNumber(d["scenario_count"]))
		case EventScenarioStart:
			fmt.Fprintf(w, "[%s] ▶ scenario %d: %s\n", ts, jsonNumber(d["index"])+1, str(d["title"]))
		case EventAnalysis:
			icon := "✗"
			if passed, _ := d["passed"].(bool); passed {
				icon = "✓"
			}
			fmt.Fprintf(w, "[%s]   %s %s scored %d/%d (critical: %d)\n", ts, icon,
				str(d["scenario_id"]), jsonNumber(d["score"]), jsonNumber(d["threshold"]), jsonNumber(d["critical"]))
		case EventSessionRestart:
			fmt.Fprintf(w, "[%s] ↺ restarted\n", ts)
		case EventError:
			fmt.Fprintf(w, "[%s] error: %s\n", ts, str(d["message"]))
		case EventSessionComplete:
			fmt.Fprintf(w, "[%s] complete  %d/%d saved  avg=%.1f  (%s)\n", ts,
				jsonNumber(d["completed"]), jsonNumber(d["total"]), jsonFloat(d["average_score"]),
				time.Duration(jsonNumber(d["elapsed_ms"]))*time.Millisecond)
		default:
			fmt.Fprintf(w, "[%s] %s %v\n", ts, ev.Type, d)
		}
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%6dms", d.Milliseconds())
	}
	return fmt.Sprintf("%6.1fs", d.Seconds())
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// jsonNumber extracts an int from a JSON-decoded value.
func jsonNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64() //nolint:errcheck
		return int(i)
	}
	return 0
}

func jsonFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64() //nolint:errcheck
		return f
	}
	return 0
}
