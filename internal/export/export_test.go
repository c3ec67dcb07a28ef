package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/lyra-ai/mentor/internal/notify"
	"github.com/stretchr/testify/require"
)

var result = &models.ScoreResult{
	OverallScore: 81,
	Threshold:    75,
	Passed:       true,
	Criteria: []models.CriterionScore{
		{ID: "specificity", Name: "Specificity", Score: 100, Category: models.CategoryStrength},
		{ID: "evidence", Name: "Evidence", Score: 65, Category: models.CategoryConcern},
	},
	Recommendations: []string{"Add specific percentages, timeframes, and measurable outcomes"},
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.txt")
	sink := &FileSink{Path: path}

	require.NoError(t, sink.Write(context.Background(), TextPayload("Report", "hello")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
	require.Equal(t, path, sink.Describe())
}

func TestFileSinkGzip(t *testing.T) {
	for _, sink := range []*FileSink{
		{Path: filepath.Join(t.TempDir(), "report.json.gz")},
		{Path: filepath.Join(t.TempDir(), "report.json"), Gzip: true},
	} {
		body, err := FormatJSON(result)
		require.NoError(t, err)
		require.NoError(t, sink.Write(context.Background(), Payload{ContentType: ContentJSON, Body: body}))

		f, err := os.Open(sink.Path)
		require.NoError(t, err)
		zr, err := gzip.NewReader(f)
		require.NoError(t, err)
		got, err := io.ReadAll(zr)
		require.NoError(t, err)
		require.NoError(t, f.Close())

		require.Equal(t, body, got)
		require.Equal(t, "report.json", zr.Name)
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := WriterSink{W: &buf}
	require.NoError(t, sink.Write(context.Background(), TextPayload("", "line")))
	require.NoError(t, sink.Write(context.Background(), TextPayload("", "already\n")))
	require.Equal(t, "line\nalready\n", buf.String())
	require.Equal(t, "output", sink.Describe())
}

func TestClipboardSink(t *testing.T) {
	var copied string
	sink := &ClipboardSink{write: func(s string) error { copied = s; return nil }}
	require.NoError(t, sink.Write(context.Background(), TextPayload("", "draft text")))
	require.Equal(t, "draft text", copied)

	sink = &ClipboardSink{write: func(string) error { return errors.New("xclip missing") }}
	require.ErrorContains(t, sink.Write(context.Background(), TextPayload("", "x")), "copying to clipboard: xclip missing")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sink.Write(ctx, TextPayload("", "x")), context.Canceled)
}

func TestSend(t *testing.T) {
	rec := &notify.Recorder{}

	ok := Send(context.Background(), &ClipboardSink{write: func(string) error { return nil }}, TextPayload("Draft", "x"), rec)
	require.True(t, ok)

	ok = Send(context.Background(), &ClipboardSink{write: func(string) error { return errors.New("denied") }}, TextPayload("", "x"), rec)
	require.False(t, ok)

	require.Equal(t, []notify.Note{
		{Level: notify.LevelSuccess, Message: "Draft exported to clipboard"},
		{Level: notify.LevelError, Message: "Couldn't export to clipboard: copying to clipboard: denied"},
	}, rec.Notes())

	// nil notifier is allowed
	require.True(t, Send(context.Background(), WriterSink{W: io.Discard}, TextPayload("", "x"), nil))
}

func TestFormatText(t *testing.T) {
	out := FormatText("Donor retention", "  Retention fell 7 points.  ", result)
	require.Equal(t, "Donor retention\n"+
		"===============\n\n"+
		"Retention fell 7 points.\n\n"+
		"Score: 81/100 (target 75, passed)\n"+
		"  Specificity              100  strength\n"+
		"  Evidence                  65  concern\n"+
		"\nNext steps:\n"+
		"  - Add specific percentages, timeframes, and measurable outcomes\n", out)

	require.Equal(t, "just a draft\n", FormatText("", "just a draft", nil))
}

func TestSummaryText(t *testing.T) {
	out := SummaryText(models.CompletionSummary{
		TimeSpent:          95*time.Second + 400*time.Millisecond,
		ScenariosCompleted: 2,
		TotalScenarios:     3,
		AverageScore:       87.5,
		Saved: []models.SavedResult{
			{ScenarioIndex: 0, Context: "Monthly newsletter", Score: 100},
			{ScenarioIndex: 2, Context: "Event invitation", Score: 75},
		},
	})
	require.Equal(t, "Completed 2 of 3 scenarios, average score 87.5, time 1m35s\n"+
		"  1. Monthly newsletter  100\n"+
		"  3. Event invitation  75\n", out)
}
