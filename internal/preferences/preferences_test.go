package preferences

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing", "prefs.json"))
	p, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), p)
}

func TestSaveLoad(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested", "prefs.json"))

	want := Preferences{Voice: "nova", Speed: 1.25, AutoPlay: true, Volume: 0.5}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSaveReplacesWholeDocument(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "prefs.json"))

	require.NoError(t, s.Save(Preferences{Voice: "nova", Speed: 2, AutoPlay: true, Volume: 1, Muted: true}))
	second := Preferences{Voice: "echo", Speed: 1, Volume: 0.3}
	require.NoError(t, s.Save(second))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, second, got, "fields from the first save are not merged in")
}

func TestLoadPartialDocumentKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"voice":"shimmer"}`), 0o644))

	got, err := NewStore(path).Load()
	require.NoError(t, err)
	require.Equal(t, "shimmer", got.Voice)
	require.Equal(t, 1.0, got.Speed)
	require.Equal(t, 0.8, got.Volume)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{voice`), 0o644))

	_, err := NewStore(path).Load()
	require.ErrorContains(t, err, "parsing preferences")
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "prefs.json"))
	err := s.Save(Preferences{Speed: 9, Volume: -1})
	require.ErrorContains(t, err, "voice is required")
	require.ErrorContains(t, err, "speed must be within")
	require.ErrorContains(t, err, "volume must be within")

	_, statErr := os.Stat(s.Path())
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestConcurrentSavesLastWriterWins(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "prefs.json"))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Save(Preferences{Voice: fmt.Sprintf("v%d", i), Speed: 1, Volume: 0.5}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, err := s.Load()
	require.NoError(t, err)
	require.Regexp(t, `^v[0-7]$`, got.Voice, "the document is always one complete save")
}

func TestReset(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, s.Reset())
	require.NoError(t, s.Save(Preferences{Voice: "nova", Speed: 1, Volume: 1}))
	require.NoError(t, s.Reset())

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), got)
}
