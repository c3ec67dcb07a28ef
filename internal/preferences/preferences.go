// Package preferences persists voice and playback settings as a single JSON
// document. Saves replace the whole document: the last writer wins and
// nothing is merged.
package preferences

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"
)

// Preferences are the user's playback settings.
type Preferences struct {
	Voice    string  `json:"voice"`
	Speed    float64 `json:"speed"`
	AutoPlay bool    `json:"auto_play"`
	Volume   float64 `json:"volume"`
	Muted    bool    `json:"muted"`
}

// Defaults returns the settings used before anything is saved.
func Defaults() Preferences {
	return Preferences{
		Voice:  "alloy",
		Speed:  1.0,
		Volume: 0.8,
	}
}

// Validate checks value ranges.
func (p Preferences) Validate() error {
	var errs []error
	if p.Voice == "" {
		errs = append(errs, errors.New("voice is required"))
	}
	if p.Speed < 0.25 || p.Speed > 4 {
		errs = append(errs, fmt.Errorf("speed must be within [0.25, 4], got %g", p.Speed))
	}
	if p.Volume < 0 || p.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume must be within [0, 1], got %g", p.Volume))
	}
	return errors.Join(errs...)
}

// Store reads and writes preferences at one path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the saved preferences, or Defaults when none are saved.
func (s *Store) Load() (Preferences, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("reading preferences: %w", err)
	}

	p := Defaults()
	if err := json.Unmarshal(data, &p); err != nil {
		return Preferences{}, fmt.Errorf("parsing preferences %s: %w", s.path, err)
	}
	return p, nil
}

// Save validates p and replaces the stored document with it. The write goes
// to a temp file that is renamed into place, so readers never see a partial
// document.
func (s *Store) Save(p Preferences) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".preferences-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// Reset removes the stored document so Load returns Defaults again.
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing preferences: %w", err)
	}
	return nil
}
