// Package rubrics loads declarative scoring rubrics. A rubric bundles a
// criteria list, gate settings, and the practice scenarios that use it.
package rubrics

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lyra-ai/mentor/internal/criteria"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/lyra-ai/mentor/internal/scoring"
	"github.com/lyra-ai/mentor/internal/validation"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrUnknownRubric is returned by Builtin for names with no embedded rubric.
var ErrUnknownRubric = errors.New("unknown rubric")

// DefaultMinChars is the draft length required before analysis when neither
// the rubric nor the scenario sets one.
const DefaultMinChars = 50

// Rubric is the parsed form of a rubric file.
type Rubric struct {
	Name        string            `yaml:"name" json:"name"`
	Title       string            `yaml:"title,omitempty" json:"title,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Threshold   *int              `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	MinChars    int               `yaml:"min_chars,omitempty" json:"min_chars,omitempty"`
	Bands       scoring.Bands     `yaml:"bands,omitempty" json:"bands"`
	Hints       []scoring.Hint    `yaml:"hints,omitempty" json:"hints,omitempty"`
	Criteria    []criteria.Spec   `yaml:"criteria" json:"criteria"`
	Scenarios   []models.Scenario `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
}

// Parse validates data against the rubric schema, decodes it, and checks
// that every criterion can be built.
func Parse(data []byte) (*Rubric, error) {
	if errs := validation.ValidateRubricBytes(data); len(errs) > 0 {
		joined := make([]error, 0, len(errs))
		for _, e := range errs {
			joined = append(joined, errors.New(e))
		}
		return nil, fmt.Errorf("rubric failed schema validation: %w", errors.Join(joined...))
	}

	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding rubric: %w", err)
	}

	cs, err := r.build()
	if err != nil {
		return nil, fmt.Errorf("rubric %q: %w", r.Name, err)
	}
	if err := scoring.CheckWeights(cs, scoring.DefaultWeightTolerance); err != nil {
		slog.Warn("rubric weights do not sum to 1", "rubric", r.Name, "error", err)
	}
	if _, err := r.Scorer(); err != nil {
		return nil, fmt.Errorf("rubric %q: %w", r.Name, err)
	}

	return &r, nil
}

// Load reads and parses a rubric file.
func Load(p string) (*Rubric, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading rubric: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return r, nil
}

// Builtin returns the embedded rubric with the given name.
func Builtin(name string) (*Rubric, error) {
	data, err := builtinFS.ReadFile(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownRubric, name, strings.Join(Builtins(), ", "))
	}
	return Parse(data)
}

// Builtins lists the embedded rubric names in sorted order.
func Builtins() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Resolve treats ref as a file path when one exists there, and as a
// built-in name otherwise.
func Resolve(ref string) (*Rubric, error) {
	if st, err := os.Stat(ref); err == nil && !st.IsDir() {
		return Load(ref)
	}
	return Builtin(ref)
}

// ResolveIn is Resolve with extra directories searched for <ref>.yaml or
// <ref>.yml before falling back to the built-ins.
func ResolveIn(ref string, dirs []string) (*Rubric, error) {
	if st, err := os.Stat(ref); err == nil && !st.IsDir() {
		return Load(ref)
	}
	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			p := filepath.Join(dir, ref+ext)
			if _, err := os.Stat(p); err == nil {
				return Load(p)
			}
		}
	}
	return Builtin(ref)
}

// ListDir returns the rubric files in dir, sorted. A missing dir yields
// no files.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rubric directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (r *Rubric) build() ([]criteria.Criterion, error) {
	cs := make([]criteria.Criterion, 0, len(r.Criteria))
	for _, spec := range r.Criteria {
		c, err := criteria.Create(spec)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, nil
}

// Scorer builds a scorer for the rubric's criteria and gate settings.
func (r *Rubric) Scorer() (*scoring.Scorer, error) {
	cs, err := r.build()
	if err != nil {
		return nil, err
	}
	return scoring.NewScorer(scoring.Options{
		Name:      r.Name,
		Threshold: r.Threshold,
		Bands:     r.Bands,
		Hints:     r.Hints,
	}, cs...)
}

// PassThreshold is the rubric's gate, or scoring.DefaultThreshold when the
// rubric leaves it unset.
func (r *Rubric) PassThreshold() int {
	if r.Threshold == nil {
		return scoring.DefaultThreshold
	}
	return *r.Threshold
}

// Scenario returns the scenario with the given id.
func (r *Rubric) Scenario(id string) (models.Scenario, bool) {
	for _, s := range r.Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return models.Scenario{}, false
}

// MinCharsFor returns the draft length a scenario needs before analysis.
func (r *Rubric) MinCharsFor(s models.Scenario) int {
	switch {
	case s.Thresholds.MinChars > 0:
		return s.Thresholds.MinChars
	case r.MinChars > 0:
		return r.MinChars
	default:
		return DefaultMinChars
	}
}
