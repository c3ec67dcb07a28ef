// Package projectconfig loads .mentor.yaml project configuration, the
// optional .env file beside it, and MENTOR_* environment overrides.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/lyra-ai/mentor/internal/utils"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up from the working
// directory upwards.
const FileName = ".mentor.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultRubric   = "insight"
	DefaultMinChars = 50

	DefaultEngine        = "static"
	DefaultModel         = "gpt-4o-mini"
	DefaultTimeout       = 30
	DefaultMaxRetries    = 3
	DefaultRatePerMinute = 50
	DefaultCacheTTL      = 300
	DefaultCacheSize     = 100

	DefaultSessionDir      = ".mentor/sessions"
	DefaultPreferencesPath = "~/.mentor/preferences.json"
)

// Engines the generation section accepts.
const (
	EngineStatic  = "static"
	EngineOpenAI  = "openai"
	EngineCopilot = "copilot"
)

// Environment variables that override file values.
const (
	EnvGenerator   = "MENTOR_GENERATOR"
	EnvModel       = "MENTOR_MODEL"
	EnvBaseURL     = "MENTOR_BASE_URL"
	EnvPreferences = "MENTOR_PREFERENCES"
	EnvRubric      = "MENTOR_RUBRIC"
	EnvSessionDir  = "MENTOR_SESSION_DIR"
)

// PathsConfig lists extra directories searched for rubric files.
type PathsConfig struct {
	Rubrics []string `yaml:"rubrics,omitempty"`
}

// ScoringConfig holds scoring defaults.
type ScoringConfig struct {
	Rubric   string `yaml:"rubric,omitempty"`
	MinChars int    `yaml:"min_chars,omitempty"`
}

// GenerationConfig selects and tunes the text generator. Durations are in
// seconds. A negative RatePerMinute disables rate limiting.
type GenerationConfig struct {
	Engine        string `yaml:"engine,omitempty"`
	Model         string `yaml:"model,omitempty"`
	BaseURL       string `yaml:"base_url,omitempty"`
	Timeout       int    `yaml:"timeout,omitempty"`
	MaxRetries    int    `yaml:"max_retries,omitempty"`
	RatePerMinute int    `yaml:"rate_per_minute,omitempty"`
	CacheTTL      int    `yaml:"cache_ttl,omitempty"`
	CacheSize     int    `yaml:"cache_size,omitempty"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (g GenerationConfig) TimeoutDuration() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (g GenerationConfig) CacheTTLDuration() time.Duration {
	return time.Duration(g.CacheTTL) * time.Second
}

// SessionConfig controls practice event logs.
type SessionConfig struct {
	LogDir     string `yaml:"log_dir,omitempty"`
	SessionLog *bool  `yaml:"session_log,omitempty"`
}

// PreferencesConfig locates the preferences document.
type PreferencesConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .mentor.yaml.
type ProjectConfig struct {
	Paths       PathsConfig       `yaml:"paths,omitempty"`
	Scoring     ScoringConfig     `yaml:"scoring,omitempty"`
	Generation  GenerationConfig  `yaml:"generation,omitempty"`
	Session     SessionConfig     `yaml:"session,omitempty"`
	Preferences PreferencesConfig `yaml:"preferences,omitempty"`

	// Dir is the directory the config file was found in, or the start
	// directory when none was found. Relative paths resolve against it.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Scoring: ScoringConfig{
			Rubric:   DefaultRubric,
			MinChars: DefaultMinChars,
		},
		Generation: GenerationConfig{
			Engine:        DefaultEngine,
			Model:         DefaultModel,
			Timeout:       DefaultTimeout,
			MaxRetries:    DefaultMaxRetries,
			RatePerMinute: DefaultRatePerMinute,
			CacheTTL:      DefaultCacheTTL,
			CacheSize:     DefaultCacheSize,
		},
		Session: SessionConfig{
			LogDir:     DefaultSessionDir,
			SessionLog: utils.Ptr(false),
		},
		Preferences: PreferencesConfig{
			Path: DefaultPreferencesPath,
		},
	}
}

// Load finds .mentor.yaml by walking up from startDir (max 10 levels),
// merges it onto defaults, loads a .env file from the config directory if
// present, and applies MENTOR_* environment overrides. A missing config
// file is not an error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", startDir, err)
	}
	cfg.Dir = absStart

	path, data, err := findConfigFile(absStart)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		mergeConfig(cfg, &fileCfg)
		cfg.Dir = filepath.Dir(path)
	}

	if err := loadDotEnv(cfg.Dir); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// findConfigFile walks up from dir looking for .mentor.yaml (max 10
// levels). Returns os.ErrNotExist if none is found; other I/O errors are
// returned as is.
func findConfigFile(dir string) (string, []byte, error) {
	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// loadDotEnv reads dir/.env without overriding variables that are already
// set in the environment.
func loadDotEnv(dir string) error {
	p := filepath.Join(dir, ".env")
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("loading %s: %w", p, err)
	}
	return nil
}

// ApplyEnv overlays MENTOR_* variables found through lookup.
func (c *ProjectConfig) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvGenerator, &c.Generation.Engine)
	set(EnvModel, &c.Generation.Model)
	set(EnvBaseURL, &c.Generation.BaseURL)
	set(EnvPreferences, &c.Preferences.Path)
	set(EnvRubric, &c.Scoring.Rubric)
	set(EnvSessionDir, &c.Session.LogDir)
}

// Validate rejects values no component can work with.
func (c *ProjectConfig) Validate() error {
	var errs []error
	switch c.Generation.Engine {
	case EngineStatic, EngineOpenAI, EngineCopilot:
	default:
		errs = append(errs, fmt.Errorf("generation.engine %q must be one of %s, %s, %s",
			c.Generation.Engine, EngineStatic, EngineOpenAI, EngineCopilot))
	}
	for _, f := range []struct {
		name string
		v    int
	}{
		{"scoring.min_chars", c.Scoring.MinChars},
		{"generation.timeout", c.Generation.Timeout},
		{"generation.max_retries", c.Generation.MaxRetries},
		{"generation.cache_ttl", c.Generation.CacheTTL},
		{"generation.cache_size", c.Generation.CacheSize},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", f.name, f.v))
		}
	}
	return errors.Join(errs...)
}

// RubricDirs returns Paths.Rubrics resolved against the config directory.
func (c *ProjectConfig) RubricDirs() []string {
	return utils.ResolvePaths(c.Paths.Rubrics, c.Dir)
}

// SessionDir returns the session log directory resolved against the config
// directory.
func (c *ProjectConfig) SessionDir() string {
	return utils.ResolvePath(c.Session.LogDir, c.Dir)
}

// PreferencesPath returns the preferences file path with "~" expanded.
func (c *ProjectConfig) PreferencesPath() string {
	return utils.ResolvePath(c.Preferences.Path, c.Dir)
}

// SessionLogEnabled reports whether practice sessions write an event log.
func (c *ProjectConfig) SessionLogEnabled() bool {
	return c.Session.SessionLog != nil && *c.Session.SessionLog
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if len(src.Paths.Rubrics) > 0 {
		dst.Paths.Rubrics = src.Paths.Rubrics
	}

	if src.Scoring.Rubric != "" {
		dst.Scoring.Rubric = src.Scoring.Rubric
	}
	if src.Scoring.MinChars != 0 {
		dst.Scoring.MinChars = src.Scoring.MinChars
	}

	g, sg := &dst.Generation, src.Generation
	if sg.Engine != "" {
		g.Engine = sg.Engine
	}
	if sg.Model != "" {
		g.Model = sg.Model
	}
	if sg.BaseURL != "" {
		g.BaseURL = sg.BaseURL
	}
	if sg.Timeout != 0 {
		g.Timeout = sg.Timeout
	}
	if sg.MaxRetries != 0 {
		g.MaxRetries = sg.MaxRetries
	}
	if sg.RatePerMinute != 0 {
		g.RatePerMinute = sg.RatePerMinute
	}
	if sg.CacheTTL != 0 {
		g.CacheTTL = sg.CacheTTL
	}
	if sg.CacheSize != 0 {
		g.CacheSize = sg.CacheSize
	}

	if src.Session.LogDir != "" {
		dst.Session.LogDir = src.Session.LogDir
	}
	if src.Session.SessionLog != nil {
		dst.Session.SessionLog = src.Session.SessionLog
	}

	if src.Preferences.Path != "" {
		dst.Preferences.Path = src.Preferences.Path
	}
}
