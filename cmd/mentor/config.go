package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lyra-ai/mentor/internal/generation"
	"github.com/lyra-ai/mentor/internal/projectconfig"
	"github.com/lyra-ai/mentor/internal/rubrics"
)

// loadConfig reads .mentor.yaml from the working directory upwards.
var loadConfig = func() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return projectconfig.Load(wd)
}

// Backends are swapped in tests.
var (
	newOpenAIBackend = func(cfg generation.OpenAIConfig) (generation.Generator, error) {
		return generation.NewOpenAIClient(cfg)
	}
	newCopilotBackend = func(model string) *generation.CopilotGenerator {
		return generation.NewCopilotGenerator(model, nil)
	}
)

// newGenerator builds the configured generator. The static engine yields a
// nil generator, which every caller treats as "use built-in text". The
// returned close func is never nil.
func newGenerator(cfg *projectconfig.ProjectConfig) (generation.Generator, func() error, error) {
	nop := func() error { return nil }
	g := cfg.Generation

	var (
		backend generation.Generator
		closeFn = nop
	)
	switch g.Engine {
	case "", projectconfig.EngineStatic:
		return nil, nop, nil
	case projectconfig.EngineOpenAI:
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, nop, errors.New("OPENAI_API_KEY is not set; add it to your environment or .env file")
		}
		b, err := newOpenAIBackend(generation.OpenAIConfig{
			APIKey:  key,
			Model:   g.Model,
			BaseURL: g.BaseURL,
			Timeout: g.TimeoutDuration(),
		})
		if err != nil {
			return nil, nop, err
		}
		backend = b
	case projectconfig.EngineCopilot:
		c := newCopilotBackend(g.Model)
		backend, closeFn = c, c.Close
	default:
		return nil, nop, fmt.Errorf("unknown generation engine %q", g.Engine)
	}

	svc := generation.NewService(backend, generation.ServiceConfig{
		Model:         g.Model,
		MaxAttempts:   g.MaxRetries,
		RatePerMinute: g.RatePerMinute,
		CacheTTL:      g.CacheTTLDuration(),
		CacheSize:     g.CacheSize,
	})
	return svc, closeFn, nil
}

// resolveRubric loads ref, or the configured default when ref is empty.
func resolveRubric(cfg *projectconfig.ProjectConfig, ref string) (*rubrics.Rubric, error) {
	if ref == "" {
		ref = cfg.Scoring.Rubric
	}
	return rubrics.ResolveIn(ref, cfg.RubricDirs())
}
