package abtest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lyra-ai/mentor/internal/generation"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/lyra-ai/mentor/internal/utils"
	"github.com/segmentio/encoding/json"
)

const suggestContext = "You are an expert in email marketing optimization and A/B testing."

// Suggestions is the outcome of Suggest. Fallback is set when the
// variations are the canned ones, with Err saying why.
type Suggestions struct {
	Variations []Variation
	Fallback   bool
	Err        error
}

// Suggest asks g for three variations of element tailored to the scenario.
// It never fails: generation or parse errors yield FallbackVariations.
func Suggest(ctx context.Context, g generation.Generator, element Element, sc models.Scenario) Suggestions {
	req := &generation.Request{
		Prompt:      suggestPrompt(element, sc),
		Context:     suggestContext,
		Temperature: utils.Ptr(0.9),
	}

	res := generation.GenerateOr(ctx, g, req, "")
	if res.Fallback {
		return Suggestions{Variations: FallbackVariations(), Fallback: true, Err: res.Err}
	}

	vs, err := ParseVariations(res.Content)
	if err != nil {
		return Suggestions{Variations: FallbackVariations(), Fallback: true, Err: err}
	}
	return Suggestions{Variations: vs}
}

func suggestPrompt(element Element, sc models.Scenario) string {
	var sb strings.Builder
	sb.WriteString("Create 3 A/B test variations for:\n")
	fmt.Fprintf(&sb, "Element: %s\n", element.Name)
	fmt.Fprintf(&sb, "Context: %s\n", sc.Context)
	fmt.Fprintf(&sb, "Goal: %s (current: %s)\n", sc.Metadata["goal"], sc.Metadata["current"])
	fmt.Fprintf(&sb, "Metric: %s\n\n", sc.Metadata["metric"])
	sb.WriteString("For each variation provide:\n")
	sb.WriteString("- Version A (control)\n")
	sb.WriteString("- Version B (test)\n")
	sb.WriteString("- Hypothesis (why B might perform better)\n\n")
	sb.WriteString("Format as JSON array with fields: a, b, hypothesis")
	return sb.String()
}

// ParseVariations reads a JSON array of variations out of model output,
// tolerating surrounding prose and code fences.
func ParseVariations(content string) ([]Variation, error) {
	start := strings.IndexByte(content, '[')
	end := strings.LastIndexByte(content, ']')
	if start < 0 || end < start {
		return nil, errors.New("no JSON array in generated variations")
	}

	var vs []Variation
	if err := json.Unmarshal([]byte(content[start:end+1]), &vs); err != nil {
		return nil, fmt.Errorf("parsing generated variations: %w", err)
	}
	if len(vs) == 0 {
		return nil, errors.New("generated variations are empty")
	}
	for i, v := range vs {
		if strings.TrimSpace(v.A) == "" || strings.TrimSpace(v.B) == "" {
			return nil, fmt.Errorf("generated variation %d is missing a version", i+1)
		}
	}
	return vs, nil
}
