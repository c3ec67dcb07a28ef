// Package generation produces free-form text from a language model. Callers
// go through [GenerateOr] so that every failure lands on a named fallback
// instead of an unhandled error.
package generation

//go:generate go tool mockgen -destination=mocks/generator.go -package=mocks . Generator

import (
	"context"
	"log/slog"
	"strings"
)

const (
	DefaultModel        = "gpt-4o-mini"
	DefaultMaxTokens    = 500
	DefaultTemperature  = 0.7
	DefaultSystemPrompt = "You are a helpful AI assistant for nonprofit professionals."
)

// Request is a single prompt to a generator.
type Request struct {
	Prompt string
	// Context becomes the system message. Empty uses DefaultSystemPrompt.
	Context string
	// Temperature is nil for DefaultTemperature so that 0 stays expressible.
	Temperature *float64
	Model       string
	MaxTokens   int
	// NoCache bypasses the Service response cache.
	NoCache bool
}

// Usage is the token accounting reported by a backend, when it has one.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is generated text plus what produced it.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
	Cached  bool   `json:"cached,omitempty"`
	Usage   Usage  `json:"usage"`
}

// Generator turns a Request into text.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req *Request) (*Response, error)

func (f GeneratorFunc) Generate(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Result is what callers consume. When Fallback is set, Content holds the
// caller's fallback text and Err records why generation was abandoned.
type Result struct {
	Content  string
	Err      error
	Fallback bool
	Response *Response
}

// GenerateOr asks g for text and returns fallback if g is nil, fails, or
// returns blank content. It never returns an error to the caller.
func GenerateOr(ctx context.Context, g Generator, req *Request, fallback string) Result {
	if g == nil {
		return Result{Content: fallback, Err: ErrNoGenerator, Fallback: true}
	}

	resp, err := g.Generate(ctx, req)
	if err == nil && (resp == nil || strings.TrimSpace(resp.Content) == "") {
		err = &GenerationError{Code: CodeEmpty, Message: "generator returned no content"}
	}
	if err != nil {
		slog.Warn("Text generation failed, using fallback", "error", err)
		return Result{Content: fallback, Err: err, Fallback: true}
	}
	return Result{Content: resp.Content, Response: resp}
}

// withDefaults returns a copy of req with every zero field filled in.
func withDefaults(req *Request, model string) Request {
	out := Request{}
	if req != nil {
		out = *req
	}
	if out.Model == "" {
		out.Model = model
	}
	if out.Model == "" {
		out.Model = DefaultModel
	}
	if out.Context == "" {
		out.Context = DefaultSystemPrompt
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	if out.Temperature == nil {
		t := DefaultTemperature
		out.Temperature = &t
	}
	return out
}
