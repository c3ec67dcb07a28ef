// Package mcp exposes the scorer to MCP clients over stdio.
package mcp

import (
	"fmt"
	"log/slog"

	"github.com/lyra-ai/mentor/internal/rubrics"
	"github.com/mark3labs/mcp-go/server"
)

// Options configures the server.
type Options struct {
	Version string
	// DefaultRubric is used by score_text when the caller names none.
	DefaultRubric string
	// Resolve loads a rubric by builtin name or file path. Defaults to
	// rubrics.Resolve.
	Resolve func(ref string) (*rubrics.Rubric, error)
	Logger  *slog.Logger
}

// New creates an MCP server with every mentor tool registered.
func New(opts Options) *server.MCPServer {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.DefaultRubric == "" {
		opts.DefaultRubric = "insight"
	}
	if opts.Resolve == nil {
		opts.Resolve = rubrics.Resolve
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := server.NewMCPServer(
		"mentor",
		opts.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	score := NewScoreTextTool(opts.Resolve, opts.DefaultRubric, opts.Logger)
	s.AddTool(score.Definition(), score.Handle)

	list := NewListRubricsTool()
	s.AddTool(list.Definition(), list.Handle)

	sample := NewSampleSizeTool()
	s.AddTool(sample.Definition(), sample.Handle)

	align := NewAlignmentTool()
	s.AddTool(align.Definition(), align.Handle)

	return s
}

// ServeStdio runs s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

const instructions = `mentor scores writing against rubrics of weighted heuristic criteria.
Call list_rubrics to see what is available, then score_text with the draft.
Scores are deterministic: the same text always gets the same result.`
