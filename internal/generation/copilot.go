package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotGenerator produces text through a GitHub Copilot session. Each
// Generate call uses a fresh session so requests never share history.
type CopilotGenerator struct {
	defaultModel string
	client       copilotClient

	startOnce sync.Once
	startErr  error
	started   bool
}

// CopilotOptions lets tests swap the SDK client.
type CopilotOptions struct {
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotGenerator creates a generator. defaultModel is used when a
// request names none and may be blank, in which case the Copilot CLI picks.
func NewCopilotGenerator(defaultModel string, options *CopilotOptions) *CopilotGenerator {
	clientOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	var client copilotClient
	if options == nil || options.NewCopilotClient == nil {
		client = newCopilotClient(clientOptions)
	} else {
		client = options.NewCopilotClient(clientOptions)
	}

	return &CopilotGenerator{defaultModel: defaultModel, client: client}
}

// Generate sends the request context and prompt as one message and returns
// the assistant's reply.
func (g *CopilotGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to CopilotGenerator.Generate")
	}

	g.startOnce.Do(func() {
		// The SDK's autostart races when several goroutines hit it at once.
		g.startErr = g.client.Start(ctx)
		g.started = g.startErr == nil
	})
	if g.startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", g.startErr)
	}

	model := req.Model
	if model == "" {
		model = g.defaultModel
	}

	session, err := g.client.CreateSession(ctx, &copilot.SessionConfig{
		Model:               model,
		OnPermissionRequest: denyAllTools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	var (
		mu    sync.Mutex
		parts []string
	)
	unsubscribe := session.On(func(evt copilot.SessionEvent) {
		if evt.Type == copilot.AssistantMessage && evt.Data.Content != nil {
			mu.Lock()
			parts = append(parts, *evt.Data.Content)
			mu.Unlock()
		}
	})
	defer unsubscribe()

	unsubscribe = session.On(logSessionEvent)
	defer unsubscribe()

	final, err := session.SendAndWait(ctx, copilot.MessageOptions{Prompt: copilotPrompt(req)})
	if err != nil {
		return nil, Classify(fmt.Errorf("copilot session %s: %w", session.SessionID(), err))
	}

	mu.Lock()
	content := strings.Join(parts, "")
	mu.Unlock()
	if content == "" && final != nil && final.Data.Content != nil {
		content = *final.Data.Content
	}

	return &Response{Content: content, Model: model}, nil
}

// Close stops the Copilot client if it was started.
func (g *CopilotGenerator) Close() error {
	if !g.started {
		return nil
	}
	if err := g.client.Stop(); err != nil {
		slog.Info("failed to stop client", "error", err)
		return err
	}
	return nil
}

// copilotPrompt folds the system context into the message since sessions
// are created without a custom system prompt.
func copilotPrompt(req *Request) string {
	if req.Context == "" {
		return req.Prompt
	}
	return req.Context + "\n\n" + req.Prompt
}

// denyAllTools keeps generation text-only.
func denyAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	return copilot.PermissionRequestResult{Kind: "denied-by-rules"}, nil
}

func logSessionEvent(event copilot.SessionEvent) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{"type", event.Type}
	attrs = addIf(attrs, "content", event.Data.Content)
	attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)
	attrs = addIf(attrs, "reasoningText", event.Data.ReasoningText)

	slog.Debug("Copilot event received", attrs...)
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name, *v)
	}
	return attrs
}
