package generation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/segmentio/encoding/json"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultTimeout = 30 * time.Second
)

// OpenAIConfig configures an OpenAIClient. Any OpenAI-compatible
// chat-completions endpoint works through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIClient calls the chat-completions API.
type OpenAIClient struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewOpenAIClient creates a Generator backed by the chat-completions API.
// cfg.Model defaults to gpt-4o-mini; cfg.BaseURL defaults to the OpenAI endpoint.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: APIKey is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = openAIDefaultTimeout
	}
	return &OpenAIClient{
		client:  &http.Client{Timeout: timeout},
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Model returns the default model name.
func (c *OpenAIClient) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage Usage      `json:"usage"`
	Error *chatError `json:"error,omitempty"`
}

type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Generate sends one system + user exchange and returns the first choice.
func (c *OpenAIClient) Generate(ctx context.Context, r *Request) (*Response, error) {
	req := withDefaults(r, c.model)

	body, err := json.Marshal(chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Context},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: *req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, Classify(fmt.Errorf("openai: http: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(fmt.Errorf("openai: read body: %w", err))
	}

	var result chatResponse
	if err := json.Unmarshal(raw, &result); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("openai: unmarshal response: %w", err)
	}

	if resp.StatusCode >= 300 {
		msg := ""
		if result.Error != nil {
			msg = result.Error.Message
			if result.Error.Code == "insufficient_quota" {
				msg = "quota: " + msg
			}
		}
		return nil, FromStatus(resp.StatusCode, msg, retryAfter(resp.Header))
	}
	if result.Error != nil {
		return nil, Classify(fmt.Errorf("openai: API error (%s): %s", result.Error.Type, result.Error.Message))
	}
	if len(result.Choices) == 0 {
		return nil, &GenerationError{Code: CodeEmpty, Message: "openai: no choices in response"}
	}

	model := result.Model
	if model == "" {
		model = req.Model
	}
	return &Response{
		Content: result.Choices[0].Message.Content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
