package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Provider names accepted by NewCompleter.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Request is one chat completion call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Completer returns the model's raw text answer for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderConfig selects and configures a Completer.
type ProviderConfig struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	ServerURL string
	Timeout   time.Duration
}

// NewCompleter builds the configured backend. It returns a nil Completer
// without error when the provider needs an API key and none is set.
func NewCompleter(cfg ProviderConfig) (Completer, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewOpenAICompleter(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case ProviderOllama:
		return NewOllamaCompleter(cfg.ServerURL, cfg.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

// OpenAICompleter talks to the OpenAI chat completions API or any
// compatible endpoint.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, baseURL, model string, timeout time.Duration) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	var out string
	err := retryWithBackoff(ctx, maxRetries, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: req.System},
				{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return errEmptyResponse
		}
		out = resp.Choices[0].Message.Content
		return nil
	})
	return out, err
}

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch status {
	case http.StatusTooManyRequests:
		return &rateLimitError{err: err}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &authError{err: err}
	}
	return err
}

// OllamaCompleter runs prompts against a local Ollama server.
type OllamaCompleter struct {
	llm *ollama.LLM
}

func NewOllamaCompleter(serverURL, model string, timeout time.Duration) (*OllamaCompleter, error) {
	if model == "" {
		return nil, errors.New("ollama model name is required")
	}
	opts := []ollama.Option{
		ollama.WithModel(model),
		ollama.WithFormat("json"),
		ollama.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return &OllamaCompleter{llm: llm}, nil
}

func (c *OllamaCompleter) Complete(ctx context.Context, req Request) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}
	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(float64(req.Temperature)),
		llms.WithMaxTokens(req.MaxTokens),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
