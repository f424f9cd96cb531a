package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is Ollama's OpenAI-compatible endpoint
	DefaultBaseURL = "http://localhost:11434/v1"
	// DefaultModel is the chat model used when none is configured
	DefaultModel = "mistral:latest"
	// DefaultTemperature is the sampling temperature used when none is configured
	DefaultTemperature float32 = 0.5
	// DefaultTimeout bounds a single HTTP call to the model server
	DefaultTimeout = 120 * time.Second
)

var (
	// ErrEmptyPrompt is returned when prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrNoChoices is returned when the model answers without any choice
	ErrNoChoices = errors.New("no completion choices returned")
)

// ChatAPI defines the interface for chat completion and model listing
type ChatAPI interface {
	CreateCompletion(ctx context.Context, model string, temperature float32, prompt string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Client wraps an OpenAI-compatible chat API
type Client struct {
	api         ChatAPI
	model       string
	temperature float32
}

type OpenAIAdapter struct {
	client *openai.Client
}

func NewOpenAIAdapter(apiKey, baseURL string, timeout time.Duration) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(cfg),
	}
}

// CreateCompletion sends prompt as the only user message and returns the first choice
func (a *OpenAIAdapter) CreateCompletion(ctx context.Context, model string, temperature float32, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// ListModels returns the IDs of the models served by the endpoint
func (a *OpenAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	list, err := a.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// NewClientWithConfig creates a new client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	return newClient(NewOpenAIAdapter(cfg.APIKey, cfg.BaseURL, cfg.Timeout), cfg)
}

func newClient(api ChatAPI, cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	// go-openai drops a zero temperature from the request, so zero means unset.
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Client{
		api:         api,
		model:       model,
		temperature: temperature,
	}
}

// Model returns the configured model identifier
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt to the model and returns the raw text it produced
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	text, err := c.api.CreateCompletion(ctx, c.model, c.temperature, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	return text, nil
}

// Ping checks that the endpoint answers and serves the configured model
func (c *Client) Ping(ctx context.Context) error {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, id := range models {
		if id == c.model {
			return nil
		}
	}
	return fmt.Errorf("model %q not served by endpoint", c.model)
}
