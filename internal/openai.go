package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/dnscache"
)

const openaiBackendName = "openai"

// OpenAIBackend generates text through any OpenAI-compatible chat completions API,
// including Ollama's /v1 endpoint
type OpenAIBackend struct {
	client *openai.Client
}

// NewOpenAIBackend creates an OpenAI backend. An empty baseURL targets api.openai.com.
func NewOpenAIBackend(apiKey, baseURL string, resolver *dnscache.Resolver) *OpenAIBackend {
	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Transport: newTransport(resolver)}),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}

	client := openai.NewClient(opts...)
	return &OpenAIBackend{client: &client}
}

// Name returns the backend identifier
func (b *OpenAIBackend) Name() string { return openaiBackendName }

// Generate sends the prompt as a single user message
func (b *OpenAIBackend) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Options.Temperature),
		TopP:        openai.Float(req.Options.TopP),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if len(req.Options.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: req.Options.Stop}
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: creating chat completion: %w", statusError(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w: no choices", ErrMalformedResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return text, nil
}

// ListModels returns the model IDs served by the endpoint
func (b *OpenAIBackend) ListModels(ctx context.Context) ([]string, error) {
	page, err := b.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai: listing models: %w", statusError(err))
	}

	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Ping verifies connectivity to the endpoint
func (b *OpenAIBackend) Ping(ctx context.Context) error {
	_, err := b.ListModels(ctx)
	return err
}

// statusError converts an HTTP error from the SDK into an *APIError
func statusError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	body := apiErr.Message
	if body == "" {
		body = apiErr.RawJSON()
	}
	return &APIError{Backend: openaiBackendName, StatusCode: apiErr.StatusCode, Body: body}
}
