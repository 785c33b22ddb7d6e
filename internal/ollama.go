package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/dnscache"
	"github.com/tidwall/gjson"
)

const (
	// DefaultOllamaURL is the local Ollama address
	DefaultOllamaURL = "http://localhost:11434"
	// DefaultModel is the model requested from the backend
	DefaultModel = "llama3:8b"

	ollamaBackendName = "ollama"
)

// SamplingOptions are the generation parameters fixed per deployment
type SamplingOptions struct {
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	TopK          int      `json:"top_k"`
	RepeatPenalty float64  `json:"repeat_penalty"`
	Stop          []string `json:"stop"`
	NumCtx        int      `json:"num_ctx"`
	NumThread     int      `json:"num_thread"`
}

// DefaultSamplingOptions returns options tuned for short, focused answers
func DefaultSamplingOptions() SamplingOptions {
	return SamplingOptions{
		Temperature:   0.6,
		TopP:          0.85,
		TopK:          40,
		RepeatPenalty: 1.1,
		Stop:          []string{"\n\n", "---", "===", "##"},
		NumCtx:        2048,
		NumThread:     4,
	}
}

// GenerationRequest is a single call to a model backend
type GenerationRequest struct {
	Model     string
	Prompt    string
	MaxTokens int
	Options   SamplingOptions
}

// Backend generates text from a fully built prompt
type Backend interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	Ping(ctx context.Context) error
}

// ollamaGenerateRequest is the body of POST /api/generate
type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	TopK          int      `json:"top_k"`
	NumPredict    int      `json:"num_predict"`
	RepeatPenalty float64  `json:"repeat_penalty"`
	Stop          []string `json:"stop"`
	NumCtx        int      `json:"num_ctx"`
	NumThread     int      `json:"num_thread"`
}

// OllamaBackend talks to Ollama's native generate API
type OllamaBackend struct {
	baseURL string
	http    *http.Client
}

// NewOllamaBackend creates an Ollama backend with a tuned http.Client.
// If baseURL is empty it defaults to DefaultOllamaURL.
// If resolver is non-nil, dials go through cached DNS lookups.
func NewOllamaBackend(baseURL string, resolver *dnscache.Resolver) *OllamaBackend {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &OllamaBackend{
		baseURL: baseURL,
		http:    &http.Client{Transport: newTransport(resolver)},
	}
}

// newTransport returns the HTTP transport shared by the backends
func newTransport(resolver *dnscache.Resolver) *http.Transport {
	t := &http.Transport{
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   false, // Ollama speaks HTTP/1.1
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if resolver != nil {
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var d net.Dialer
			return d.DialContext(ctx, network, net.JoinHostPort(ips[0], port))
		}
	}
	return t
}

// Name returns the backend identifier
func (o *OllamaBackend) Name() string { return ollamaBackendName }

// Generate sends a non-streaming generate request and returns the trimmed response text
func (o *OllamaBackend) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature:   req.Options.Temperature,
			TopP:          req.Options.TopP,
			TopK:          req.Options.TopK,
			NumPredict:    req.MaxTokens,
			RepeatPenalty: req.Options.RepeatPenalty,
			Stop:          req.Options.Stop,
			NumCtx:        req.Options.NumCtx,
			NumThread:     req.Options.NumThread,
		},
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(ollamaBackendName, resp)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("ollama: read response: %w", err)
	}
	if !gjson.ValidBytes(respBody) {
		return "", fmt.Errorf("ollama: %w: invalid JSON", ErrMalformedResponse)
	}

	field := gjson.GetBytes(respBody, "response")
	if !field.Exists() || field.Type != gjson.String {
		return "", fmt.Errorf("ollama: %w: missing response field", ErrMalformedResponse)
	}

	text := strings.TrimSpace(field.String())
	if text == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return text, nil
}

// ListModels returns the models installed on the Ollama instance
func (o *OllamaBackend) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(ollamaBackendName, resp)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("ollama: read response: %w", err)
	}

	if !gjson.ValidBytes(respBody) {
		return nil, fmt.Errorf("ollama: %w: invalid JSON", ErrMalformedResponse)
	}

	var names []string
	gjson.ParseBytes(respBody).Get("models").ForEach(func(_, model gjson.Result) bool {
		names = append(names, model.Get("name").String())
		return true
	})
	return names, nil
}

// Ping verifies connectivity to the Ollama instance
func (o *OllamaBackend) Ping(ctx context.Context) error {
	_, err := o.ListModels(ctx)
	return err
}
