package internal

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultRequestTimeout bounds a single backend call
const DefaultRequestTimeout = 30 * time.Second

// Source tells where a generated text came from
type Source string

const (
	SourceModel    Source = "model"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Result is generated text with its provenance
type Result struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// ModelClient generates text through a Backend, caching successful responses
// and substituting rule-based text when the backend fails
type ModelClient struct {
	backend      Backend
	cache        *ResponseCache
	fingerprints *Fingerprinter
	model        string
	options      SamplingOptions
	timeout      time.Duration
	logger       zerolog.Logger
	metrics      *Metrics
}

// ClientOption customizes a ModelClient
type ClientOption func(*ModelClient)

// WithModel sets the model name sent to the backend
func WithModel(model string) ClientOption {
	return func(c *ModelClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithSamplingOptions replaces the default sampling parameters
func WithSamplingOptions(opts SamplingOptions) ClientOption {
	return func(c *ModelClient) {
		c.options = opts
	}
}

// WithRequestTimeout bounds each backend call; non-positive values keep the default
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *ModelClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCache replaces the response cache
func WithCache(cache *ResponseCache) ClientOption {
	return func(c *ModelClient) {
		c.cache = cache
	}
}

// WithCacheKey keys the fingerprint HMAC, making cache keys stable across clients
func WithCacheKey(key []byte) ClientOption {
	return func(c *ModelClient) {
		c.fingerprints = NewFingerprinter(key)
	}
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *ModelClient) {
		c.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *Metrics) ClientOption {
	return func(c *ModelClient) {
		c.metrics = m
	}
}

// NewModelClient creates a client owning a fresh cache
func NewModelClient(backend Backend, options ...ClientOption) *ModelClient {
	c := &ModelClient{
		backend: backend,
		model:   DefaultModel,
		options: DefaultSamplingOptions(),
		timeout: DefaultRequestTimeout,
		logger:  zerolog.Nop(),
	}
	for _, option := range options {
		option(c)
	}
	if c.cache == nil {
		c.cache = NewResponseCache(DefaultCacheTTL, DefaultCacheSize)
	}
	if c.fingerprints == nil {
		c.fingerprints = NewFingerprinter(nil)
	}
	return c
}

// Generate returns model text for prompt and context, or fallback text if the backend fails
func (c *ModelClient) Generate(ctx context.Context, prompt, promptContext string, maxTokens int) string {
	return c.GenerateResult(ctx, prompt, promptContext, maxTokens).Text
}

// GenerateResult is Generate with provenance
func (c *ModelClient) GenerateResult(ctx context.Context, prompt, promptContext string, maxTokens int) Result {
	fp := c.fingerprints.Fingerprint(prompt, promptContext)

	if text, ok := c.cache.Get(fp); ok {
		if c.metrics != nil {
			c.metrics.CacheHits.Inc()
		}
		c.logger.Debug().Str("fingerprint", fp[:12]).Msg("cache hit")
		return Result{Text: text, Source: SourceCache}
	}
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}

	text, err := c.call(ctx, BuildPrompt(prompt, promptContext), maxTokens)
	if err != nil {
		kind := errorKind(err)
		if c.metrics != nil {
			c.metrics.BackendErrors.WithLabelValues(c.backend.Name(), kind).Inc()
		}
		c.logger.Warn().Err(err).Str("kind", kind).Msg("backend call failed, using fallback")
		return Result{Text: FallbackText(prompt, promptContext), Source: SourceFallback}
	}

	if evicted := c.cache.Put(fp, text); evicted > 0 && c.metrics != nil {
		c.metrics.CacheEvictions.Add(float64(evicted))
	}
	return Result{Text: text, Source: SourceModel}
}

// call performs one backend request under the per-call timeout
func (c *ModelClient) call(ctx context.Context, fullPrompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := tracer().Start(ctx, "backend.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("backend", c.backend.Name()),
		attribute.String("model", c.model),
		attribute.Int("max_tokens", maxTokens),
	)

	start := time.Now()
	text, err := c.backend.Generate(ctx, GenerationRequest{
		Model:     c.model,
		Prompt:    fullPrompt,
		MaxTokens: maxTokens,
		Options:   c.options,
	})
	if c.metrics != nil {
		c.metrics.BackendDuration.WithLabelValues(c.backend.Name(), c.model).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Model returns the configured model name
func (c *ModelClient) Model() string { return c.model }

// Backend returns the underlying backend
func (c *ModelClient) Backend() Backend { return c.backend }

// CacheStats returns a snapshot of the response cache counters
func (c *ModelClient) CacheStats() CacheStats { return c.cache.Stats() }
