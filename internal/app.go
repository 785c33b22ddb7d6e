package internal

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/dnscache"
)

// dnsRefreshInterval is how often cached backend addresses are re-resolved
const dnsRefreshInterval = 5 * time.Minute

// App holds the application state and dependencies
type App struct {
	config   *Config
	backend  Backend
	client   *ModelClient
	analyzer *Analyzer
	prompts  *PromptManager
	store    *ReportStore
	resolver *dnscache.Resolver
	registry *prometheus.Registry
	metrics  *Metrics
	ui       UIManager
}

// AppOption customizes App creation
type AppOption func(*App)

// WithBackend sets a custom model backend
func WithBackend(backend Backend) AppOption {
	return func(a *App) {
		a.backend = backend
	}
}

// WithStore sets a custom report store
func WithStore(store *ReportStore) AppOption {
	return func(a *App) {
		a.store = store
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) (*App, error) {
	app := &App{
		config:   config,
		registry: prometheus.NewRegistry(),
		ui:       NewUIManager(config.Verbose, config.Quiet),
	}
	app.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.metrics = NewMetrics(app.registry)

	for _, option := range options {
		option(app)
	}

	if app.backend == nil {
		if config.DNSCache {
			app.resolver = &dnscache.Resolver{}
		}
		app.backend = NewBackend(config, app.resolver)
	}

	prompts, err := NewPromptManager(config.PromptsDir)
	if err != nil {
		return nil, fmt.Errorf("loading prompt templates: %w", err)
	}
	app.prompts = prompts

	if app.store == nil && config.History && config.HistoryDB != "" {
		if err := EnsureDirs(filepath.Dir(config.HistoryDB)); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		store, err := OpenReportStore(config.HistoryDB)
		if err != nil {
			return nil, err
		}
		app.store = store
	}

	clientOptions := []ClientOption{
		WithModel(config.Model),
		WithSamplingOptions(config.Sampling),
		WithRequestTimeout(config.RequestTimeout),
		WithCache(NewResponseCache(config.CacheTTL, config.CacheSize)),
		WithLogger(NewLogger("model")),
		WithMetrics(app.metrics),
	}
	if config.CacheKey != "" {
		clientOptions = append(clientOptions, WithCacheKey([]byte(config.CacheKey)))
	}
	app.client = NewModelClient(app.backend, clientOptions...)
	app.analyzer = NewAnalyzer(app.client, app.prompts, app.store)

	return app, nil
}

// NewBackend creates the backend selected by config.Backend
func NewBackend(config *Config, resolver *dnscache.Resolver) Backend {
	if config.Backend == openaiBackendName {
		return NewOpenAIBackend(config.OpenAIAPIKey, config.OpenAIBaseURL, resolver)
	}
	return NewOllamaBackend(config.OllamaURL, resolver)
}

// Analyzer returns the stage pipeline
func (app *App) Analyzer() *Analyzer { return app.analyzer }

// Client returns the model client
func (app *App) Client() *ModelClient { return app.client }

// Config returns the loaded configuration
func (app *App) Config() *Config { return app.config }

// Store returns the report store, nil when history is disabled
func (app *App) Store() *ReportStore { return app.store }

// Metrics returns the registered collectors
func (app *App) Metrics() *Metrics { return app.metrics }

// Registry returns the Prometheus registry the metrics live in
func (app *App) Registry() *prometheus.Registry { return app.registry }

// UI returns the UI manager
func (app *App) UI() UIManager { return app.ui }

// RefreshDNS re-resolves cached backend addresses until ctx is done
func (app *App) RefreshDNS(ctx context.Context) {
	if app.resolver == nil {
		return
	}
	ticker := time.NewTicker(dnsRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.resolver.Refresh(true)
		}
	}
}

// AnalyzeTranscript runs all stages over transcript, advancing a stage bar as each finishes
func (app *App) AnalyzeTranscript(ctx context.Context, title, transcript string) (*Report, error) {
	bar := app.ui.NewStageBar(analysisStages, "Summarizing transcript...")
	defer bar.Finish()

	app.ui.Verbose("Analyzing %d characters with %s (%s)\n", len(transcript), app.client.Model(), app.backend.Name())

	report, err := app.analyzer.Analyze(ctx, title, transcript, func(stage string) {
		bar.Describe(stageStatus(stage))
		bar.Advance()
	})
	if err != nil {
		return nil, err
	}

	bar.Describe("Report ready")
	return report, nil
}

// AnalyzeFile reads a transcript from path (or stdin) and analyzes it.
// An empty title is derived from the file name.
func (app *App) AnalyzeFile(ctx context.Context, path, title string, stdin io.Reader) (*Report, error) {
	transcript, err := ReadTranscript(path, stdin)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = TitleFromPath(path)
	}
	return app.AnalyzeTranscript(ctx, title, transcript)
}

// Summarize runs only the summary stage
func (app *App) Summarize(ctx context.Context, transcript string) string {
	spinner := app.ui.NewSpinner("Summarizing transcript...")
	defer spinner.Finish()
	return app.analyzer.Summarizer().Summarize(ctx, transcript)
}

// ListModels returns the models offered by the configured backend
func (app *App) ListModels(ctx context.Context) ([]string, error) {
	type modelLister interface {
		ListModels(ctx context.Context) ([]string, error)
	}
	lister, ok := app.backend.(modelLister)
	if !ok {
		return nil, fmt.Errorf("backend %s cannot list models", app.backend.Name())
	}
	return lister.ListModels(ctx)
}

// Render formats Markdown for the terminal, or returns it unchanged when stdout is not a TTY
func (app *App) Render(markdown string) (string, error) {
	if !IsTerminal() {
		return markdown, nil
	}
	return RenderMarkdown(markdown)
}

// Close releases the report store
func (app *App) Close() error {
	if app.store != nil {
		return app.store.Close()
	}
	return nil
}

// stageStatus is the spinner text shown after stage finishes
func stageStatus(stage string) string {
	switch stage {
	case StageSummary:
		return "Building study guide..."
	case StageStudyGuide:
		return "Writing quiz questions..."
	case StageTopics:
		return "Topics ready, finishing..."
	default:
		return "Finishing report..."
	}
}
