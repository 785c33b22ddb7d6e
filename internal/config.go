package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds application settings
type Config struct {
	// Model backend
	Backend        string
	Model          string
	OllamaURL      string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	RequestTimeout time.Duration
	Sampling       SamplingOptions
	DNSCache       bool

	// Response cache
	CacheTTL  time.Duration
	CacheSize int
	CacheKey  string

	// Output and logging
	Verbose   bool
	Quiet     bool
	LogLevel  string
	LogPretty bool

	// Server, history and tracing
	ServerAddr      string
	History         bool
	HistoryDB       string
	OTLPEndpoint    string
	TraceSampleRate float64
	PromptsDir      string

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
}

//go:embed config.toml
var defaultFS embed.FS

// ensureDefaultFile creates a file in configDir from the embedded default when missing
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig writes the embedded config.toml into configDir if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// setDefaults registers the default value of every key
func setDefaults(v *viper.Viper, dataDir, configDir string) {
	sampling := DefaultSamplingOptions()

	v.SetDefault("backend", ollamaBackendName)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("ollama_url", DefaultOllamaURL)
	v.SetDefault("openai_base_url", "")
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("dns_cache", false)

	v.SetDefault("temperature", sampling.Temperature)
	v.SetDefault("top_p", sampling.TopP)
	v.SetDefault("top_k", sampling.TopK)
	v.SetDefault("repeat_penalty", sampling.RepeatPenalty)
	v.SetDefault("num_ctx", sampling.NumCtx)
	v.SetDefault("num_thread", sampling.NumThread)
	v.SetDefault("stop", sampling.Stop)

	v.SetDefault("cache_ttl", DefaultCacheTTL)
	v.SetDefault("cache_size", DefaultCacheSize)
	v.SetDefault("cache_key", "")

	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)

	v.SetDefault("server_addr", ":8080")
	v.SetDefault("history", true)
	v.SetDefault("history_db", filepath.Join(dataDir, "history.db"))
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("trace_sample_rate", 1.0)
	v.SetDefault("prompts_dir", filepath.Join(configDir, "prompts"))
}

// InitConfig initializes Viper and loads configuration.
// configFile overrides the search path when non-empty.
func InitConfig(configFile string) *Config {
	configDir := filepath.Join(xdg.ConfigHome, "vidstudy")
	dataDir := filepath.Join(xdg.DataHome, "vidstudy")
	cacheDir := filepath.Join(xdg.CacheHome, "vidstudy")

	v := viper.New()
	setDefaults(v, dataDir, configDir)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("VIDSTUDY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// the standard OpenAI variable also works
	_ = v.BindEnv("openai_api_key", "VIDSTUDY_OPENAI_API_KEY", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := configFromViper(v)
	config.ConfigDir = configDir
	config.DataDir = dataDir
	config.CacheDir = cacheDir

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// configFromViper builds a Config from the loaded viper instance
func configFromViper(v *viper.Viper) *Config {
	return &Config{
		Backend:        strings.ToLower(v.GetString("backend")),
		Model:          v.GetString("model"),
		OllamaURL:      v.GetString("ollama_url"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		OpenAIBaseURL:  v.GetString("openai_base_url"),
		RequestTimeout: v.GetDuration("request_timeout"),
		DNSCache:       v.GetBool("dns_cache"),
		Sampling: SamplingOptions{
			Temperature:   v.GetFloat64("temperature"),
			TopP:          v.GetFloat64("top_p"),
			TopK:          v.GetInt("top_k"),
			RepeatPenalty: v.GetFloat64("repeat_penalty"),
			Stop:          v.GetStringSlice("stop"),
			NumCtx:        v.GetInt("num_ctx"),
			NumThread:     v.GetInt("num_thread"),
		},

		CacheTTL:  v.GetDuration("cache_ttl"),
		CacheSize: v.GetInt("cache_size"),
		CacheKey:  v.GetString("cache_key"),

		Verbose:   v.GetBool("verbose"),
		Quiet:     v.GetBool("quiet"),
		LogLevel:  v.GetString("log_level"),
		LogPretty: v.GetBool("log_pretty"),

		ServerAddr:      v.GetString("server_addr"),
		History:         v.GetBool("history"),
		HistoryDB:       v.GetString("history_db"),
		OTLPEndpoint:    v.GetString("otlp_endpoint"),
		TraceSampleRate: v.GetFloat64("trace_sample_rate"),
		PromptsDir:      v.GetString("prompts_dir"),
	}
}

// Validate checks settings that would otherwise fail on first use
func (c *Config) Validate() error {
	switch c.Backend {
	case ollamaBackendName:
	case openaiBackendName:
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("OpenAI API key is required for the openai backend - set it in config.toml or OPENAI_API_KEY environment variable")
		}
	default:
		return fmt.Errorf("unsupported backend: %s (supported: %s, %s)", c.Backend, ollamaBackendName, openaiBackendName)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("trace_sample_rate must be between 0 and 1, got %v", c.TraceSampleRate)
	}
	return nil
}
