package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v, "/data", "/cfg")
	c := configFromViper(v)

	assert.Equal(t, "ollama", c.Backend)
	assert.Equal(t, DefaultModel, c.Model)
	assert.Equal(t, DefaultOllamaURL, c.OllamaURL)
	assert.Equal(t, DefaultRequestTimeout, c.RequestTimeout)
	assert.Equal(t, DefaultSamplingOptions(), c.Sampling)
	assert.Equal(t, time.Hour, c.CacheTTL)
	assert.Equal(t, 100, c.CacheSize)
	assert.Equal(t, ":8080", c.ServerAddr)
	assert.True(t, c.History)
	assert.Equal(t, filepath.Join("/data", "history.db"), c.HistoryDB)
	assert.Equal(t, filepath.Join("/cfg", "prompts"), c.PromptsDir)
	assert.NoError(t, c.Validate())
}

func TestInitConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend = "OpenAI"
model = "gpt-4o-mini"
cache_ttl = "10m"
cache_size = 5
temperature = 0.2
stop = ["END"]
history = false
`), 0644))
	t.Setenv("VIDSTUDY_MODEL", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	c := InitConfig(path)

	assert.Equal(t, "openai", c.Backend)
	assert.Equal(t, "from-env", c.Model)
	assert.Equal(t, "sk-test", c.OpenAIAPIKey)
	assert.Equal(t, 10*time.Minute, c.CacheTTL)
	assert.Equal(t, 5, c.CacheSize)
	assert.InDelta(t, 0.2, c.Sampling.Temperature, 1e-9)
	assert.Equal(t, []string{"END"}, c.Sampling.Stop)
	assert.False(t, c.History)
	assert.NotEmpty(t, c.ConfigDir)
	assert.NoError(t, c.Validate())
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Backend: "ollama", Model: "llama3:8b", TraceSampleRate: 1}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Backend = "bard" }, "unsupported backend"},
		{"openai without key", func(c *Config) { c.Backend = "openai" }, "API key is required"},
		{"openai with base url", func(c *Config) { c.Backend = "openai"; c.OpenAIBaseURL = "http://localhost:11434/v1" }, ""},
		{"empty model", func(c *Config) { c.Model = "" }, "model must not be empty"},
		{"sample rate", func(c *Config) { c.TraceSampleRate = 1.5 }, "trace_sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEnsureDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vidstudy")

	require.NoError(t, EnsureDefaultConfig(dir))
	content, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `backend = "ollama"`)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("model = \"mine\"\n"), 0644))
	require.NoError(t, EnsureDefaultConfig(dir))
	content, _ = os.ReadFile(filepath.Join(dir, "config.toml"))
	assert.Equal(t, "model = \"mine\"\n", string(content))
}
