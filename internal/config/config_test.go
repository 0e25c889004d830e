package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3:latest", cfg.LLM.Model)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 10*time.Minute, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.Generation.DefaultDrafts)
	assert.Equal(t, "127.0.0.1:8430", cfg.Address())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ParsesAndExpands(t *testing.T) {
	t.Setenv("POSTFORGE_TEST_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  port: 9000
  data_dir: ~/pf-data
llm:
  provider: openai
  model: gpt-4o-mini
  temperature: 0.2
  api_key: ${POSTFORGE_TEST_KEY}
  timeout: 90s
  models:
    critic: gpt-4o
generation:
  default_drafts: 2
  max_drafts: 4
logging:
  level: debug
  output: [stdout, file]
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, 9000, cfg.Service.Port)
	assert.Equal(t, filepath.Join(home, "pf-data"), cfg.Service.DataDir)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "gpt-4o", cfg.LLM.Models.Critic)
	assert.Empty(t, cfg.LLM.Models.Writer)
	assert.Equal(t, 2, cfg.Generation.DefaultDrafts)
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
	assert.Equal(t, "text", cfg.Logging.Format, "unset keys keep defaults")
}

func TestLoad_DefaultModelFollowsProvider(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "no llm section", yaml: "service:\n  port: 9000\n", want: "llama3:latest"},
		{name: "gemini", yaml: "llm:\n  provider: gemini\n", want: "gemini-2.5-flash"},
		{name: "openai", yaml: "llm:\n  provider: openai\n", want: "gpt-4o-mini"},
		{name: "deepseek", yaml: "llm:\n  provider: deepseek\n", want: "deepseek-chat"},
		{name: "anthropic", yaml: "llm:\n  provider: anthropic\n", want: "claude-sonnet-4-20250514"},
		{name: "explicit model kept", yaml: "llm:\n  provider: gemini\n  model: gemini-2.5-pro\n", want: "gemini-2.5-pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LLM.Model)
		})
	}
}

func TestLoad_ProviderKeyFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: gemini\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Service.Port = 0 }, "service.port"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "hal" }, "llm.provider"},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 2.5 }, "llm.temperature"},
		{"negative temperature", func(c *Config) { c.LLM.Temperature = -0.1 }, "llm.temperature"},
		{"negative rate limit", func(c *Config) { c.LLM.RateLimitPerHour = -1 }, "rate_limit_per_hour"},
		{"zero default drafts", func(c *Config) { c.Generation.DefaultDrafts = 0 }, "invalid draft count"},
		{"max below default", func(c *Config) { c.Generation.MaxDrafts = 2 }, "max_drafts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestResolveDrafts(t *testing.T) {
	cfg := DefaultConfig()
	ptr := func(n int) *int { return &n }

	n, err := cfg.ResolveDrafts(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = cfg.ResolveDrafts(ptr(5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for _, bad := range []int{0, -1, 11} {
		_, err = cfg.ResolveDrafts(ptr(bad))
		assert.ErrorIs(t, err, ErrInvalidDraftCount, "requested %d", bad)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Model = "mistral:7b"
	cfg.Generation.WatchPrompts = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mistral:7b", loaded.LLM.Model)
	assert.True(t, loaded.Generation.WatchPrompts)
	assert.Equal(t, cfg.LLM.Timeout, loaded.LLM.Timeout)
}
