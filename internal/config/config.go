// Package config provides configuration management for postforge.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDraftCount is returned when a requested draft count is not
// positive or exceeds the configured maximum.
var ErrInvalidDraftCount = errors.New("invalid draft count")

// Providers lists the supported completion providers.
var Providers = []string{"ollama", "openai", "deepseek", "gemini", "anthropic"}

// defaultModels is used per provider when llm.model is not set.
var defaultModels = map[string]string{
	"ollama":    "llama3:latest",
	"openai":    "gpt-4o-mini",
	"deepseek":  "deepseek-chat",
	"gemini":    "gemini-2.5-flash",
	"anthropic": "claude-sonnet-4-20250514",
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// Config represents the service configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	API        APIConfig        `yaml:"api"`
	MCP        MCPConfig        `yaml:"mcp"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServiceConfig contains service-level settings.
type ServiceConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`
}

// APIConfig contains API settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// MCPConfig contains MCP server settings.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RoleModels overrides the model per role. Empty means the default model.
type RoleModels struct {
	Editor string `yaml:"editor"`
	Writer string `yaml:"writer"`
	Critic string `yaml:"critic"`
}

// LLMConfig contains completion provider settings.
type LLMConfig struct {
	Provider         string        `yaml:"provider"`
	Model            string        `yaml:"model"`
	Temperature      float64       `yaml:"temperature"`
	BaseURL          string        `yaml:"base_url"`
	APIKey           string        `yaml:"api_key"`
	Timeout          time.Duration `yaml:"timeout"`
	RateLimitPerHour int           `yaml:"rate_limit_per_hour"`
	Models           RoleModels    `yaml:"models"`
}

// GenerationConfig contains drafting settings.
type GenerationConfig struct {
	DefaultDrafts int    `yaml:"default_drafts"`
	MaxDrafts     int    `yaml:"max_drafts"`
	PromptsFile   string `yaml:"prompts_file"`
	WatchPrompts  bool   `yaml:"watch_prompts"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level      string   `yaml:"level"`
	Format     string   `yaml:"format"` // text | json
	Output     []string `yaml:"output"` // stdout | file | both
	TimeFormat string   `yaml:"time_format"`
	MaxSizeMB  int      `yaml:"max_size_mb"`
	MaxBackups int      `yaml:"max_backups"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Host:    "127.0.0.1",
			Port:    8430,
			DataDir: DefaultDataDir(),
		},
		API: APIConfig{
			Enabled: true,
			APIKey:  "", // Empty = no auth for localhost
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       DefaultModel("ollama"),
			Temperature: 0.7,
			Timeout:     10 * time.Minute,
		},
		Generation: GenerationConfig{
			DefaultDrafts: 3,
			MaxDrafts:     10,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
	}
}

// DefaultDataDir returns the default data directory based on OS.
func DefaultDataDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "postforge")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming", "postforge")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "postforge")
	default: // linux and others
		xdgData := os.Getenv("XDG_DATA_HOME")
		if xdgData != "" {
			return filepath.Join(xdgData, "postforge")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".postforge")
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// The model default depends on the provider the file selects.
		cfg.LLM.Model = ""

		// Expand environment variables in the config
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel(cfg.LLM.Provider)
	}
	cfg.Service.DataDir = expandHome(cfg.Service.DataDir)
	cfg.Generation.PromptsFile = expandHome(cfg.Generation.PromptsFile)
	cfg.applyEnv()

	return cfg, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// applyEnv fills the provider API key from the environment when unset.
func (c *Config) applyEnv() {
	if c.LLM.APIKey != "" {
		return
	}
	switch c.LLM.Provider {
	case "openai":
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	case "deepseek":
		c.LLM.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	case "gemini":
		c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	case "anthropic":
		c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Port < 1 || c.Service.Port > 65535 {
		errs = append(errs, fmt.Errorf("service.port %d out of range", c.Service.Port))
	}
	if !knownProvider(c.LLM.Provider) {
		errs = append(errs, fmt.Errorf("llm.provider %q not one of %s", c.LLM.Provider, strings.Join(Providers, ", ")))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %.2f outside [0, 2]", c.LLM.Temperature))
	}
	if c.LLM.RateLimitPerHour < 0 {
		errs = append(errs, errors.New("llm.rate_limit_per_hour must not be negative"))
	}
	if c.Generation.DefaultDrafts <= 0 {
		errs = append(errs, fmt.Errorf("generation.default_drafts: %w", ErrInvalidDraftCount))
	}
	if c.Generation.MaxDrafts < c.Generation.DefaultDrafts {
		errs = append(errs, fmt.Errorf("generation.max_drafts %d below default_drafts %d",
			c.Generation.MaxDrafts, c.Generation.DefaultDrafts))
	}

	return errors.Join(errs...)
}

func knownProvider(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}

// ResolveDrafts turns a caller's draft count into the count to run with.
// A nil count means none was given and the default is used.
func (c *Config) ResolveDrafts(requested *int) (int, error) {
	if requested == nil {
		return c.Generation.DefaultDrafts, nil
	}
	n := *requested
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d must be positive", ErrInvalidDraftCount, n)
	}
	if c.Generation.MaxDrafts > 0 && n > c.Generation.MaxDrafts {
		return 0, fmt.Errorf("%w: %d exceeds maximum %d", ErrInvalidDraftCount, n, c.Generation.MaxDrafts)
	}
	return n, nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Address returns the full address string for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Service.Host, c.Service.Port)
}

// LogPath returns the path to the service log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Service.DataDir, "logs", "postforge.log")
}

// PIDPath returns the path to the daemon PID file.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Service.DataDir, "postforge.pid")
}

// EnsureDirectories creates all necessary directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Service.DataDir,
		filepath.Dir(c.LogPath()),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
