// Package config loads wrangle's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the top-level configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Translator TranslatorConfig `toml:"translator"`
	Executor   ExecutorConfig   `toml:"executor"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // text or json
}

// TranslatorConfig selects and configures the model provider.
type TranslatorConfig struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	Endpoint    string   `toml:"endpoint"`
	APIKey      string   `toml:"api_key"`
	Timeout     Duration `toml:"timeout"` // 0 = no timeout
	SampleRows  int      `toml:"sample_rows"`
	Temperature float64  `toml:"temperature"`
}

// ExecutorConfig bounds statement execution.
type ExecutorConfig struct {
	MaxCodeLength int `toml:"max_code_length"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
}

// Duration wraps time.Duration for TOML strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.applyEnvKeys()
	return &cfg
}

// Load reads the TOML file at path.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()
	cfg.applyEnvKeys()

	return &cfg, nil
}

// LoadFromEnv loads .env, then the file named by WRANGLE_CONFIG or the first
// existing default location. Without any file the defaults are used.
func LoadFromEnv() (*Config, error) {
	LoadDotEnv()

	path := os.Getenv("WRANGLE_CONFIG")
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// DefaultPaths lists where LoadFromEnv looks for a config file.
func DefaultPaths() []string {
	paths := []string{"./wrangle.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wrangle", "config.toml"))
	}
	return paths
}

// LoadDotEnv loads ./.env if present. Variables already set win.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

func (c *Config) applyDefaults() {
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	if c.Translator.Provider == "" {
		c.Translator.Provider = "gemini"
	}
	if c.Translator.Model == "" {
		switch c.Translator.Provider {
		case "openai":
			c.Translator.Model = "gpt-4o-mini"
		default:
			c.Translator.Model = "gemini-pro-latest"
		}
	}
	if c.Translator.SampleRows == 0 {
		c.Translator.SampleRows = 5
	}

	if c.Executor.MaxCodeLength == 0 {
		c.Executor.MaxCodeLength = 4096
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 5 * time.Minute
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}
}

// expandEnvVars expands ${VAR} references in configuration values.
func (c *Config) expandEnvVars() {
	c.Translator.APIKey = os.ExpandEnv(c.Translator.APIKey)
	c.Translator.Endpoint = os.ExpandEnv(c.Translator.Endpoint)
}

// applyEnvKeys fills an empty API key from the provider's usual variables.
func (c *Config) applyEnvKeys() {
	if c.Translator.APIKey != "" {
		return
	}
	for _, name := range APIKeyEnv(c.Translator.Provider) {
		if v := os.Getenv(name); v != "" {
			c.Translator.APIKey = v
			return
		}
	}
}

// APIKeyEnv names the environment variables consulted for a provider's key.
func APIKeyEnv(provider string) []string {
	if provider == "openai" {
		return []string{"OPENAI_API_KEY"}
	}
	return []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Redacted returns a copy that is safe to print or log.
func (c *Config) Redacted() Config {
	out := *c
	if out.Translator.APIKey != "" {
		out.Translator.APIKey = mask(out.Translator.APIKey)
	}
	return out
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 4) + secret[len(secret)-4:]
}
