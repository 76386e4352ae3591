package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("WRANGLE_TEST_KEY", "secret-from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "wrangle.toml")
	content := `
[general]
log_level = "debug"

[translator]
provider = "openai"
endpoint = "http://localhost:8000/v1"
api_key = "${WRANGLE_TEST_KEY}"
timeout = "45s"
sample_rows = 10

[server]
port = 9090
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.General.LogLevel)
	}
	if cfg.General.LogFormat != "text" {
		t.Errorf("LogFormat default = %q", cfg.General.LogFormat)
	}
	if cfg.Translator.APIKey != "secret-from-env" {
		t.Errorf("APIKey was not expanded: %q", cfg.Translator.APIKey)
	}
	if cfg.Translator.Model != "gpt-4o-mini" {
		t.Errorf("Model default for openai = %q", cfg.Translator.Model)
	}
	if cfg.Translator.Timeout.Duration != 45*time.Second {
		t.Errorf("Timeout = %v", cfg.Translator.Timeout.Duration)
	}
	if cfg.Translator.SampleRows != 10 {
		t.Errorf("SampleRows = %d", cfg.Translator.SampleRows)
	}
	if cfg.Executor.MaxCodeLength != 4096 {
		t.Errorf("MaxCodeLength default = %d", cfg.Executor.MaxCodeLength)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("[translator\nprovider ="), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefaultUsesProviderKeyEnv(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg := Default()
	if cfg.Translator.Provider != "gemini" || cfg.Translator.Model != "gemini-pro-latest" {
		t.Errorf("translator defaults = %+v", cfg.Translator)
	}
	if cfg.Translator.APIKey != "gem-key" {
		t.Errorf("APIKey = %q, want value of GEMINI_API_KEY", cfg.Translator.APIKey)
	}
	if cfg.Translator.Timeout.Duration != 0 {
		t.Errorf("Timeout default = %v, want none", cfg.Translator.Timeout.Duration)
	}
}

func TestLoadFromEnvWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WRANGLE_CONFIG", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default", cfg.Server.Port)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Translator.APIKey = "abcdefgh1234"

	red := cfg.Redacted()
	if red.Translator.APIKey != "****1234" {
		t.Errorf("redacted key = %q", red.Translator.APIKey)
	}
	if cfg.Translator.APIKey != "abcdefgh1234" {
		t.Error("Redacted modified the original")
	}
}
