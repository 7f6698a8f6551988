package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}

	if cfg.ServerName != "irb-packager" {
		t.Errorf("Expected default server name to be 'irb-packager', got '%s'", cfg.ServerName)
	}

	if cfg.OutputName != "submission-package.pdf" {
		t.Errorf("Expected default output name to be 'submission-package.pdf', got '%s'", cfg.OutputName)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	if cfg.Threshold != 12 {
		t.Errorf("Expected default threshold to be 12, got %v", cfg.Threshold)
	}

	if cfg.LedgerEnabled() {
		t.Error("Expected ledger to be disabled by default")
	}

	currentDir, _ := os.Getwd()
	if cfg.WorkDirectory != currentDir {
		t.Errorf("Expected default work directory to be '%s', got '%s'", currentDir, cfg.WorkDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func(dir string) *Config {
		cfg := DefaultConfig()
		cfg.WorkDirectory = dir
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid stdio config", mutate: func(*Config) {}},
		{name: "valid server config", mutate: func(c *Config) { c.Mode = ModeServer }},
		{name: "invalid mode", mutate: func(c *Config) { c.Mode = "invalid" }, wantErr: true},
		{name: "port too low in server mode", mutate: func(c *Config) { c.Mode = ModeServer; c.Port = 0 }, wantErr: true},
		{name: "port too high in server mode", mutate: func(c *Config) { c.Mode = ModeServer; c.Port = 70000 }, wantErr: true},
		{name: "port ignored in stdio mode", mutate: func(c *Config) { c.Port = 0 }},
		{name: "empty work directory", mutate: func(c *Config) { c.WorkDirectory = "" }, wantErr: true},
		{name: "empty output name", mutate: func(c *Config) { c.OutputName = "" }, wantErr: true},
		{name: "output name with directory", mutate: func(c *Config) { c.OutputName = "../out.pdf" }, wantErr: true},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "invalid" }, wantErr: true},
		{name: "invalid max file size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: true},
		{name: "invalid threshold", mutate: func(c *Config) { c.Threshold = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t.TempDir())
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesWorkDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	cfg := DefaultConfig()
	cfg.WorkDirectory = dir
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() unexpected error: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected work directory to be created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", dir)
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{
		Host: "192.168.1.1",
		Port: 9090,
	}

	expected := "192.168.1.1:9090"
	if got := cfg.Address(); got != expected {
		t.Errorf("Config.Address() = %v, want %v", got, expected)
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		logLevel string
		want     bool
	}{
		{logLevel: "debug", want: true},
		{logLevel: "info", want: false},
		{logLevel: "warn", want: false},
		{logLevel: "error", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigTriggerConfig(t *testing.T) {
	cfg := &Config{Threshold: 10, HighColor: "#FF0000", LowColor: "#00FF00"}

	tc := cfg.TriggerConfig()
	if tc.Threshold != 10 || tc.HighColor != "#FF0000" || tc.LowColor != "#00FF00" {
		t.Errorf("Config.TriggerConfig() = %+v", tc)
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:          "server",
		Host:          "localhost",
		Port:          8080,
		WorkDirectory: "/srv/irb",
		OutputName:    "package.pdf",
		LogLevel:      "debug",
		MaxFileSize:   1024,
		Threshold:     12,
	}

	result := cfg.String()

	expectedSubstrings := []string{
		"Mode: server",
		"Host: localhost",
		"Port: 8080",
		"WorkDirectory: /srv/irb",
		"OutputName: package.pdf",
		"LogLevel: debug",
		"MaxFileSize: 1024",
		"Threshold: 12.0",
	}

	for _, substr := range expectedSubstrings {
		if !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}
}

func TestConfigModes(t *testing.T) {
	stdio := &Config{Mode: ModeStdio}
	if !stdio.IsStdioMode() || stdio.IsServerMode() {
		t.Error("stdio config reported wrong mode")
	}

	server := &Config{Mode: ModeServer}
	if !server.IsServerMode() || server.IsStdioMode() {
		t.Error("server config reported wrong mode")
	}
}
