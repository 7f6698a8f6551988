package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/a3tai/irb-packager/internal/readability"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultOutputName  = "submission-package.pdf"
	DefaultEnvFile     = ".env"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "IRB_PKG"
)

// Config holds all configuration for the IRB packager
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Packaging configuration
	WorkDirectory string // uploads are read from and packages written to this directory
	OutputName    string
	MaxFileSize   int64 // Maximum upload size in bytes
	LedgerPath    string

	// Readability feedback
	Threshold float64
	HighColor string
	LowColor  string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:          ModeStdio, // Default to stdio mode for MCP compatibility
		Host:          DefaultHost,
		Port:          DefaultPort,
		WorkDirectory: currentDir,
		OutputName:    DefaultOutputName,
		MaxFileSize:   DefaultMaxFileSize,
		Threshold:     readability.DefaultThreshold,
		HighColor:     readability.DefaultHighColor,
		LowColor:      readability.DefaultLowColor,
		Version:       "1.0.0",
		ServerName:    "irb-packager",
		LogLevel:      DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
// An optional .env file in the working directory is loaded first so its
// values behave like regular environment variables.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.WorkDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.WorkDirectory); err == nil {
			cfg.WorkDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads key=value pairs from path into the process environment.
// Variables already set are left alone. A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.WorkDirectory)
	viper.SetDefault("output", cfg.OutputName)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("ledger", cfg.LedgerPath)
	viper.SetDefault("threshold", cfg.Threshold)
	viper.SetDefault("highcolor", cfg.HighColor)
	viper.SetDefault("lowcolor", cfg.LowColor)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.WorkDirectory, "Work directory holding uploads and generated packages")
	pflag.String("output", cfg.OutputName, "File name of the generated submission package")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum upload size in bytes")
	pflag.String("ledger", cfg.LedgerPath, "SQLite file recording built packages (disabled when empty)")
	pflag.Float64("threshold", cfg.Threshold, "Grade level at which readability feedback turns to the high color")
	pflag.String("highcolor", cfg.HighColor, "Feedback color at or above the threshold")
	pflag.String("lowcolor", cfg.LowColor, "Feedback color below the threshold")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dir", "output", "loglevel",
		"maxfilesize", "ledger", "threshold", "highcolor", "lowcolor",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nIRB Packager - builds IRB submission packages and scores applicant prose\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/irb/uploads           # stdio mode with custom work directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --ledger=/srv/irb/ledger.db      # record every built package\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (also read from ./.env):\n")
		fmt.Fprintf(os.Stderr, "  IRB_PKG_MODE         Server mode\n")
		fmt.Fprintf(os.Stderr, "  IRB_PKG_DIR          Work directory\n")
		fmt.Fprintf(os.Stderr, "  IRB_PKG_OUTPUT       Package file name\n")
		fmt.Fprintf(os.Stderr, "  IRB_PKG_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  IRB_PKG_MAXFILESIZE  Maximum upload size\n")
		fmt.Fprintf(os.Stderr, "  IRB_PKG_LEDGER       Ledger database path\n")
		fmt.Fprintf(os.Stderr, "  IRB_PKG_THRESHOLD    Readability color threshold\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.WorkDirectory = viper.GetString("dir")
	cfg.OutputName = viper.GetString("output")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.LedgerPath = viper.GetString("ledger")
	cfg.Threshold = viper.GetFloat64("threshold")
	cfg.HighColor = viper.GetString("highcolor")
	cfg.LowColor = viper.GetString("lowcolor")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.WorkDirectory == "" {
		return errors.New("work directory cannot be empty")
	}

	// Create the work directory if it doesn't exist
	if _, err := os.Stat(c.WorkDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.WorkDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create work directory %s: %w", c.WorkDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access work directory %s: %w", c.WorkDirectory, err)
	}

	if c.OutputName == "" || filepath.Base(c.OutputName) != c.OutputName {
		return fmt.Errorf("output name must be a plain file name: %q", c.OutputName)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if err := readability.ValidateThreshold(c.Threshold); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// LedgerEnabled reports whether built packages are recorded
func (c *Config) LedgerEnabled() bool {
	return c.LedgerPath != ""
}

// TriggerConfig returns the readability feedback settings
func (c *Config) TriggerConfig() readability.TriggerConfig {
	return readability.TriggerConfig{
		Threshold: c.Threshold,
		HighColor: c.HighColor,
		LowColor:  c.LowColor,
	}
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, WorkDirectory: %s, OutputName: %s, "+
		"LogLevel: %s, MaxFileSize: %d, LedgerPath: %s, Threshold: %.1f}",
		c.Mode, c.Host, c.Port, c.WorkDirectory, c.OutputName,
		c.LogLevel, c.MaxFileSize, c.LedgerPath, c.Threshold)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
