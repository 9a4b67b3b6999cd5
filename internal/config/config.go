package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/coderunr/judge/internal/runtime"
	"github.com/coderunr/judge/internal/types"
)

// Config represents the application configuration
type Config struct {
	// Server configuration
	LogLevel         string `mapstructure:"log_level"`
	LogFormat        string `mapstructure:"log_format"`
	BindAddress      string `mapstructure:"bind_address"`
	RequestBodyLimit int64  `mapstructure:"request_body_limit"`

	// Workspaces
	WorkspaceRoot string        `mapstructure:"workspace_root"`
	CleanupGrace  time.Duration `mapstructure:"cleanup_grace"`
	ReapInterval  time.Duration `mapstructure:"reap_interval"`

	// Execution limits
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
	DefaultTimeout    time.Duration `mapstructure:"default_timeout"`
	CompileTimeout    time.Duration `mapstructure:"compile_timeout"`
	OutputMaxSize     int           `mapstructure:"output_max_size"`

	// Toolchain command overrides keyed by language
	Toolchains map[string]ToolchainConfig `mapstructure:"toolchains"`
}

// ToolchainConfig overrides the command templates of one language
type ToolchainConfig struct {
	Compile string `mapstructure:"compile"`
	Run     string `mapstructure:"run"`
	Version string `mapstructure:"version"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_format", "text")
	v.SetDefault("bind_address", "0.0.0.0:2000")
	v.SetDefault("request_body_limit", 1<<20)
	v.SetDefault("workspace_root", filepath.Join(os.TempDir(), "judge"))
	v.SetDefault("cleanup_grace", "2s")
	v.SetDefault("reap_interval", "1m")
	v.SetDefault("max_concurrent_jobs", 64)
	v.SetDefault("default_timeout", "5s")
	v.SetDefault("compile_timeout", "10s")
	v.SetDefault("output_max_size", 1<<20)
	v.SetDefault("toolchains", map[string]interface{}{})

	// Set environment variable prefix
	v.SetEnvPrefix("JUDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Try to read config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/judge/")
	v.AddConfigPath("$HOME/.judge/")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate validates the configuration
func validate(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	switch strings.ToLower(config.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", config.LogFormat)
	}

	if config.WorkspaceRoot == "" {
		return fmt.Errorf("workspace_root must not be empty")
	}

	// Validate numeric ranges
	if config.MaxConcurrentJobs <= 0 {
		return fmt.Errorf("max_concurrent_jobs must be positive")
	}
	if config.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be positive")
	}
	if config.CompileTimeout <= 0 {
		return fmt.Errorf("compile_timeout must be positive")
	}
	if config.OutputMaxSize <= 0 {
		return fmt.Errorf("output_max_size must be positive")
	}
	if config.RequestBodyLimit <= 0 {
		return fmt.Errorf("request_body_limit must be positive")
	}

	for name := range config.Toolchains {
		if _, err := types.ParseLanguage(name); err != nil {
			return fmt.Errorf("toolchains: %w", err)
		}
	}

	return nil
}

// GetBindAddress returns the complete bind address
func (c *Config) GetBindAddress() string {
	if c.BindAddress == "" {
		return "0.0.0.0:2000"
	}
	return c.BindAddress
}

// GetLogLevel returns the parsed log level
func (c *Config) GetLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// GetFormatter returns the logrus formatter named by log_format
func (c *Config) GetFormatter() logrus.Formatter {
	if strings.EqualFold(c.LogFormat, "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

// GetToolchains returns the toolchain overrides keyed by canonical language
func (c *Config) GetToolchains() map[types.Language]runtime.Toolchain {
	out := make(map[types.Language]runtime.Toolchain, len(c.Toolchains))
	for name, tc := range c.Toolchains {
		lang, err := types.ParseLanguage(name)
		if err != nil {
			continue
		}
		out[lang] = runtime.Toolchain{
			Language: lang,
			Compile:  tc.Compile,
			Run:      tc.Run,
			Version:  tc.Version,
		}
	}
	return out
}
