// Package config loads the application configuration from file, environment
// and defaults, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/seybold/bankdesk/banking"
	sqlitecp "github.com/seybold/bankdesk/checkpoint/sqlite"
)

// Model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderScripted  = "scripted"
)

// ModelConfig selects and parameterizes the chat model.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"`
	Name        string  `mapstructure:"name"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
}

// EngineConfig tunes the orchestration engine.
type EngineConfig struct {
	MaxInvalidRetries int `mapstructure:"max_invalid_retries"`
}

// Config is the full application configuration.
type Config struct {
	Model       ModelConfig     `mapstructure:"model"`
	Engine      EngineConfig    `mapstructure:"engine"`
	Banking     banking.Config  `mapstructure:"banking"`
	Checkpoints sqlitecp.Config `mapstructure:"checkpoints"`
	FAQPath     string          `mapstructure:"faq_path"`
	LogLevel    string          `mapstructure:"log_level"`
	LogFormat   string          `mapstructure:"log_format"`
}

// Load reads the configuration from cfgFile (or the default search paths),
// overlays BANKDESK_* environment variables and validates the result.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bankdesk")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BANKDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file; defaults plus environment apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the fields the application cannot run without.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic:
		if c.Model.APIKey == "" {
			return fmt.Errorf("model.api_key is required for provider %q (or set BANKDESK_MODEL_API_KEY)", c.Model.Provider)
		}
	case ProviderScripted:
		// No key needed.
	default:
		return fmt.Errorf("model.provider must be one of openai, anthropic or scripted, got %q", c.Model.Provider)
	}

	if c.Engine.MaxInvalidRetries < 0 {
		return fmt.Errorf("engine.max_invalid_retries must not be negative")
	}
	if c.Banking.Path == "" && !c.Banking.InMemory {
		return fmt.Errorf("banking.path is required unless banking.in_memory is set")
	}
	if c.Checkpoints.Path == "" && !c.Checkpoints.InMemory {
		return fmt.Errorf("checkpoints.path is required unless checkpoints.in_memory is set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model.provider", ProviderOpenAI)
	v.SetDefault("model.name", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.temperature", 1.0)

	v.SetDefault("engine.max_invalid_retries", 5)

	v.SetDefault("banking.path", "bankdesk.db")
	v.SetDefault("banking.busy_timeout", 5*time.Second)

	v.SetDefault("checkpoints.path", "checkpoints.db")
	v.SetDefault("checkpoints.busy_timeout", 5*time.Second)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}
