// Package config loads runtime configuration from file and environment.
// Every setting can be supplied via a contentmesh.yaml in the working
// directory (or /etc/contentmesh) or via CONTENTMESH_* environment
// variables, with environment taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	APIKey         string `mapstructure:"api_key"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// VertexConfig holds Vertex AI backend settings.
type VertexConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
}

// ProviderConfig holds model provider credentials and defaults.
type ProviderConfig struct {
	Preference     string       `mapstructure:"preference"` // "auto" or a provider id
	OpenAIKey      string       `mapstructure:"openai_api_key"`
	OpenAIModel    string       `mapstructure:"openai_model"`
	GoogleKey      string       `mapstructure:"google_api_key"`
	GeminiModel    string       `mapstructure:"gemini_model"`
	AnthropicKey   string       `mapstructure:"anthropic_api_key"`
	AnthropicModel string       `mapstructure:"anthropic_model"`
	Vertex         VertexConfig `mapstructure:"vertex"`
}

// PipelineConfig holds stage-level settings.
type PipelineConfig struct {
	OutputDir    string   `mapstructure:"output_dir"`
	MaxDocuments int      `mapstructure:"max_documents"`
	FocusAreas   []string `mapstructure:"focus_areas"`
	DeniedOrgs   []string `mapstructure:"denied_orgs"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// HasAnyProviderKey reports whether at least one model provider is usable.
func (c *Config) HasAnyProviderKey() bool {
	return c.Provider.OpenAIKey != "" ||
		c.Provider.GoogleKey != "" ||
		c.Provider.AnthropicKey != "" ||
		c.Provider.Vertex.Enabled
}

// Load reads configuration from the optional config file and the
// environment. A missing config file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("contentmesh")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/contentmesh")
	}

	v.SetEnvPrefix("CONTENTMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key, including empty ones: viper only
// unmarshals keys it knows about, and environment-only values need a
// registered key to land.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("provider.preference", "auto")
	v.SetDefault("provider.openai_api_key", "")
	v.SetDefault("provider.google_api_key", "")
	v.SetDefault("provider.anthropic_api_key", "")
	v.SetDefault("provider.vertex.enabled", false)
	v.SetDefault("provider.vertex.project", "")
	v.SetDefault("provider.openai_model", "gpt-4o-mini")
	v.SetDefault("provider.gemini_model", "gemini-2.0-flash-exp")
	v.SetDefault("provider.anthropic_model", "claude-3-5-sonnet-20241022")
	v.SetDefault("provider.vertex.location", "us-central1")
	v.SetDefault("pipeline.output_dir", "output")
	v.SetDefault("pipeline.max_documents", 15)
	v.SetDefault("pipeline.focus_areas", []string{})
	v.SetDefault("pipeline.denied_orgs", []string{})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
