package main

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

// Config is the CLI configuration file.
type Config struct {
	// Field is the JSON key streamed in open schema mode.
	Field string `yaml:"field" default:"response" validate:"required"`

	// Schema is "open" (any object with Field) or "typed" (SpokenResponse).
	Schema string `yaml:"schema" default:"open" validate:"oneof=open typed"`

	Salvage bool `yaml:"salvage"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Model  ModelConfig  `yaml:"model"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr" default:":8080"`
	ChunkSize int    `yaml:"chunk_size" default:"256" validate:"gt=0"`

	// Sinks are the names clients may pass as ?sink=; they become metric labels.
	Sinks []string `yaml:"sinks" default:"[\"speech\",\"captions\",\"http\"]" validate:"dive,required"`
}

type ModelConfig struct {
	Provider string `yaml:"provider" default:"openai" validate:"oneof=openai gemini"`

	// Name defaults per provider; see ModelName.
	Name string `yaml:"name"`

	// Instructions is the system prompt. Empty means ask for a JSON object
	// holding the streamed field.
	Instructions string `yaml:"instructions"`

	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// SpokenResponse is the reply shape used in typed schema mode.
type SpokenResponse struct {
	SpokenResponse string `json:"spoken_response" jsonschema:"description=The reply as it should be read aloud"`
}

const typedField = "spoken_response"

// newDefaultConfig creates a configuration with every default applied.
func newDefaultConfig() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// Only malformed default tags can fail.
		panic(err)
	}
	return cfg
}

// LoadConfig reads path over the defaults. An empty path yields the
// defaults alone.
func LoadConfig(path string) (*Config, error) {
	cfg := newDefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// StreamSchema returns the extraction schema the configuration selects.
func (c *Config) StreamSchema() (fieldstream.Schema, error) {
	if c.Schema == "typed" {
		s, err := fieldstream.Typed[SpokenResponse](typedField)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return fieldstream.OpenField(c.Field), nil
}

// ModelName returns the configured model or the provider's default.
func (c *Config) ModelName() string {
	if c.Model.Name != "" {
		return c.Model.Name
	}
	if c.Model.Provider == "gemini" {
		return "gemini-2.5-flash"
	}
	return "gpt-4o-mini"
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func (c *Config) APIKeyEnv() string {
	if c.Model.APIKeyEnv != "" {
		return c.Model.APIKeyEnv
	}
	if c.Model.Provider == "gemini" {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// SystemPrompt returns the configured instructions or the default request
// for a JSON object holding field.
func (c *Config) SystemPrompt(field string) string {
	if c.Model.Instructions != "" {
		return c.Model.Instructions
	}
	return fmt.Sprintf("Respond in JSON with a %q field.", field)
}
