// Package config loads the client configuration from YAML with
// environment overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Providers for reply generation.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	BackendURL string `yaml:"backendURL"`
	LogLevel   string `yaml:"logLevel"`

	AIProvider    string `yaml:"aiProvider"`
	OpenAIBaseURL string `yaml:"openAIBaseURL"`
	OpenAIAPIKey  string `yaml:"openAIAPIKey"`
	OpenAIModel   string `yaml:"openAIModel"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	SpeechLocale string `yaml:"speechLocale"`

	PetName        string `yaml:"petName"`
	PetPersonality string `yaml:"petPersonality"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("FURRYKIDS_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := os.Getenv("FURRYKIDS_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.AIProvider == "" {
		cfg.AIProvider = ProviderLocal
	}
	if cfg.SpeechLocale == "" {
		cfg.SpeechLocale = "zh-CN"
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.BackendURL == "" {
		return errors.New("config: backendURL is required (set in config.yaml or FURRYKIDS_BACKEND_URL)")
	}
	switch cfg.AIProvider {
	case ProviderLocal:
	case ProviderOpenAI:
		if cfg.OpenAIBaseURL == "" {
			return errors.New("config: openAIBaseURL is required for the openai provider")
		}
		if cfg.OpenAIModel == "" {
			return errors.New("config: openAIModel is required for the openai provider")
		}
	default:
		return fmt.Errorf("config: unknown aiProvider %q", cfg.AIProvider)
	}
	return nil
}
