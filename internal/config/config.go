// Package config loads scout configuration from an optional yaml file
// plus environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "config.yaml"

	DefaultLookbackHours = 24
	DefaultMaxResults    = 100
	DefaultModel         = "deepseek-ai/DeepSeek-V3"
	DefaultMaxTokens     = 4000
	DefaultBriefsDir     = "briefs"
	DefaultArchivePath   = ".scout/scout.db"

	// Environment variable names, matched to the hosted APIs they auth
	// against.
	EnvBearerToken = "X_BEARER_TOKEN"
	EnvConsumerKey = "X_CONSUMER_KEY"
	EnvAPIKey      = "X_API_KEY"
	EnvLLMAPIKey   = "NANOGPT_API_KEY"
	EnvFocus       = "SCOUT_FOCUS"
)

// DefaultSources is used when neither the config file nor the CLI names
// sources.
var DefaultSources = []string{"all"}

// DefaultQueries back the pipeline when no topic is configured at all.
// They pass through to every source unchanged.
var DefaultQueries = []string{
	`("local llm" OR "local ai" OR ollama OR llama.cpp) -is:retweet -giveaway -airdrop`,
	`("stable diffusion" OR sdxl OR comfyui) -is:retweet -giveaway -airdrop`,
}

type Config struct {
	Topic         string    `yaml:"topic"`
	Queries       []string  `yaml:"queries"` // raw defaults, bypass the builder
	LookbackHours int       `yaml:"lookback_hours"`
	Sources       []string  `yaml:"sources"`
	MaxResults    int       `yaml:"max_results"`
	LLM           LLMConfig `yaml:"llm"`
	BriefsDir     string    `yaml:"briefs_dir"`
	ArchivePath   string    `yaml:"archive_path"`

	// Resolved from env vars at load time.
	BearerToken string `yaml:"-"`
	ConsumerKey string `yaml:"-"`
	APIKey      string `yaml:"-"`
	LLMAPIKey   string `yaml:"-"`
}

type LLMConfig struct {
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Load reads config.yaml from dir if present, applies defaults, and
// resolves env vars. A missing file is not an error; a malformed one is.
func Load(dir string) (*Config, error) {
	var cfg Config

	if strings.TrimSpace(dir) != "" {
		path := filepath.Join(dir, DefaultConfigFile)
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// env-only operation
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LookbackHours == 0 {
		cfg.LookbackHours = DefaultLookbackHours
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = append([]string(nil), DefaultSources...)
	}
	if len(cfg.Queries) == 0 {
		cfg.Queries = append([]string(nil), DefaultQueries...)
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = DefaultMaxTokens
	}
	if cfg.BriefsDir == "" {
		cfg.BriefsDir = DefaultBriefsDir
	}
	if cfg.ArchivePath == "" {
		cfg.ArchivePath = DefaultArchivePath
	}
}

func resolveEnv(cfg *Config) {
	cfg.BearerToken = os.Getenv(EnvBearerToken)
	cfg.ConsumerKey = os.Getenv(EnvConsumerKey)
	cfg.APIKey = os.Getenv(EnvAPIKey)
	cfg.LLMAPIKey = os.Getenv(EnvLLMAPIKey)

	if focus := os.Getenv(EnvFocus); focus != "" && cfg.Topic == "" {
		cfg.Topic = focus
	}
}

func validate(cfg *Config) error {
	if cfg.LookbackHours < 1 {
		return errors.New("lookback_hours must be at least 1")
	}
	if cfg.MaxResults < 1 {
		return errors.New("max_results must be at least 1")
	}
	if cfg.LLM.MaxTokens < 1 {
		return errors.New("llm.max_tokens must be at least 1")
	}
	return nil
}
