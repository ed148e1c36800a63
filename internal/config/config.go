package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL     string   `yaml:"ttl" env:"QUIZ_TTL"`
		Size    int      `yaml:"size" env:"QUIZ_SIZE"`
		Catalog []string `yaml:"catalog"`
	} `yaml:"quiz"`
	OpenTDB struct {
		BaseURL    string `yaml:"base_url" env:"OPENTDB_BASE_URL"`
		Difficulty string `yaml:"difficulty" env:"OPENTDB_DIFFICULTY"`
		Timeout    string `yaml:"timeout" env:"OPENTDB_TIMEOUT"`
	} `yaml:"opentdb"`
	Assistant struct {
		Provider     string   `yaml:"provider" env:"ASSISTANT_PROVIDER"`
		BaseURL      string   `yaml:"base_url" env:"ASSISTANT_BASE_URL"`
		Model        string   `yaml:"model" env:"ASSISTANT_MODEL"`
		APIKeys      []string `yaml:"api_keys" env:"ASSISTANT_API_KEYS" envSeparator:","`
		SystemPrompt string   `yaml:"system_prompt" env:"ASSISTANT_SYSTEM_PROMPT"`
		MaxTokens    int      `yaml:"max_tokens" env:"ASSISTANT_MAX_TOKENS"`
	} `yaml:"assistant"`
	Hints struct {
		AssistThreshold int         `yaml:"assist_threshold" env:"HINTS_ASSIST_THRESHOLD"`
		Eliminate       map[int]int `yaml:"eliminate"`
	} `yaml:"hints"`
	Client struct {
		ServerURL string `yaml:"server_url" env:"QUIZ_SERVER_URL"`
		Player    string `yaml:"player" env:"QUIZ_PLAYER"`
	} `yaml:"client"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
