package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"QUIZ_PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"QUIZ_REDIS_ADDR"`
		Password string `yaml:"password" env:"QUIZ_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"QUIZ_REDIS_DB"`
		TTL      string `yaml:"ttl" env:"QUIZ_REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"QUIZ_POSTGRES_URL"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl" env:"QUIZ_CACHE_TTL"`
	} `yaml:"quiz"`
	Session struct {
		Countdown     string `yaml:"countdown" env:"QUIZ_SESSION_COUNTDOWN"`
		MaxActive     int    `yaml:"maxActive" env:"QUIZ_SESSION_MAX_ACTIVE"`
		MaxAutoStart  int    `yaml:"maxAutoStart" env:"QUIZ_SESSION_MAX_AUTO_START"`
		NameScope     string `yaml:"nameScope" env:"QUIZ_SESSION_NAME_SCOPE"`
		ExportBaseURL string `yaml:"exportBaseURL" env:"QUIZ_EXPORT_BASE_URL"`
	} `yaml:"session"`
	Log struct {
		Level  string `yaml:"level" env:"QUIZ_LOG_LEVEL"`
		Format string `yaml:"format" env:"QUIZ_LOG_FORMAT"`
		File   string `yaml:"file" env:"QUIZ_LOG_FILE"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies QUIZ_* environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
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

// IntOr returns v, or fallback when v is not positive.
func IntOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
