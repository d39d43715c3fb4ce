package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL      string `yaml:"ttl"`
		SeedFile string `yaml:"seed_file"`
	} `yaml:"questions"`
	Validation struct {
		RulesFile string `yaml:"rules_file"`
	} `yaml:"validation"`
	Oracle  Oracle `yaml:"oracle"`
	Scoring struct {
		PointsPerCorrect int `yaml:"points_per_correct"`
	} `yaml:"scoring"`
}

// Oracle configures the AI judge used when no rule decides an answer.
type Oracle struct {
	Enabled         bool    `yaml:"enabled"`
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	Threshold       int     `yaml:"threshold"`
	Timeout         string  `yaml:"timeout"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
	CacheTTL        string  `yaml:"cache_ttl"`
}

// Defaults returns the configuration used for fields a file leaves empty.
func Defaults() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Redis.TTL = "10m"
	cfg.Questions.TTL = "10m"
	cfg.Oracle.Model = "gemini-2.5-flash"
	cfg.Oracle.Threshold = 80
	cfg.Oracle.Timeout = "10s"
	cfg.Oracle.MaxOutputTokens = 256
	cfg.Oracle.CacheTTL = "24h"
	cfg.Scoring.PointsPerCorrect = 10
	return cfg
}

// Load reads YAML config from path on top of Defaults, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values that would otherwise be silently replaced downstream.
func (c Config) Validate() error {
	if c.Oracle.Threshold < 0 || c.Oracle.Threshold > 100 {
		return fmt.Errorf("oracle.threshold %d must be within 0-100", c.Oracle.Threshold)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Oracle.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Oracle.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("ORACLE_ENABLED")); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Oracle.Enabled = enabled
		}
	}
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
