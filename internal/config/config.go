package config

import (
	"os"
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
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Bank struct {
		Path string `yaml:"path"` // JSON file fallback when postgres is not configured
		ID   string `yaml:"id"`   // bank row ID in postgres
		TTL  string `yaml:"ttl"`
	} `yaml:"bank"`
	Scores struct {
		Path string `yaml:"path"` // JSON file fallback when neither postgres nor redis is configured
	} `yaml:"scores"`
	Quiz struct {
		AnswerWindow string `yaml:"answer_window"`
		RevealWindow string `yaml:"reveal_window"`
		StoreTimeout string `yaml:"store_timeout"`
	} `yaml:"quiz"`
	Rates struct {
		URL string `yaml:"url"` // full ExchangeRate-API latest-rates URL, key included
		TTL string `yaml:"ttl"`
	} `yaml:"rates"`
}

// Load reads YAML config from path. A missing file is not an error; every
// setting has a usable default.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty/invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
