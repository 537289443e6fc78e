// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP  HTTPConfig
	Notes NotesConfig `env-prefix:"NOTES_"`
	Log   LogConfig   `env-prefix:"LOG_"`
}

type HTTPConfig struct {
	Port       string  `env:"PORT" env-default:"5000"`
	CORSOrigin string  `env:"CORS_ORIGIN" env-default:"*"`
	RateLimit  float64 `env:"RATE_LIMIT" env-default:"0"`
	RateBurst  int     `env:"RATE_BURST" env-default:"10"`
}

type NotesConfig struct {
	Adapter     string        `env:"ADAPTER" env-default:"fs"`
	Path        string        `env:"PATH" env-default:"notes.json"`
	Versioning  bool          `env:"VERSIONING" env-default:"false"`
	Watch       bool          `env:"WATCH" env-default:"false"`
	LockTimeout time.Duration `env:"LOCK_TIMEOUT" env-default:"5s"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" env-default:"info"`
	Format string `env:"FORMAT" env-default:"json"`
}

// Addr returns the listen address for the HTTP server.
func (c HTTPConfig) Addr() string {
	return ":" + c.Port
}

// Parse loads the given dotenv files (".env" when none are named) into the
// process environment, then reads Config from it. Missing dotenv files are
// not an error; variables already set in the environment win.
func Parse(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse cfg: %v", err)
	}

	return cfg, nil
}
