package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"celebrity-trivia/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	TMDB struct {
		APIKey       string `yaml:"api_key"`
		BaseURL      string `yaml:"base_url"`
		ImageBaseURL string `yaml:"image_base_url"`
		Language     string `yaml:"language"`
		Timeout      string `yaml:"timeout"`
		CacheTTL     string `yaml:"cache_ttl"`
	} `yaml:"tmdb"`
	Game struct {
		NumOptions int `yaml:"num_options"`
		// NumCorrect fixes the correct count; 0 draws it per round.
		NumCorrect int `yaml:"num_correct"`
	} `yaml:"game"`
	Rounds struct {
		TTL string `yaml:"ttl"`
	} `yaml:"rounds"`
	Images struct {
		Dir string `yaml:"dir"`
	} `yaml:"images"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

const DefaultNumOptions = 5

// Load reads YAML config from path, then applies .env and environment overrides.
// A missing file is not an error: defaults and the environment still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, err
	}

	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.TMDB.APIKey, "TMDB_API_KEY")
	setString(&c.TMDB.BaseURL, "TMDB_BASE_URL")
	setString(&c.TMDB.ImageBaseURL, "TMDB_IMAGE_BASE_URL")
	setString(&c.Images.Dir, "IMAGE_DIR")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Postgres.URL, "POSTGRES_URL")
	if err := setInt(&c.Game.NumOptions, "GAME_NUM_OPTIONS"); err != nil {
		return err
	}
	return setInt(&c.Game.NumCorrect, "GAME_NUM_CORRECT_OPTIONS")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Game.NumOptions == 0 {
		c.Game.NumOptions = DefaultNumOptions
	}
	if c.Images.Dir == "" {
		c.Images.Dir = "static/img"
	}
}

// Validate rejects option counts the round generator cannot honor.
func (c Config) Validate() error {
	if c.Game.NumOptions < 1 {
		return fmt.Errorf("%w: game.num_options must be at least 1, got %d", domain.ErrInvalidOptionCount, c.Game.NumOptions)
	}
	if c.Game.NumCorrect < 0 || c.Game.NumCorrect > c.Game.NumOptions {
		return fmt.Errorf("%w: game.num_correct must be within [1, %d] or 0, got %d", domain.ErrInvalidOptionCount, c.Game.NumOptions, c.Game.NumCorrect)
	}
	return nil
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

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
