package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"celebrity-trivia/internal/domain"
)

func TestLoadAppliesFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "tmdb:\n  api_key: from-file\n  timeout: 5s\ngame:\n  num_options: 6\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TMDB_API_KEY", "from-env")
	t.Setenv("GAME_NUM_CORRECT_OPTIONS", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TMDB.APIKey != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Game.NumOptions != 6 || cfg.Game.NumCorrect != 2 {
		t.Fatalf("unexpected game config %+v", cfg.Game)
	}
	if TTLDuration(cfg.TMDB.Timeout, time.Second) != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %q", cfg.TMDB.Timeout)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.NumOptions != DefaultNumOptions || cfg.Server.Port == "" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestValidateRejectsCorrectAboveOptions(t *testing.T) {
	t.Setenv("GAME_NUM_OPTIONS", "3")
	t.Setenv("GAME_NUM_CORRECT_OPTIONS", "4")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, domain.ErrInvalidOptionCount) {
		t.Fatalf("expected invalid option count, got %v", err)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", got)
	}
}
