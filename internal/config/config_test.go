package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/projectmoil/gateway/internal/config"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.ini"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := config.Default()
	if cfg.Port != def.Port || cfg.ModelName != def.ModelName {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	cfg := config.Default()
	cfg.APIKey = "key-a, key-b"
	cfg.Port = 7000
	cfg.Temperature = 0.5
	cfg.EnableGlossary = true
	cfg.GlossaryHistory = []string{"one.glossary", "two.glossary"}

	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.APIKey != cfg.APIKey || got.Port != cfg.Port || got.Temperature != cfg.Temperature || got.EnableGlossary != cfg.EnableGlossary {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, cfg)
	}
	if len(got.GlossaryHistory) != 2 || got.GlossaryHistory[1] != "two.glossary" {
		t.Errorf("glossary history mismatch: %+v", got.GlossaryHistory)
	}
}

func TestStore_UpdateConfig_RebuildsKeysAndResetsCursor(t *testing.T) {
	s := config.New(config.Default())
	s.Keys().Rebuild("a,b")
	s.Keys().Next() // advance cursor

	next := config.Default()
	next.ModelName = "gpt-4o"
	next.APIKey = "x,y,z"
	if err := s.UpdateConfig(context.Background(), next); err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := s.GetConfig().ModelName; got != "gpt-4o" {
		t.Errorf("expected updated model, got %q", got)
	}
	if got := s.Keys().Next(); got != "x" {
		t.Errorf("expected cursor reset to first new key, got %q", got)
	}
}

func TestStore_HotReloadEffectiveBetweenAttempts(t *testing.T) {
	// Simulates spec §8 invariant 5: a config change between attempt i and
	// i+1 of the same request must be visible to attempt i+1, since each
	// attempt re-reads the snapshot via GetConfig.
	s := config.New(config.Default())
	snap1 := s.GetConfig()
	if snap1.ModelName != config.Default().ModelName {
		t.Fatalf("unexpected initial snapshot")
	}

	next := snap1
	next.ModelName = "gpt-4o-mini"
	_ = s.UpdateConfig(context.Background(), next)

	snap2 := s.GetConfig()
	if snap2.ModelName != "gpt-4o-mini" {
		t.Errorf("expected hot-reloaded model in second snapshot, got %q", snap2.ModelName)
	}
	if snap1.ModelName == snap2.ModelName {
		t.Errorf("first snapshot should not have observed the update (by-value copy)")
	}
}
