package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.World.Path != "world.json" {
		t.Errorf("expected world path 'world.json', got %s", cfg.World.Path)
	}
	if cfg.Query.Group != 0 {
		t.Errorf("expected group 0, got %d", cfg.Query.Group)
	}
	if cfg.Query.MaxDistance != 0 {
		t.Errorf("expected unbounded max distance, got %f", cfg.Query.MaxDistance)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wmoprobe.yaml")
	content := `world:
  path: dungeon.json
query:
  group: 3
  max_distance: 2.5
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg.World.Path != "dungeon.json" {
		t.Errorf("expected world path 'dungeon.json', got %s", cfg.World.Path)
	}
	if cfg.Query.Group != 3 {
		t.Errorf("expected group 3, got %d", cfg.Query.Group)
	}
	if cfg.Query.MaxDistance != 2.5 {
		t.Errorf("expected max distance 2.5, got %f", cfg.Query.MaxDistance)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wmoprobe.yaml")
	content := `query:
  group: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg.Query.Group != 7 {
		t.Errorf("expected group 7, got %d", cfg.Query.Group)
	}
	// Untouched sections keep their defaults.
	if cfg.World.Path != "world.json" {
		t.Errorf("expected default world path, got %s", cfg.World.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wmoprobe.yaml")
	if err := os.WriteFile(path, []byte("world: ["), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wmoprobe.yaml")

	cfg := Default()
	cfg.Query.Group = 5
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}
	if loaded.Query.Group != 5 {
		t.Errorf("round-tripped group = %d, want 5", loaded.Query.Group)
	}
}
