package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultNormalizes(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate default config: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("data dir not expanded: %q", cfg.Paths.DataDir)
	}
	if cfg.Intake.MaxBatchSize != defaultMaxBatchSize {
		t.Fatalf("expected default batch size %d, got %d", defaultMaxBatchSize, cfg.Intake.MaxBatchSize)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + dir + `/data"
api_bind = "127.0.0.1:0"

[intake]
max_batch_size = 5

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Intake.MaxBatchSize != 5 {
		t.Fatalf("max batch size = %d, want 5", cfg.Intake.MaxBatchSize)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("log format = %q, want json", cfg.Logging.Format)
	}
	if cfg.Paths.BlobDir != filepath.Join(dir, "data", "blobs") {
		t.Fatalf("blob dir not derived from data dir: %q", cfg.Paths.BlobDir)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[decode]
raster_dpi = 10
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "raster_dpi") {
		t.Fatalf("expected raster_dpi validation error, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to report exists=false")
	}
	if cfg.Intake.MaxBatchSize != defaultMaxBatchSize {
		t.Fatalf("expected defaults, got batch size %d", cfg.Intake.MaxBatchSize)
	}
}

func TestSampleConfigEmbedded(t *testing.T) {
	if !strings.Contains(SampleConfig(), "[intake]") {
		t.Fatal("sample config missing intake section")
	}
}
