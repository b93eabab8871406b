package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	IncomingDir string `toml:"incoming_dir"`
	BlobDir     string `toml:"blob_dir"`
	LogDir      string `toml:"log_dir"`
	APIBind     string `toml:"api_bind"`
}

// Intake contains batch intake limits and pipeline concurrency.
type Intake struct {
	MaxBatchSize         int `toml:"max_batch_size"`
	Concurrency          int `toml:"concurrency"`
	DecodeTimeoutSeconds int `toml:"decode_timeout_seconds"`
}

// Decode contains tag decode worker settings.
type Decode struct {
	RasterDPI         int    `toml:"raster_dpi"`
	WorkerBinary      string `toml:"worker_binary"`
	PdftocairoBinary  string `toml:"pdftocairo_binary"`
	ZbarimgBinary     string `toml:"zbarimg_binary"`
	AttemptInversion  bool   `toml:"attempt_inversion"`
	DownscaleToDecode bool   `toml:"downscale_to_decode"`
}

// Redis contains the volatile duplicate-cache tier settings.
type Redis struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Tagdock.
//
// Configuration sections by subsystem:
//   - Paths: directories and API bind address
//   - Intake: batch limits and pipeline concurrency
//   - Decode: tag decode worker and external tool settings
//   - Redis: volatile duplicate-cache tier
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Intake  Intake  `toml:"intake"`
	Decode  Decode  `toml:"decode"`
	Redis   Redis   `toml:"redis"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tagdock/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tagdock.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.IncomingDir, c.Paths.BlobDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}
