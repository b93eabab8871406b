package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIntake()
	c.normalizeDecode()
	c.normalizeRedis()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.IncomingDir) == "" {
		c.Paths.IncomingDir = c.Paths.DataDir + "/incoming"
	}
	if c.Paths.IncomingDir, err = expandPath(c.Paths.IncomingDir); err != nil {
		return fmt.Errorf("paths.incoming_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BlobDir) == "" {
		c.Paths.BlobDir = c.Paths.DataDir + "/blobs"
	}
	if c.Paths.BlobDir, err = expandPath(c.Paths.BlobDir); err != nil {
		return fmt.Errorf("paths.blob_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = c.Paths.DataDir + "/logs"
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeIntake() {
	if c.Intake.MaxBatchSize <= 0 {
		c.Intake.MaxBatchSize = defaultMaxBatchSize
	}
	if c.Intake.Concurrency <= 0 {
		c.Intake.Concurrency = defaultConcurrency
	}
	if c.Intake.DecodeTimeoutSeconds <= 0 {
		c.Intake.DecodeTimeoutSeconds = defaultDecodeTimeoutSeconds
	}
}

func (c *Config) normalizeDecode() {
	if c.Decode.RasterDPI <= 0 {
		c.Decode.RasterDPI = defaultRasterDPI
	}
	c.Decode.WorkerBinary = strings.TrimSpace(c.Decode.WorkerBinary)
	if strings.TrimSpace(c.Decode.PdftocairoBinary) == "" {
		c.Decode.PdftocairoBinary = defaultPdftocairoBinary
	}
	if strings.TrimSpace(c.Decode.ZbarimgBinary) == "" {
		c.Decode.ZbarimgBinary = defaultZbarimgBinary
	}
}

func (c *Config) normalizeRedis() {
	c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if strings.TrimSpace(c.Redis.KeyPrefix) == "" {
		c.Redis.KeyPrefix = defaultRedisKeyPrefix
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
