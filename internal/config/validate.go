package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIntake(); err != nil {
		return err
	}
	if err := c.validateDecode(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateIntake() error {
	if c.Intake.MaxBatchSize > 100 {
		return fmt.Errorf("intake.max_batch_size %d exceeds the hard limit of 100", c.Intake.MaxBatchSize)
	}
	return nil
}

func (c *Config) validateDecode() error {
	if c.Decode.RasterDPI < 48 || c.Decode.RasterDPI > 600 {
		return fmt.Errorf("decode.raster_dpi %d must be between 48 and 600", c.Decode.RasterDPI)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
