package config

import (
	_ "embed"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	defaultDataDir              = "~/.local/share/tagdock"
	defaultIncomingDir          = "~/.local/share/tagdock/incoming"
	defaultBlobDir              = "~/.local/share/tagdock/blobs"
	defaultLogDir               = "~/.local/share/tagdock/logs"
	defaultAPIBind              = "127.0.0.1:7419"
	defaultMaxBatchSize         = 10
	defaultConcurrency          = 4
	defaultDecodeTimeoutSeconds = 120
	defaultRasterDPI            = 96
	defaultPdftocairoBinary     = "pdftocairo"
	defaultZbarimgBinary        = "zbarimg"
	defaultRedisAddr            = "localhost:6379"
	defaultRedisKeyPrefix       = "tagdock:fp:"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			IncomingDir: defaultIncomingDir,
			BlobDir:     defaultBlobDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		Intake: Intake{
			MaxBatchSize:         defaultMaxBatchSize,
			Concurrency:          defaultConcurrency,
			DecodeTimeoutSeconds: defaultDecodeTimeoutSeconds,
		},
		Decode: Decode{
			RasterDPI:         defaultRasterDPI,
			PdftocairoBinary:  defaultPdftocairoBinary,
			ZbarimgBinary:     defaultZbarimgBinary,
			AttemptInversion:  true,
			DownscaleToDecode: true,
		},
		Redis: Redis{
			Enabled:   false,
			Addr:      defaultRedisAddr,
			KeyPrefix: defaultRedisKeyPrefix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// SampleConfig returns the embedded annotated sample configuration file.
func SampleConfig() string {
	return sampleConfig
}
