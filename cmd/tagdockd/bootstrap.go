package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"log/slog"

	"tagdock/internal/blob"
	"tagdock/internal/config"
	"tagdock/internal/daemon"
	"tagdock/internal/decode"
	"tagdock/internal/dupcache"
	"tagdock/internal/intake"
	"tagdock/internal/records"
	"tagdock/internal/tags"
)

// buildDaemon wires the full service graph. The returned cleanup closes
// resources the daemon itself does not own, such as the redis client.
func buildDaemon(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, func(), error) {
	cleanup := func() {}

	store, err := records.Open(cfg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("open record store: %w", err)
	}

	blobs, err := blob.NewLocalStore(cfg.Paths.BlobDir)
	if err != nil {
		store.Close()
		return nil, cleanup, fmt.Errorf("open blob store: %w", err)
	}

	var volatile dupcache.Volatile
	if cfg.Redis.Enabled {
		redisCache := dupcache.NewRedisCache(cfg.Redis)
		volatile = redisCache
		cleanup = func() { _ = redisCache.Close() }
	} else {
		volatile = dupcache.NewMemoryCache()
	}
	cache := dupcache.NewTiered(volatile, store, logger)

	worker, err := decode.NewSubprocessWorker(
		workerBinary(cfg),
		decode.WithTimeout(time.Duration(cfg.Intake.DecodeTimeoutSeconds)*time.Second),
	)
	if err != nil {
		store.Close()
		return nil, cleanup, fmt.Errorf("configure decode worker: %w", err)
	}

	coordinator := intake.NewCoordinator(cfg, store, blobs, cache, worker, logger)
	generator := tags.NewGenerator(store, logger)

	d, err := daemon.New(cfg, store, coordinator, generator, logger)
	if err != nil {
		store.Close()
		return nil, cleanup, err
	}
	return d, cleanup, nil
}

// workerBinary resolves the binary re-executed in decode-worker mode.
// Defaults to the running daemon executable.
func workerBinary(cfg *config.Config) string {
	if configured := strings.TrimSpace(cfg.Decode.WorkerBinary); configured != "" {
		return configured
	}
	self, err := os.Executable()
	if err != nil {
		return "tagdockd"
	}
	return self
}
