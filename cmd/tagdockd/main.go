package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tagdock/internal/config"
	"tagdock/internal/decode"
	"tagdock/internal/logging"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == decode.WorkerModeArg {
		runDecodeWorker()
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, cleanup, err := buildDaemon(cfg, logger)
	if err != nil {
		logger.Error("bootstrap daemon", logging.Error(err))
		os.Exit(1)
	}
	defer cleanup()
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("tagdockd shutting down")
}
