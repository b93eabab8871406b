package main

import (
	"context"
	"log"
	"os"

	"tagdock/internal/config"
	"tagdock/internal/decode"
	"tagdock/internal/logging"
)

// runDecodeWorker services one decode task from stdin and exits. Logs go
// to stderr so stdout carries nothing but the JSON result.
func runDecodeWorker() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	runner, err := decode.NewRunner(cfg, logger)
	if err != nil {
		log.Fatalf("init decode runner: %v", err)
	}
	if err := runner.Run(context.Background(), os.Stdin, os.Stdout); err != nil {
		logger.Error("decode worker failed", logging.Error(err))
		os.Exit(1)
	}
}
