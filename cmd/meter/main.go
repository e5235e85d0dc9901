// Package main runs the meter CLI client.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/meetingmeter/backend/config"
	"github.com/meetingmeter/backend/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI output goes to stdout; keep operational logs quiet unless asked for.
	logger := zap.NewNop()
	if os.Getenv("METER_DEBUG") != "" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	deps := &cli.Dependencies{
		Config: cfg,
		Logger: logger,
	}

	return cli.NewRootCmd(deps).Execute()
}
