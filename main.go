// ABOUTME: Entry point for the local dancefloor
// ABOUTME: Parses config and flags, then dances to audio with playback and the TUI
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/internal/app"
	"github.com/harperreed/dancefloor/internal/config"
	"github.com/harperreed/dancefloor/internal/logging"
	"github.com/harperreed/dancefloor/internal/version"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:], config.Default())
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	closer, err := logging.Setup(logging.Options{
		File:    cfg.LogFile,
		Console: cfg.NoTUI,
		Debug:   cfg.Debug,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	logrus.WithFields(logrus.Fields{
		"version": version.String(),
		"dancers": cfg.Dancers,
		"audio":   cfg.Audio,
	}).Info("Starting dancefloor")

	floor, err := app.NewFloor(cfg)
	if err != nil {
		logrus.Fatalf("Failed to set up floor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := floor.Run(ctx); err != nil {
		logrus.Fatalf("Floor error: %v", err)
	}
	logrus.Info("Floor stopped")
}
