// ABOUTME: Entry point for the headless dancefloor server
// ABOUTME: Runs the stage and broadcasts frames to watchers over websocket with mDNS
package main

import (
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
	"github.com/harperreed/dancefloor/internal/server"
)

func main() {
	base := config.Default()
	base.LogFile = "dancefloor-server.log"

	cfg, err := config.Parse(flag.CommandLine, os.Args[1:], base)
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

	name := cfg.DisplayName("dancefloor-server")
	logrus.WithFields(logrus.Fields{
		"name": name,
		"port": cfg.Port,
		"log":  cfg.LogFile,
	}).Info("Starting dancefloor server")

	// Servers never open playback
	st, src, err := app.BuildStage(cfg, false)
	if err != nil {
		logrus.Fatalf("Failed to set up stage: %v", err)
	}
	defer src.Close()

	srv := server.New(server.Config{
		Port:        cfg.Port,
		Name:        name,
		EnableMDNS:  cfg.MDNS,
		Debug:       cfg.Debug,
		UseTUI:      !cfg.NoTUI,
		FrameStride: cfg.FrameStride,
	}, st)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logrus.WithField("signal", sig.String()).Info("Shutting down gracefully")
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		logrus.Fatalf("Server error: %v", err)
	}
	logrus.Info("Server stopped")
}
