// ABOUTME: Entry point for the dancefloor watcher
// ABOUTME: Discovers or dials a floor server and renders its dancers in the terminal
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
)

func main() {
	base := config.Default()
	base.LogFile = "dancefloor-watch.log"

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.NewWatcher(cfg).Run(ctx); err != nil {
		logrus.Fatalf("Watcher error: %v", err)
	}
	logrus.Info("Watcher stopped")
}
