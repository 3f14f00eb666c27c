package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ctrmdash/config"
	"ctrmdash/internal/tui"
	"ctrmdash/logger"
	"ctrmdash/pkg/dashclient"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "config file or directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// the terminal belongs to the UI, so logs only go to the file
	log, err := logger.NewQuiet(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest := dashclient.NewRESTClient(cfg.Client.BaseURL, cfg.Client.Timeout)
	ws := dashclient.NewWSClient(cfg.Client.WSURL, cfg.Client.ReconnectDelay, log)

	err = tui.Run(ctx, rest, ws, log, tui.Options{
		Timeout:         cfg.Client.Timeout,
		RefreshInterval: cfg.Client.RefreshInterval,
	})
	if err != nil {
		log.Error("terminal ui failed", zap.Error(err))
		os.Exit(1)
	}
}
