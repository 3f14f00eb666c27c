package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ctrmdash/config"
	"ctrmdash/internal/app"
	"ctrmdash/logger"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "config file or directory")
	flag.Parse()

	// viper config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run dashboard server
	if err := app.StartDashboard(ctx, cfg, log); err != nil {
		log.Fatal("dashboard failed", zap.Error(err))
	}
}
