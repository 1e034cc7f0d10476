package main

import (
	"github.com/sllt/railbot/internal/bot"
	"github.com/sllt/railbot/internal/config"
	"github.com/sllt/railbot/internal/httpapi"
	"github.com/sllt/railbot/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	engine, cleanup, err := bot.Build(cfg, log)
	if err != nil {
		log.Fatal("engine setup failed", zap.Error(err))
	}
	defer cleanup()

	r := httpapi.NewRouter(engine, cfg, log)

	log.Info("server listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
