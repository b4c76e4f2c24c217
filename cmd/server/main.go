package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agenthands/sift/internal/config"
	"github.com/agenthands/sift/internal/core"
	"github.com/agenthands/sift/internal/core/fanout"
	"github.com/agenthands/sift/internal/logger"
	"github.com/agenthands/sift/internal/search"
	"github.com/agenthands/sift/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	envErr := godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.New("info", "text").Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyEnv()

	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if envErr != nil {
		log.Debug("No .env file found, using environment")
	}
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	pool, err := fanout.NewPool(cfg.Search.PoolSize)
	if err != nil {
		log.Fatalf("Failed to create worker pool: %v", err)
	}
	defer pool.Release()

	backend, err := search.NewBackend(cfg.Search, logger.Component(log, "search"))
	if err != nil {
		log.Fatalf("Failed to initialize search backend: %v", err)
	}

	executor := fanout.NewExecutor(pool, logger.Component(log, "fanout"))
	pipeline := core.NewPipeline(backend, executor, cfg, logger.Component(log, "pipeline"))
	srv := server.NewServer(cfg, pipeline, backend, logger.Component(log, "server"))

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.SetupRouter(),
	}

	go func() {
		log.Infof("Starting server on port %s (backend %s)", cfg.Server.Port, backend.Name())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
