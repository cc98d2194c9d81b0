package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phreddit/internal/config"
	"phreddit/internal/db"
	"phreddit/internal/router"
	"phreddit/internal/services"
	"phreddit/internal/utils"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	// Initialize Database
	store, err := db.Init(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	svc := services.New(store, log)

	if cfg.DedupeOnStart {
		if _, err := svc.Maintenance.RemoveDuplicates(context.Background()); err != nil {
			log.WithError(err).Error("Error removing duplicates")
		}
	}

	cache, err := utils.NewCache(500, cfg.CacheTTL)
	if err != nil {
		log.WithError(err).Fatal("failed to create response cache")
	}

	r := router.New(cfg, store, svc, cache, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Phreddit server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	if sqlDB, err := store.DB().DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server terminated, database connection closed")
}
