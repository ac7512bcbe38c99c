package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/digiticket/digiticket/internal/api"
	"github.com/digiticket/digiticket/internal/infrastructure/config"
	mongostore "github.com/digiticket/digiticket/internal/infrastructure/db/mongo"
	redisstore "github.com/digiticket/digiticket/internal/infrastructure/db/redis"
	"github.com/digiticket/digiticket/pkg/logger"
)

// @title        DigiTicket Credential API
// @version      1.0
// @description  Credential management and session issuance for the DigiTicket platform.
// @BasePath     /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// Misconfiguration fails here, never per request.
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	// The unique indexes are the correctness backstop for concurrent
	// registrations; refuse to serve without them.
	store := mongostore.NewCredentialStore(client, db)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() {
		_ = rdb.Close()
	}()

	e := api.NewRouter(client, db, rdb, cfg, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
