package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sheetsync/backend/internal/config"
	"sheetsync/backend/internal/httpserver"
	"sheetsync/backend/internal/infrastructure/postgres"
	"sheetsync/backend/internal/infrastructure/token"
	"sheetsync/backend/internal/logs"
	adminusecase "sheetsync/backend/internal/usecase/admin"
	catalogusecase "sheetsync/backend/internal/usecase/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logs.New(false)
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	log := logs.New(cfg.LogPretty)

	rootCtx := context.Background()
	db, err := postgres.New(rootCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	if err := db.Migrate(rootCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	sessionManager := token.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)

	catalogService := catalogusecase.NewService(
		postgres.NewCatalogStore(db.Pool),
		postgres.NewTermStore(db.Pool),
		log,
	)
	adminService := adminusecase.NewService(cfg.AdminPasswordHash, sessionManager, cfg.SheetID, cfg.SheetSecret != "")

	server := httpserver.NewServer(cfg, log, catalogService, adminService)
	log.Info().Str("addr", server.Addr()).Msg("HTTP server listening")
	if cfg.SheetSecret == "" {
		log.Warn().Msg("SHEET_SECRET_KEY is empty; sheet requests will be rejected")
	}

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info().Err(err).Msg("HTTP server closed")
				return
			}
			log.Fatal().Err(err).Msg("server error")
		}
		log.Info().Msg("HTTP server stopped accepting new connections")
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("graceful shutdown completed")
	}
}
