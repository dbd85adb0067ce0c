package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/Dhamodran16/InspiraNet-sub005/internal/adapters/http"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/adapters/ws"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/app"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/auth"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/config"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	chatStore, err := storage.Open(cfg.BadgerPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open chat store")
	}
	defer func() {
		if err := chatStore.Close(); err != nil {
			log.Error().Err(err).Msg("closing chat store")
		}
	}()

	promReg := prometheus.NewRegistry()
	metrics := app.NewMetrics(promReg)

	gov := app.NewGovernor(app.Limits{
		MaxParticipantsPerRoom: cfg.MaxParticipantsPerRoom,
		MaxConcurrentRooms:     cfg.MaxConcurrentRooms,
		MaxTotalConnections:    cfg.MaxTotalConnections,
		MaxVideoStreamsPerRoom: cfg.MaxVideoStreamsPerRoom,
		MaxAudioStreamsPerRoom: cfg.MaxAudioStreamsPerRoom,
	})

	engine := app.NewEngine(gov, chatStore, app.CoordinatorOptions{
		ChatLogCap:  cfg.ChatLogCap,
		GracePeriod: cfg.RoomGracePeriod,
	}, metrics)

	janitor := app.NewJanitor(engine.Rooms, cfg.JanitorInterval)
	go janitor.Run(ctx)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	ctrl := ws.NewController(engine, verifier, cfg)

	r := router.SetupRouter(ctx, cfg, ctrl, promReg)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("coordination server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
