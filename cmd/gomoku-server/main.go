package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stonify5/gomoku/internal/config"
	"github.com/stonify5/gomoku/internal/game"
	"github.com/stonify5/gomoku/internal/logger"
	"github.com/stonify5/gomoku/internal/server"
	"github.com/stonify5/gomoku/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", "console")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	registry := game.NewRegistry(game.NewIDGen())
	dispatcher := game.NewDispatcher(registry, game.WithWinVerification(cfg.VerifyWins))
	if !cfg.VerifyWins {
		log.Warn().Msg("game-win signals are trusted without server-side verification (VERIFY_WINS=false)")
	}

	opts := transport.DefaultOptions()
	opts.ReadTimeout = cfg.ReadTimeout
	opts.PingInterval = cfg.PingInterval
	opts.MessageRate = cfg.MessageRate
	opts.MessageBurst = cfg.MessageBurst
	hub := transport.NewHub(dispatcher, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer stop()

	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		hub.Run(hubCtx)
		close(hubDone)
	}()

	engine := server.New(hub, registry, server.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("gomoku server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Hijacked websocket connections are not tracked by Shutdown; the hub
	// closes them.
	stopHub()
	<-hubDone
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
