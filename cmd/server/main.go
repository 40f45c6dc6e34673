package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/casas/internal/config"
	"github.com/woozymasta/casas/internal/logger"
	"github.com/woozymasta/casas/internal/markers"
	"github.com/woozymasta/casas/internal/server"
	"github.com/woozymasta/casas/internal/storage"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"  env:"CONFIG_FILE"    description:"Path to YAML configuration file"`
	Addr        string `short:"a" long:"addr"    env:"LISTEN_ADDRESS" description:"Address to listen on (default 0.0.0.0)"`
	Port        int    `short:"p" long:"port"    env:"LISTEN_PORT"    description:"Port to listen on (default 3000)"`
	StoragePath string `short:"s" long:"storage" env:"STORAGE_PATH"   description:"Path to the markers JSON file (default casas.json)"`
	Origin      string `short:"o" long:"origin"  env:"CORS_ORIGIN"    description:"Allowed CORS origin (default http://localhost:5173)"`
}

func main() {
	// environment from .env must be in place before flags read it
	envErr := godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("Failed to load .env file")
	}

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.StoragePath != "" {
		cfg.Storage.Path = opts.StoragePath
	}
	if opts.Origin != "" {
		cfg.CORS.Origin = opts.Origin
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if _, err := os.Stat(cfg.Storage.Path); err != nil {
		log.Warn().
			Err(err).
			Str("storage", cfg.Storage.Path).
			Msg("Markers file is not accessible, requests will fail until it is created")
	}

	svc := markers.NewService(storage.NewFile(cfg.Storage.Path))
	srvCtx := server.NewServerContext(cfg, svc)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srvCtx.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Str("storage", cfg.Storage.Path).
			Msg("Web server started")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received, draining connections")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Forced shutdown")
		}
	}

	log.Info().Msg("Server stopped")
}
