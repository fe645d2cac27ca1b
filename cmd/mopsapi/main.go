package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/novis10813/mops-financial-api/internal/app"
	"github.com/novis10813/mops-financial-api/internal/common"
	"github.com/novis10813/mops-financial-api/internal/server"
)

var (
	configPath  = flag.String("config", "", "Configuration file path")
	configPathC = flag.String("c", "", "Configuration file path (shorthand)")
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost  = flag.String("host", "", "Server host (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
	showVerV    = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVerV {
		fmt.Printf("mopsapi version %s\n", common.GetVersion())
		os.Exit(0)
	}

	path := *configPath
	if path == "" {
		path = *configPathC
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file -> CLI overrides)
	// 2. Initialize logger
	// 3. Print banner
	// 4. Build the app and start serving
	cfg, err := common.Load(path)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Str("path", path).Msg("mopsapi: failed to load configuration")
		os.Exit(1)
	}

	port := *serverPort
	if *serverPortP != 0 {
		port = *serverPortP
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if *serverHost != "" {
		cfg.Server.Host = *serverHost
	}

	logger := arbor.NewLogger()

	common.PrintBanner(common.GetVersion())

	logger.Info().
		Int("port", cfg.Server.Port).
		Str("host", cfg.Server.Host).
		Str("sqlite_path", cfg.Storage.SQLitePath).
		Msg("mopsapi: configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("mopsapi: failed to initialize application")
	}
	defer application.Close()

	shutdownChan := make(chan struct{})
	srv := server.New(application)
	srv.SetShutdownChannel(shutdownChan)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("mopsapi: server goroutine panicked")
			}
		}()
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("mopsapi: server failed to start")
		}
	}()

	time.Sleep(100 * time.Millisecond)
	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("mopsapi: ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info().Msg("mopsapi: interrupt signal received")
	case <-shutdownChan:
		logger.Info().Msg("mopsapi: shutdown requested")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("mopsapi: server shutdown failed")
	}
	logger.Info().Msg("mopsapi: stopped")
}
