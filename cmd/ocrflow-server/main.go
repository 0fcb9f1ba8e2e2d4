package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ocrflow/ocrflow/internal/api"
	"github.com/ocrflow/ocrflow/internal/config"
	"github.com/ocrflow/ocrflow/internal/extract"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "/etc/ocrflow/server.toml", "path to config file")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("ocrflow-server", version)
		os.Exit(0)
	}

	// Load configuration. A missing file at the default location is fine:
	// the defaults describe a fully working server.
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg = config.DefaultConfig()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	// Setup logging
	setupLogging(cfg.Logging)

	slog.Info("starting ocrflow-server", "version", version)

	ex := extract.New(cfg.OCR, cfg.PDF, cfg.Server.TempDirectory)

	if v, err := ex.EngineVersion(); err == nil {
		slog.Info("OCR engine detected", "tesseract", v)
	} else {
		slog.Warn("OCR engine not reachable at startup", "error", err)
	}

	srv := api.NewServer(cfg, ex)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
