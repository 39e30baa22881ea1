package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stenoworks/minuted/internal/api"
	"github.com/stenoworks/minuted/internal/bus"
	"github.com/stenoworks/minuted/internal/config"
	"github.com/stenoworks/minuted/internal/gemini"
	"github.com/stenoworks/minuted/internal/processor"
	"github.com/stenoworks/minuted/internal/progress"
	"github.com/stenoworks/minuted/internal/store"
	"github.com/stenoworks/minuted/internal/transcribe"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("minuted starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Gemini client. Without keys the service still ingests and serves
	// transcripts, it just cannot generate minutes.
	ring := gemini.NewKeyRing(cfg.GeminiKeys)
	llm := gemini.NewClient(ring, cfg.GeminiModel)
	if ring.Enabled() {
		slog.Info("gemini client ready", "model", cfg.GeminiModel, "keys", ring.Len())
	} else {
		slog.Warn("no gemini API keys configured — minutes generation disabled")
	}

	// Transcription service
	asr := transcribe.NewClient(cfg.ASRURL)
	slog.Info("transcription client ready", "url", cfg.ASRURL)

	// NATS
	busClient, err := bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Progress tracker
	tracker := progress.NewTracker()

	// Processor — the main pipeline
	proc := processor.New(db, llm, asr, busClient, tracker, slog.Default())

	// Subscribe to stored transcripts for automatic minutes generation
	if err := busClient.Subscribe(bus.SubjectTranscriptStored, proc.HandleTranscriptStored); err != nil {
		slog.Error("failed to subscribe to transcript events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, proc, tracker, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("minuted ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("minuted stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
