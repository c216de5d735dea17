package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/joey/internal/api"
	"github.com/MikeSquared-Agency/joey/internal/assembler"
	"github.com/MikeSquared-Agency/joey/internal/completion"
	"github.com/MikeSquared-Agency/joey/internal/config"
	"github.com/MikeSquared-Agency/joey/internal/fetcher"
	"github.com/MikeSquared-Agency/joey/internal/hermes"
	"github.com/MikeSquared-Agency/joey/internal/processor"
	"github.com/MikeSquared-Agency/joey/internal/prompt"
	"github.com/MikeSquared-Agency/joey/internal/store"
	"github.com/MikeSquared-Agency/joey/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fs := pflag.NewFlagSet("joey", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "path to YAML config file")
	mode := fs.String("mode", "", "gateway mode: context or plain")
	port := fs.IntP("port", "p", 0, "HTTP listen port")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	watchDir := fs.String("watch-dir", "", "directory to ingest documents from (context mode)")
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(config.LoadOptions{Path: *configPath, Mode: *mode})
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if fs.Changed("port") {
		cfg.Port = *port
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if fs.Changed("watch-dir") {
		cfg.WatchDir = *watchDir
	}
	setupLogging(cfg.LogLevel)

	slog.Info("joey starting", "port", cfg.Port, "mode", cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llm := completion.NewClient(cfg.CompletionURL, cfg.Model, cfg.APIKey, cfg.CompletionTimeout)
	slog.Info("completion client ready", "model", cfg.Model, "endpoint", cfg.CompletionURL)

	deps := processor.Deps{
		Store:     store.New(cfg.MaxSourceChars),
		Assembler: assembler.New(cfg.MaxContextChars),
		Builder: prompt.Builder{
			Persona:      cfg.Persona,
			ContextAware: cfg.ContextAware(),
			WindowSize:   cfg.WindowSize,
		},
		LLM:      llm,
		Logger:   slog.Default(),
		Model:    cfg.Model,
		SoftFail: cfg.SoftFail,
	}
	if cfg.ContextAware() {
		deps.Fetcher = fetcher.New(cfg.FetchTimeout)
	}

	// NATS/Hermes (optional)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		deps.Events = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, running without events")
	}

	proc := processor.New(deps)

	// Other services can push sources over hermes
	if hermesClient != nil && cfg.ContextAware() {
		if err := hermesClient.Subscribe(hermes.SubjectIngestRequest, proc.HandleIngestRequest); err != nil {
			slog.Error("failed to subscribe to ingest requests", "error", err)
			os.Exit(1)
		}
	}

	srv := api.NewServer(cfg.Port, api.Options{
		Mode:           cfg.Mode,
		Model:          cfg.Model,
		ContextAware:   cfg.ContextAware(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	}, proc, slog.Default())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.WatchDir != "" {
		if !cfg.ContextAware() {
			slog.Warn("watch dir ignored in plain mode", "dir", cfg.WatchDir)
		} else {
			w, err := watcher.New(cfg.WatchDir, proc, slog.Default())
			if err != nil {
				slog.Error("failed to start watcher", "error", err)
				os.Exit(1)
			}
			defer w.Close()
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	if hermesClient != nil {
		if err := hermesClient.Publish(hermes.SubjectRegistered, hermes.Registered{
			Envelope: hermes.NewEnvelope(),
			Port:     cfg.Port,
			Mode:     cfg.Mode,
			Model:    cfg.Model,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("joey ready", "port", cfg.Port, "mode", cfg.Mode)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("joey stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("joey stopped")
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
