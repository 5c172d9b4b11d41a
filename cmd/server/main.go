package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/lmittmann/tint"
	"github.com/reshetovitsme/goofish-monitor/internal/di"
	monitorService "github.com/reshetovitsme/goofish-monitor/internal/modules/monitor/service"
	searchDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
	"github.com/reshetovitsme/goofish-monitor/internal/shared/config"
	httpServer "github.com/reshetovitsme/goofish-monitor/internal/transport/http"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

func main() {
	setupLogging()

	// Setup dependency injection
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	// Get services from DI container
	cfg := do.MustInvoke[*config.Config](injector)
	monitor := do.MustInvoke[*monitorService.Service](injector)
	server := do.MustInvoke[*httpServer.Server](injector)
	b := do.MustInvoke[*bot.Bot](injector)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Pretty local logging is decided after config is loaded
	if cfg.AppEnv == searchDomain.AppEnvLocal {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug})))
	}

	// Start the marketplace monitor
	monitor.Start(ctx)

	// Start receiving Telegram updates
	go b.Start(ctx)

	// Start HTTP server
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Application started", "port", cfg.HTTPPort, "tick_seconds", cfg.UpdateInterval)
	slog.Info("Press Ctrl+C to stop")

	<-ctx.Done()
	slog.Info("Shutting down...")
}

// setupLogging installs the default handler pair: text to stdout for
// operators, errors as JSON to stderr for collection.
func setupLogging() {
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	multiHandler := slogmulti.Fanout(textHandler, jsonHandler)
	slog.SetDefault(slog.New(multiHandler))
}
