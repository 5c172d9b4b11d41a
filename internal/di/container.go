package di

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/goofish-monitor/internal/clients/goofish"
	"github.com/reshetovitsme/goofish-monitor/internal/clients/imageai"
	"github.com/reshetovitsme/goofish-monitor/internal/clients/translator"
	feedService "github.com/reshetovitsme/goofish-monitor/internal/modules/feed/service"
	listingRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/repository"
	monitorService "github.com/reshetovitsme/goofish-monitor/internal/modules/monitor/service"
	notifyService "github.com/reshetovitsme/goofish-monitor/internal/modules/notify/service"
	searchRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/search/repository"
	searchService "github.com/reshetovitsme/goofish-monitor/internal/modules/search/service"
	seenRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/seen/repository"
	"github.com/reshetovitsme/goofish-monitor/internal/shared/config"
	httpServer "github.com/reshetovitsme/goofish-monitor/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/goofish-monitor/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Search Repository
	do.Provide(injector, func(i do.Injector) (searchRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := searchRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize search repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Seen Ledger (Redis when configured, file storage otherwise)
	do.Provide(injector, func(i do.Injector) (seenRepo.Ledger, error) {
		cfg := do.MustInvoke[*config.Config](i)

		if cfg.RedisURL != "" {
			ledger, err := seenRepo.NewRedisStorage(context.Background(), cfg.RedisURL)
			if err != nil {
				return nil, oops.With("redis_url", cfg.RedisURL, "context", "failed to connect seen ledger to redis").Wrap(err)
			}
			return ledger, nil
		}

		ledger, err := seenRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize seen ledger").Wrap(err)
		}
		return ledger, nil
	})

	// Register Listing Repository
	do.Provide(injector, func(i do.Injector) (listingRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := listingRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize listing repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Goofish Client
	do.Provide(injector, func(i do.Injector) (*goofish.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return goofish.New(cfg.GoofishAPIURL, cfg.Timeout()), nil
	})

	// Register Image Embedding Client
	do.Provide(injector, func(i do.Injector) (*imageai.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return imageai.New(cfg.EmbeddingAPIURL, cfg.Timeout()), nil
	})

	// Register Translator Client
	do.Provide(injector, func(i do.Injector) (*translator.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return translator.New(cfg.TranslateAPIURL, cfg.Timeout()), nil
	})

	// Register Search Service
	do.Provide(injector, func(i do.Injector) (*searchService.Service, error) {
		repo := do.MustInvoke[searchRepo.Repository](i)
		seen := do.MustInvoke[seenRepo.Ledger](i)
		listings := do.MustInvoke[listingRepo.Repository](i)
		return searchService.New(repo, seen, listings), nil
	})

	// Register Notify Service
	do.Provide(injector, func(i do.Injector) (*notifyService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		translate := do.MustInvoke[*translator.Client](i)
		return notifyService.New(cfg, translate), nil
	})

	// Register Monitor Service
	do.Provide(injector, func(i do.Injector) (*monitorService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		searches := do.MustInvoke[*searchService.Service](i)
		seen := do.MustInvoke[seenRepo.Ledger](i)
		listings := do.MustInvoke[listingRepo.Repository](i)
		provider := do.MustInvoke[*goofish.Client](i)
		comparer := do.MustInvoke[*imageai.Client](i)
		notifier := do.MustInvoke[*notifyService.Service](i)
		return monitorService.New(cfg, searches, seen, listings, provider, comparer, notifier), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		searches := do.MustInvoke[searchRepo.Repository](i)
		listings := do.MustInvoke[listingRepo.Repository](i)
		return feedService.New(searches, listings), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		searches := do.MustInvoke[*searchService.Service](i)
		provider := do.MustInvoke[*goofish.Client](i)
		embedder := do.MustInvoke[*imageai.Client](i)
		notifier := do.MustInvoke[*notifyService.Service](i)
		return telegramHandler.New(cfg, searches, provider, embedder, notifier), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		feeds := do.MustInvoke[*feedService.Service](i)
		server := httpServer.New(cfg, feeds)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Bot (needs to be initialized after handlers are ready)
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegramHandler.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		// Register bot commands
		handler.RegisterCommands(b)

		// Attach the bot as the notification sender
		notifier := do.MustInvoke[*notifyService.Service](i)
		notifier.SetSender(b)

		return b, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx := context.Background()

	// Shutdown bot if it exists
	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		b.Close(ctx)
	}

	// Stop the monitor if it exists
	if monitor, err := do.Invoke[*monitorService.Service](injector); err == nil && monitor != nil {
		monitor.Stop()
	}

	return nil
}
