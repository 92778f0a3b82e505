package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/returnscoi/returns/internal/accounts"
	"github.com/returnscoi/returns/internal/bot"
	"github.com/returnscoi/returns/internal/config"
	"github.com/returnscoi/returns/internal/db"
	"github.com/returnscoi/returns/internal/handlers"
	"github.com/returnscoi/returns/internal/links"
	"github.com/returnscoi/returns/internal/logger"
	"github.com/returnscoi/returns/internal/notes"
	"github.com/returnscoi/returns/internal/returns"
	"github.com/returnscoi/returns/internal/schedule"
	"github.com/returnscoi/returns/internal/server"
	"github.com/returnscoi/returns/internal/storage"
	"github.com/returnscoi/returns/internal/storage/providers/s3blob"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			providePool,
			provideBlobStore,
			accounts.NewService,
			links.NewService,
			returns.NewService,
			notes.NewService,
			provideBotService,
			provideScheduleService,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(provideLinkHandler),
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(handlers.NewReturnsHandler),
			provideServerHandler(handlers.NewNotesHandler),
			provideServerHandler(provideFilesHandler),
			fx.Annotate(provideServer, fx.ParamTags(``, `group:"server_handlers"`)),
		),
		fx.Invoke(
			ensureAdminAccount,
			startScheduleService,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func providePool(lc fx.Lifecycle, cfg config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("database ready", slog.String("database", cfg.Postgres.Database))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

func provideBlobStore(cfg config.Config) (storage.Provider, error) {
	return s3blob.New(context.Background(), cfg.S3)
}

func provideBotService(log *slog.Logger, linkService *links.Service, store storage.Provider, cfg config.Config) *bot.Service {
	return bot.NewService(log, linkService, store, cfg.Telegram)
}

func provideScheduleService(log *slog.Logger, noteService *notes.Service, cfg config.Config) (*schedule.Service, error) {
	return schedule.NewService(log, noteService, cfg.Cleanup)
}

func provideAuthHandler(log *slog.Logger, service *accounts.Service, cfg config.Config) (*handlers.AuthHandler, error) {
	return handlers.NewAuthHandler(log, service, cfg.Auth)
}

func provideLinkHandler(log *slog.Logger, service *links.Service) *handlers.LinkHandler {
	return handlers.NewLinkHandler(log, service)
}

func provideWebhookHandler(log *slog.Logger, botService *bot.Service) *handlers.TelegramWebhookHandler {
	return handlers.NewTelegramWebhookHandler(log, botService)
}

func provideFilesHandler(log *slog.Logger, store storage.Provider, cfg config.Config) *handlers.FilesHandler {
	return handlers.NewFilesHandler(log, store, cfg.S3.Prefix)
}

func provideServer(cfg config.Config, serverHandlers []server.Handler) *server.Server {
	return server.NewServer(cfg.Server.Addr, cfg.Auth.JWTSecret, serverHandlers)
}

func ensureAdminAccount(cfg config.Config, service *accounts.Service) error {
	return service.EnsureAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
}

func startScheduleService(lc fx.Lifecycle, svc *schedule.Service) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return svc.Start()
		},
		OnStop: func(context.Context) error {
			svc.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, srv *server.Server, log *slog.Logger, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("server stopped", slog.Any("error", err))
				}
			}()
			log.Info("server listening", slog.String("addr", cfg.Server.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
