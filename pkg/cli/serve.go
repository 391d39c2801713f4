package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/cli/config"
	controller "github.com/m-mizutani/scormpack/pkg/controller/http"
	"github.com/m-mizutani/scormpack/pkg/infra/notify"
	"github.com/m-mizutani/scormpack/pkg/infra/platform"
	"github.com/m-mizutani/scormpack/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg     config.Server
		platformCfg   config.Platform
		downloaderCfg config.Downloader
		notifyCfg     config.Notify
		sentryCfg     config.Sentry
	)

	flags := serverCfg.Flags()
	flags = append(flags, platformCfg.Flags()...)
	flags = append(flags, downloaderCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting scormpack server",
				slog.String("addr", serverCfg.Addr),
				slog.String("platform_url", platformCfg.BaseURL),
				slog.String("work_dir", downloaderCfg.WorkDir),
			)

			sentryEnabled, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			if sentryEnabled {
				defer sentry.Flush(2 * time.Second)
			}

			notifySettings, err := notifyCfg.Settings()
			if err != nil {
				return err
			}

			// Create infra clients and use case
			client := platform.NewClient(
				platform.WithBaseURL(platformCfg.BaseURL),
				platform.WithStorageRewrite(platformCfg.StorageFrom, platformCfg.StorageTo),
			)
			notifier := notify.NewService(notifySettings)
			downloadUC := usecase.NewDownload(client, notifier,
				usecase.WithWorkDir(downloaderCfg.WorkDir),
				usecase.WithKeepTemp(downloaderCfg.KeepTemp),
				usecase.WithDelays(downloaderCfg.ResourceDelay, downloaderCfg.CourseDelay),
			)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				downloadUC,
				controller.WithAddr(serverCfg.Addr),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
