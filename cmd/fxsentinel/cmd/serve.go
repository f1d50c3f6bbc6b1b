package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FXSentinel/internal/api"
	"FXSentinel/internal/notifier"
	"FXSentinel/internal/scheduler"
	"FXSentinel/pkg/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, plus the Telegram bot and alerts when configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		return runServe()
	},
}

func runServe() error {
	a, err := buildApp(cfg)
	if err != nil {
		logger.Error("failed to build services", logger.ErrorField(err))
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sched *scheduler.Scheduler
	if cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sched = scheduler.NewScheduler(ctx, a.dash, tn)
		if err := sched.RegisterAll(cfg.Schedule.AlertCron); err != nil {
			logger.Error("failed to register alert task", logger.ErrorField(err))
			return err
		}
		sched.Start()
		go tn.StartPolling(ctx, sched.HandleCommand)

		if err := tn.Send(ctx, "FXSentinel started\n\n"+notifier.FormatHelp()); err != nil {
			logger.Warn("failed to send startup message", logger.ErrorField(err))
		}
	} else {
		logger.Info("telegram not configured, bot and alerts disabled")
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewRouter(a.dash),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", logger.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("http server failed", logger.ErrorField(err))
		return err
	}

	cancel()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", logger.ErrorField(err))
		return err
	}
	logger.Info("server exited")
	return nil
}
