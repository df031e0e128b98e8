package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jielong-bot/internal/client"
	"jielong-bot/internal/database"
	"jielong-bot/internal/job"
	"jielong-bot/internal/metrics"
	"jielong-bot/internal/repository"
	"jielong-bot/internal/router"
	"jielong-bot/internal/service"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and the daily broadcast",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(*configPath)
		},
	}
}

func serve(configPath string) error {
	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	cfg, logger := a.cfg, a.logger

	logger.Info("Starting jielong-bot",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.Bool("broadcast_enabled", cfg.Broadcast.Enabled),
		zap.String("broadcast_schedule", cfg.Broadcast.Schedule),
		zap.String("timezone", cfg.Broadcast.Timezone),
	)
	if cfg.Line.ChannelSecret == "" {
		logger.Warn("LINE channel secret is empty, the webhook will refuse every call with 503")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	if err := database.RegisterMetricsCallbacks(a.db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	database.StartDBStatsCollector(ctx, a.db, m, cfg.Metrics.CollectInterval)

	collector := metrics.NewBusinessMetricsCollector(repository.NewListRepository(a.db), m, logger, cfg.Metrics.CollectInterval)
	collector.Start()
	defer collector.Stop()

	lineClient := client.NewLineClient(cfg.Line.APIBaseURL, cfg.Line.ChannelAccessToken, cfg.Line.Timeout, logger, m)

	signupOpts := service.Options{
		Location:        cfg.Location(),
		BroadcastNotice: cfg.BroadcastNotice(),
	}

	var scheduler *job.Scheduler
	if cfg.Broadcast.Enabled {
		signups := service.NewSignupService(repository.NewUnitOfWork(a.db), m, signupOpts, logger)
		broadcast := job.NewBroadcastJob(signups, lineClient, m, cfg.Broadcast.SkipEmpty, cfg.Broadcast.PushTimeout, logger)

		scheduler = job.NewScheduler(cfg.Location(), logger)
		if err := scheduler.Add("daily_broadcast", cfg.Broadcast.Schedule, broadcast); err != nil {
			return fmt.Errorf("failed to schedule broadcast: %w", err)
		}
		scheduler.Start()
	}

	r := router.Setup(router.Config{
		DB:            a.db,
		Logger:        logger,
		Metrics:       m,
		BasePath:      cfg.Server.BasePath,
		ChannelSecret: cfg.Line.ChannelSecret,
		LineClient:    lineClient,
		Signup:        signupOpts,
		Dispatch:      service.DispatcherOptions{RequireJoinName: cfg.Signup.RequireJoinName},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("jielong-bot started",
			zap.String("address", srv.Addr),
			zap.String("webhook", cfg.Server.BasePath+"/webhook"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	logger.Info("Server exited gracefully")
	return nil
}
