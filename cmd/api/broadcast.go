package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jielong-bot/internal/client"
	"jielong-bot/internal/job"
	"jielong-bot/internal/metrics"
	"jielong-bot/internal/repository"
	"jielong-bot/internal/service"
)

func broadcastCmd(configPath *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Push every open list to its group once, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.NewWithLogger(a.logger)
			signups := service.NewSignupService(repository.NewUnitOfWork(a.db), m, service.Options{
				Location:        a.cfg.Location(),
				BroadcastNotice: a.cfg.BroadcastNotice(),
			}, a.logger)

			var pusher job.Pusher = client.NewLineClient(a.cfg.Line.APIBaseURL, a.cfg.Line.ChannelAccessToken, a.cfg.Line.Timeout, a.logger, m)
			if dryRun {
				pusher = stdoutPusher{out: cmd.OutOrStdout()}
			}

			result := job.NewBroadcastJob(signups, pusher, m, a.cfg.Broadcast.SkipEmpty, a.cfg.Broadcast.PushTimeout, a.logger).RunContext(ctx)
			a.logger.Info("Broadcast finished",
				zap.Int("total", result.Total),
				zap.Int("sent", result.Sent),
				zap.Int("failed", result.Failed),
				zap.Int("skipped", result.Skipped),
			)
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d broadcasts failed", result.Failed, result.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the messages instead of pushing them")
	return cmd
}

// stdoutPusher prints pushes instead of sending them
type stdoutPusher struct {
	out io.Writer
}

func (p stdoutPusher) Push(ctx context.Context, to, text string) error {
	_, err := fmt.Fprintf(p.out, "--- %s\n%s\n", to, text)
	return err
}
