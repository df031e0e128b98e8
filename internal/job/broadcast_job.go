package job

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"jielong-bot/internal/domain"
	"jielong-bot/internal/dto"
	"jielong-bot/internal/metrics"
	"jielong-bot/internal/service"
)

// ListSource enumerates and renders the lists to announce
type ListSource interface {
	OpenLists(ctx context.Context) ([]*domain.SignupList, error)
	RenderBroadcast(ctx context.Context, listID uint) (*dto.BroadcastMessage, error)
}

// Pusher delivers a message to a conversation
type Pusher interface {
	Push(ctx context.Context, to, text string) error
}

// BroadcastResult summarises one run
type BroadcastResult struct {
	Total   int
	Sent    int
	Failed  int
	Skipped int
}

// BroadcastJob pushes the current roster of every open list
type BroadcastJob struct {
	lists       ListSource
	pusher      Pusher
	metrics     *metrics.Metrics
	skipEmpty   bool
	pushTimeout time.Duration
	logger      *zap.Logger
}

// NewBroadcastJob creates a new BroadcastJob instance
func NewBroadcastJob(
	lists ListSource,
	pusher Pusher,
	m *metrics.Metrics,
	skipEmpty bool,
	pushTimeout time.Duration,
	logger *zap.Logger,
) *BroadcastJob {
	if pushTimeout <= 0 {
		pushTimeout = 10 * time.Second
	}
	return &BroadcastJob{
		lists:       lists,
		pusher:      pusher,
		metrics:     m,
		skipEmpty:   skipEmpty,
		pushTimeout: pushTimeout,
		logger:      logger,
	}
}

// Run executes the broadcast; it satisfies cron.Job
func (j *BroadcastJob) Run() {
	j.RunContext(context.Background())
}

// RunContext announces every open list. A failure on one conversation is
// logged and counted and the run moves on to the next.
func (j *BroadcastJob) RunContext(ctx context.Context) BroadcastResult {
	start := time.Now()
	var result BroadcastResult

	j.logger.Info("Starting daily broadcast")

	lists, err := j.lists.OpenLists(ctx)
	if err != nil {
		j.logger.Error("Failed to find open lists", zap.Error(err))
		return result
	}
	result.Total = len(lists)

	if len(lists) == 0 {
		j.logger.Info("No open lists to broadcast")
		j.observe(start)
		return result
	}

	for _, list := range lists {
		if ctx.Err() != nil {
			j.logger.Warn("Broadcast interrupted", zap.Error(ctx.Err()))
			break
		}

		outcome := j.broadcastOne(ctx, list)
		switch outcome {
		case metrics.BroadcastSent:
			result.Sent++
		case metrics.BroadcastSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
		if j.metrics != nil {
			j.metrics.RecordBroadcast(outcome)
		}
	}

	j.observe(start)
	j.logger.Info("Daily broadcast completed",
		zap.Int("total", result.Total),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)),
	)
	return result
}

func (j *BroadcastJob) broadcastOne(ctx context.Context, list *domain.SignupList) string {
	msg, err := j.lists.RenderBroadcast(ctx, list.ID)
	if errors.Is(err, service.ErrListNotOpen) {
		j.logger.Debug("List closed before broadcast",
			zap.Uint("list_id", list.ID),
		)
		return metrics.BroadcastSkipped
	}
	if err != nil {
		j.logger.Error("Failed to render list for broadcast",
			zap.Uint("list_id", list.ID),
			zap.String("conversation_id", list.ConversationID),
			zap.Error(err),
		)
		return metrics.BroadcastFailed
	}

	if msg.Empty && j.skipEmpty {
		j.logger.Debug("Skipping empty list",
			zap.Uint("list_id", list.ID),
			zap.String("conversation_id", list.ConversationID),
		)
		return metrics.BroadcastSkipped
	}

	pushCtx, cancel := context.WithTimeout(ctx, j.pushTimeout)
	defer cancel()

	if err := j.pusher.Push(pushCtx, msg.ConversationID, msg.Text); err != nil {
		j.logger.Error("Failed to push broadcast",
			zap.Uint("list_id", list.ID),
			zap.String("conversation_id", msg.ConversationID),
			zap.Error(err),
		)
		return metrics.BroadcastFailed
	}

	j.logger.Debug("Broadcast pushed",
		zap.Uint("list_id", list.ID),
		zap.String("conversation_id", msg.ConversationID),
	)
	return metrics.BroadcastSent
}

func (j *BroadcastJob) observe(start time.Time) {
	if j.metrics != nil {
		j.metrics.ObserveBroadcastRun(time.Since(start))
	}
}
