package service

import (
	"context"

	"go.uber.org/zap"

	"jielong-bot/internal/client"
	"jielong-bot/internal/command"
	"jielong-bot/internal/dto"
	"jielong-bot/internal/metrics"
)

// ProfileFetcher resolves a sender's platform display name
type ProfileFetcher interface {
	GetProfile(ctx context.Context, source dto.Source) (*client.Profile, error)
}

// DispatcherOptions tunes command handling
type DispatcherOptions struct {
	// RequireJoinName rejects "+1" without a name instead of using the LINE display name
	RequireJoinName bool
}

// Dispatcher routes parsed commands to the SignupService
type Dispatcher struct {
	signups  SignupService
	profiles ProfileFetcher
	metrics  *metrics.Metrics
	opts     DispatcherOptions
	logger   *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(signups SignupService, profiles ProfileFetcher, m *metrics.Metrics, opts DispatcherOptions, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		signups:  signups,
		profiles: profiles,
		metrics:  m,
		opts:     opts,
		logger:   logger,
	}
}

// Handle parses one text message and returns the reply; ok is false when the
// text is not addressed to the bot.
func (d *Dispatcher) Handle(ctx context.Context, msg dto.IncomingMessage) (reply string, ok bool) {
	cmd := command.Parse(msg.Text)
	if cmd.Kind() == command.KindIgnore {
		return "", false
	}

	reply, err := d.execute(ctx, msg.Source, cmd)
	if d.metrics != nil {
		d.metrics.RecordCommand(string(cmd.Kind()), err)
	}
	if err != nil {
		d.logger.Error("Failed to handle command",
			zap.String("kind", string(cmd.Kind())),
			zap.String("conversation_id", msg.Source.ConversationID()),
			zap.String("user_id", msg.Source.UserID),
			zap.Error(err),
		)
		return FailureText, true
	}

	d.logger.Debug("Command handled",
		zap.String("kind", string(cmd.Kind())),
		zap.String("conversation_id", msg.Source.ConversationID()),
	)
	return reply, true
}

func (d *Dispatcher) execute(ctx context.Context, source dto.Source, cmd command.Command) (string, error) {
	sender := dto.Sender{
		ConversationID: source.ConversationID(),
		UserID:         source.UserID,
	}

	switch c := cmd.(type) {
	case command.Malformed:
		return c.Usage, nil

	case command.Help:
		return d.signups.Help(), nil

	case command.Open:
		sender.DisplayName = d.displayName(ctx, source)
		return d.signups.Open(ctx, &dto.OpenListRequest{Sender: sender, Title: c.Title})

	case command.PostSchedule:
		sender.DisplayName = d.displayName(ctx, source)
		return d.signups.PostSchedule(ctx, &dto.PostScheduleRequest{Sender: sender, Text: c.Text})

	case command.Join:
		if c.Name == "" {
			if d.opts.RequireJoinName {
				return command.UsageJoin, nil
			}
			sender.DisplayName = d.displayName(ctx, source)
		}
		return d.signups.Join(ctx, &dto.JoinRequest{
			Sender: sender,
			Number: c.Number,
			Name:   c.Name,
			Item:   c.Item,
			Note:   c.Note,
		})

	case command.List:
		return d.signups.List(ctx, sender.ConversationID)

	case command.Leave:
		return d.signups.Leave(ctx, &dto.LeaveRequest{Sender: sender, Slot: c.Slot})

	case command.Close:
		return d.signups.Close(ctx, sender.ConversationID)
	}

	return "", nil
}

// displayName looks the sender up on the platform; failures fall back to an empty name
func (d *Dispatcher) displayName(ctx context.Context, source dto.Source) string {
	if d.profiles == nil {
		return ""
	}
	profile, err := d.profiles.GetProfile(ctx, source)
	if err != nil {
		d.logger.Warn("Failed to fetch sender profile",
			zap.String("user_id", source.UserID),
			zap.Error(err),
		)
		return ""
	}
	return profile.DisplayName
}
