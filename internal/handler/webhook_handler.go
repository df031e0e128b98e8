package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jielong-bot/internal/dto"
	"jielong-bot/internal/response"
	"jielong-bot/internal/service"
)

// MessageDispatcher turns one text message into an optional reply
type MessageDispatcher interface {
	Handle(ctx context.Context, msg dto.IncomingMessage) (string, bool)
}

// Replier sends a reply through a webhook reply token
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// webhookResult tallies how the events of one delivery were handled
type webhookResult struct {
	received int
	replied  int
	failed   int
}

type WebhookHandler struct {
	dispatcher MessageDispatcher
	replier    Replier
	logger     *zap.Logger
}

func NewWebhookHandler(dispatcher MessageDispatcher, replier Replier, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		replier:    replier,
		logger:     logger,
	}
}

// Callback handles a LINE webhook delivery. Signature verification happens
// in middleware; past it the answer is always 200 so LINE does not
// redeliver events whose replies already went out.
func (h *WebhookHandler) Callback(c *gin.Context) {
	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to decode webhook body",
			zap.String("request_id", c.GetString(response.RequestIDKey)),
			zap.Error(err),
		)
		c.String(http.StatusOK, "OK")
		return
	}

	ctx := c.Request.Context()
	result := webhookResult{received: len(req.Events)}
	for i := range req.Events {
		replied, err := h.handleEvent(ctx, &req.Events[i])
		switch {
		case err != nil:
			result.failed++
		case replied:
			result.replied++
		}
	}

	if result.received > 0 {
		h.logger.Debug("Webhook processed",
			zap.Int("received", result.received),
			zap.Int("replied", result.replied),
			zap.Int("failed", result.failed),
			zap.String("request_id", c.GetString(response.RequestIDKey)),
		)
	}
	c.String(http.StatusOK, "OK")
}

func (h *WebhookHandler) handleEvent(ctx context.Context, event *dto.WebhookEvent) (bool, error) {
	if event.Mode == dto.EventModeStandby {
		return false, nil
	}

	var reply string
	switch event.Type {
	case dto.EventTypeMessage:
		if event.Message == nil || event.Message.Type != dto.MessageTypeText {
			return false, nil
		}
		text, ok := h.dispatcher.Handle(ctx, dto.IncomingMessage{
			Source: event.Source,
			Text:   event.Message.Text,
		})
		if !ok {
			return false, nil
		}
		reply = text

	case dto.EventTypeJoin:
		reply = service.WelcomeText

	default:
		return false, nil
	}

	if event.ReplyToken == "" {
		return false, nil
	}
	if err := h.replier.Reply(ctx, event.ReplyToken, reply); err != nil {
		h.logger.Error("Failed to send reply",
			zap.String("event_type", event.Type),
			zap.String("conversation_id", event.Source.ConversationID()),
			zap.String("webhook_event_id", event.WebhookEventID),
			zap.Error(err),
		)
		return false, err
	}
	return true, nil
}
