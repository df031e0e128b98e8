package dto

// LINE webhook event types the bot reacts to
const (
	EventTypeMessage = "message"
	EventTypeJoin    = "join"

	MessageTypeText = "text"

	// EventModeStandby marks events delivered while another channel holds the chat
	EventModeStandby = "standby"
)

// WebhookRequest is the body LINE posts to the callback URL
type WebhookRequest struct {
	Destination string         `json:"destination"`
	Events      []WebhookEvent `json:"events"`
}

// WebhookEvent is one event in a webhook delivery
type WebhookEvent struct {
	Type           string          `json:"type"`
	Mode           string          `json:"mode,omitempty"`
	Timestamp      int64           `json:"timestamp"`
	WebhookEventID string          `json:"webhookEventId,omitempty"`
	ReplyToken     string          `json:"replyToken,omitempty"`
	Source         Source          `json:"source"`
	Message        *WebhookMessage `json:"message,omitempty"`
}

// WebhookMessage is the message payload of a message event
type WebhookMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
