package client

import (
	"context"
	"sync"

	"jielong-bot/internal/dto"
)

// SentMessage is a message captured by MockLineClient
type SentMessage struct {
	// To is the reply token for replies and the conversation id for pushes
	To   string
	Text string
}

// MockLineClient implements LineClient for tests without a channel token
type MockLineClient struct {
	// Optional function overrides for custom test behavior
	ReplyFunc      func(ctx context.Context, replyToken, text string) error
	PushFunc       func(ctx context.Context, to, text string) error
	GetProfileFunc func(ctx context.Context, source dto.Source) (*Profile, error)

	// DisplayNames maps user id to the default profile display name
	DisplayNames map[string]string

	mu      sync.Mutex
	replies []SentMessage
	pushes  []SentMessage
}

// NewMockLineClient creates a new mock LINE client for testing
func NewMockLineClient() *MockLineClient {
	return &MockLineClient{
		DisplayNames: make(map[string]string),
	}
}

// Reply records the reply unless ReplyFunc fails it
func (m *MockLineClient) Reply(ctx context.Context, replyToken, text string) error {
	if m.ReplyFunc != nil {
		if err := m.ReplyFunc(ctx, replyToken, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, SentMessage{To: replyToken, Text: Truncate(text)})
	return nil
}

// Push records the push unless PushFunc fails it
func (m *MockLineClient) Push(ctx context.Context, to, text string) error {
	if m.PushFunc != nil {
		if err := m.PushFunc(ctx, to, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes = append(m.pushes, SentMessage{To: to, Text: Truncate(text)})
	return nil
}

// GetProfile answers from DisplayNames by default
func (m *MockLineClient) GetProfile(ctx context.Context, source dto.Source) (*Profile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, source)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.DisplayNames[source.UserID]
	if !ok {
		return nil, ErrNoProfile
	}
	return &Profile{UserID: source.UserID, DisplayName: name}, nil
}

// Replies returns a copy of the recorded replies
func (m *MockLineClient) Replies() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.replies...)
}

// Pushes returns a copy of the recorded pushes
func (m *MockLineClient) Pushes() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.pushes...)
}
