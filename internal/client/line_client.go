package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"jielong-bot/internal/dto"
	"jielong-bot/internal/metrics"
)

// MaxTextLength is the longest text message the Messaging API accepts
const MaxTextLength = 5000

// DefaultBaseURL is the Messaging API endpoint
const DefaultBaseURL = "https://api.line.me"

// ErrNoProfile is returned when the platform has no profile for the user, e.g. they have not added the bot
var ErrNoProfile = errors.New("line profile not available")

// textMessage is a Messaging API text message object
type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Profile is the subset of a LINE profile the bot uses
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// LineClient defines the interface for LINE Messaging API communication
type LineClient interface {
	// Reply answers an event with a text message using its reply token
	Reply(ctx context.Context, replyToken, text string) error
	// Push sends a text message to a group, room or user
	Push(ctx context.Context, to, text string) error
	// GetProfile looks up the sender's profile in the context of the source conversation
	GetProfile(ctx context.Context, source dto.Source) (*Profile, error)
}

// lineClient implements LineClient interface
type lineClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// NewLineClient creates a new LINE Messaging API client
func NewLineClient(baseURL, accessToken string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) LineClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &lineClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

// Reply sends a reply message
func (c *lineClient) Reply(ctx context.Context, replyToken, text string) error {
	body := replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: Truncate(text)}},
	}
	_, err := c.do(ctx, http.MethodPost, "/v2/bot/message/reply", body)
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

// Push sends a push message
func (c *lineClient) Push(ctx context.Context, to, text string) error {
	body := pushRequest{
		To:       to,
		Messages: []textMessage{{Type: "text", Text: Truncate(text)}},
	}
	_, err := c.do(ctx, http.MethodPost, "/v2/bot/message/push", body)
	if err != nil {
		return fmt.Errorf("push message to %s: %w", to, err)
	}
	return nil
}

// GetProfile fetches a group member, room member or friend profile depending on the source
func (c *lineClient) GetProfile(ctx context.Context, source dto.Source) (*Profile, error) {
	if source.UserID == "" {
		return nil, ErrNoProfile
	}

	var path string
	switch {
	case source.Type == dto.SourceGroup && source.GroupID != "":
		path = fmt.Sprintf("/v2/bot/group/%s/member/%s", url.PathEscape(source.GroupID), url.PathEscape(source.UserID))
	case source.Type == dto.SourceRoom && source.RoomID != "":
		path = fmt.Sprintf("/v2/bot/room/%s/member/%s", url.PathEscape(source.RoomID), url.PathEscape(source.UserID))
	default:
		path = "/v2/bot/profile/" + url.PathEscape(source.UserID)
	}

	respBody, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrNoProfile
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(respBody, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// APIError is a non-2xx answer from the Messaging API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("line api returned status %d: %s", e.StatusCode, e.Body)
}

// do performs one authenticated call and returns the response body of a 2xx answer
func (c *lineClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	endpoint := c.baseURL + path

	var reader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	if c.metrics != nil {
		c.metrics.RecordExternalAPICall(path, method, statusCode, duration, err)
	}

	if err != nil {
		c.logger.Error("LINE API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("LINE API returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	c.logger.Debug("LINE API request succeeded",
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("duration", duration),
	)
	return respBody, nil
}

// Truncate cuts text to MaxTextLength characters
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxTextLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxTextLength-1]) + "…"
}
