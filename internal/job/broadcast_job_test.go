package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"jielong-bot/internal/domain"
	"jielong-bot/internal/dto"
	"jielong-bot/internal/metrics"
	"jielong-bot/internal/service"
)

// MockListSource is a mock implementation of ListSource
type MockListSource struct {
	mock.Mock
}

func (m *MockListSource) OpenLists(ctx context.Context) ([]*domain.SignupList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SignupList), args.Error(1)
}

func (m *MockListSource) RenderBroadcast(ctx context.Context, listID uint) (*dto.BroadcastMessage, error) {
	args := m.Called(ctx, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BroadcastMessage), args.Error(1)
}

// MockPusher is a mock implementation of Pusher
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, to, text string) error {
	args := m.Called(ctx, to, text)
	return args.Error(0)
}

func openList(id uint, conversationID string) *domain.SignupList {
	return &domain.SignupList{
		BaseModel:      domain.BaseModel{ID: id},
		ConversationID: conversationID,
		Title:          "list " + conversationID,
		Status:         domain.ListStatusOpen,
	}
}

func message(conversationID, text string, empty bool) *dto.BroadcastMessage {
	return &dto.BroadcastMessage{ConversationID: conversationID, Text: text, Empty: empty}
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

func TestBroadcastJob_Run_PushesEveryOpenList(t *testing.T) {
	lists := new(MockListSource)
	pusher := new(MockPusher)
	job := NewBroadcastJob(lists, pusher, newTestMetrics(), false, time.Second, zap.NewNop())

	lists.On("OpenLists", mock.Anything).Return([]*domain.SignupList{openList(1, "Ca"), openList(2, "Cb")}, nil)
	lists.On("RenderBroadcast", mock.Anything, uint(1)).Return(message("Ca", "roster a", false), nil)
	lists.On("RenderBroadcast", mock.Anything, uint(2)).Return(message("Cb", "roster b", true), nil)
	pusher.On("Push", mock.Anything, "Ca", "roster a").Return(nil)
	pusher.On("Push", mock.Anything, "Cb", "roster b").Return(nil)

	job.Run()

	lists.AssertExpectations(t)
	pusher.AssertExpectations(t)
}

func TestBroadcastJob_SkipEmpty(t *testing.T) {
	lists := new(MockListSource)
	pusher := new(MockPusher)
	m := newTestMetrics()
	job := NewBroadcastJob(lists, pusher, m, true, time.Second, zap.NewNop())

	lists.On("OpenLists", mock.Anything).Return([]*domain.SignupList{openList(1, "Ca"), openList(2, "Cb")}, nil)
	lists.On("RenderBroadcast", mock.Anything, uint(1)).Return(message("Ca", "roster a", false), nil)
	lists.On("RenderBroadcast", mock.Anything, uint(2)).Return(message("Cb", "empty", true), nil)
	pusher.On("Push", mock.Anything, "Ca", "roster a").Return(nil)

	result := job.RunContext(context.Background())

	assert.Equal(t, BroadcastResult{Total: 2, Sent: 1, Skipped: 1}, result)
	pusher.AssertNotCalled(t, "Push", mock.Anything, "Cb", mock.Anything)
}

func TestBroadcastJob_FailureIsIsolated(t *testing.T) {
	lists := new(MockListSource)
	pusher := new(MockPusher)
	m := newTestMetrics()
	job := NewBroadcastJob(lists, pusher, m, false, time.Second, zap.NewNop())

	lists.On("OpenLists", mock.Anything).Return([]*domain.SignupList{
		openList(1, "Ca"), openList(2, "Cb"), openList(3, "Cc"), openList(4, "Cd"),
	}, nil)
	lists.On("RenderBroadcast", mock.Anything, uint(1)).Return(message("Ca", "a", false), nil)
	lists.On("RenderBroadcast", mock.Anything, uint(2)).Return(nil, errors.New("database is locked"))
	lists.On("RenderBroadcast", mock.Anything, uint(3)).Return(message("Cc", "c", false), nil)
	lists.On("RenderBroadcast", mock.Anything, uint(4)).Return(nil, service.ErrListNotOpen)
	pusher.On("Push", mock.Anything, "Ca", "a").Return(errors.New("line api returned status 429"))
	pusher.On("Push", mock.Anything, "Cc", "c").Return(nil)

	result := job.RunContext(context.Background())

	assert.Equal(t, BroadcastResult{Total: 4, Sent: 1, Failed: 2, Skipped: 1}, result)
	pusher.AssertExpectations(t)
	assert.Equal(t, 1.0, counterValue(t, m.BroadcastsTotal.WithLabelValues(metrics.BroadcastSent)))
	assert.Equal(t, 2.0, counterValue(t, m.BroadcastsTotal.WithLabelValues(metrics.BroadcastFailed)))
}

func TestBroadcastJob_NoOpenLists(t *testing.T) {
	lists := new(MockListSource)
	pusher := new(MockPusher)
	job := NewBroadcastJob(lists, pusher, nil, false, time.Second, zap.NewNop())

	lists.On("OpenLists", mock.Anything).Return([]*domain.SignupList{}, nil)

	result := job.RunContext(context.Background())

	assert.Equal(t, BroadcastResult{}, result)
	lists.AssertNotCalled(t, "RenderBroadcast", mock.Anything, mock.Anything)
	pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
}

func TestBroadcastJob_EnumerationFailure(t *testing.T) {
	lists := new(MockListSource)
	pusher := new(MockPusher)
	job := NewBroadcastJob(lists, pusher, nil, false, time.Second, zap.NewNop())

	lists.On("OpenLists", mock.Anything).Return(nil, errors.New("disk I/O error"))

	assert.NotPanics(t, job.Run)
	pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
}

func TestBroadcastJob_StopsWhenCancelled(t *testing.T) {
	lists := new(MockListSource)
	pusher := new(MockPusher)
	job := NewBroadcastJob(lists, pusher, nil, false, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	lists.On("OpenLists", mock.Anything).Return([]*domain.SignupList{openList(1, "Ca"), openList(2, "Cb")}, nil)
	lists.On("RenderBroadcast", mock.Anything, uint(1)).Return(message("Ca", "a", false), nil)
	pusher.On("Push", mock.Anything, "Ca", "a").Run(func(mock.Arguments) { cancel() }).Return(nil)

	result := job.RunContext(ctx)

	assert.Equal(t, 1, result.Sent)
	lists.AssertNotCalled(t, "RenderBroadcast", mock.Anything, uint(2))
}

func TestBroadcastJob_PushHasDeadline(t *testing.T) {
	lists := new(MockListSource)
	pusher := new(MockPusher)
	job := NewBroadcastJob(lists, pusher, nil, false, 50*time.Millisecond, zap.NewNop())

	lists.On("OpenLists", mock.Anything).Return([]*domain.SignupList{openList(1, "Ca")}, nil)
	lists.On("RenderBroadcast", mock.Anything, uint(1)).Return(message("Ca", "a", false), nil)
	pusher.On("Push", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), "Ca", "a").Return(nil)

	result := job.RunContext(context.Background())

	assert.Equal(t, 1, result.Sent)
	pusher.AssertExpectations(t)
}
