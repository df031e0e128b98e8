package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OpenListCounter counts the lists currently open
type OpenListCounter interface {
	CountOpen(ctx context.Context) (int64, error)
}

// BusinessMetricsCollector refreshes gauges that are cheaper to count than to track
type BusinessMetricsCollector struct {
	counter  OpenListCounter
	metrics  *Metrics
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
}

// NewBusinessMetricsCollector creates a new collector
func NewBusinessMetricsCollector(counter OpenListCounter, metrics *Metrics, logger *zap.Logger, interval time.Duration) *BusinessMetricsCollector {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &BusinessMetricsCollector{
		counter:  counter,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *BusinessMetricsCollector) Start() {
	go func() {
		defer close(c.stopped)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector and waits for it to exit
func (c *BusinessMetricsCollector) Stop() {
	close(c.done)
	<-c.stopped
}

func (c *BusinessMetricsCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection",
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := c.counter.CountOpen(ctx)
	if err != nil {
		c.logger.Error("Failed to count open lists", zap.Error(err))
		return
	}
	c.metrics.SetOpenLists(count)
}
