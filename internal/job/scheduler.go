package job

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs jobs on cron schedules in a fixed time zone
type Scheduler struct {
	cron   *cron.Cron
	loc    *time.Location
	logger *zap.Logger
}

// NewScheduler creates a scheduler whose specs are read in loc.
// A run still in progress when the next one fires is skipped.
func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		loc:    loc,
		logger: logger,
	}
}

// Add registers job under a standard five-field cron spec
func (s *Scheduler) Add(name, spec string, job cron.Job) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.cron.Schedule(schedule, job)
	s.logger.Info("Job scheduled",
		zap.String("job", name),
		zap.String("spec", spec),
		zap.Time("next_run", schedule.Next(time.Now().In(s.loc))),
	)
	return nil
}

// Start begins running scheduled jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
