package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// MetricsRecorder is an interface for recording database metrics
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
	UpdateDBStats(stats interface{})
}

const startTimeKey = "metrics:start_time"

// timedCallbacks returns a before/after pair that measures one statement
func timedCallbacks(operation string, recorder MetricsRecorder) (before, after func(*gorm.DB)) {
	before = func(tx *gorm.DB) {
		tx.InstanceSet(startTimeKey, time.Now())
	}
	after = func(tx *gorm.DB) {
		startTime, ok := tx.InstanceGet(startTimeKey)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		recorder.RecordDBQuery(operation, table, time.Since(startTime.(time.Time)), tx.Error)
	}
	return before, after
}

// RegisterMetricsCallbacks registers GORM callbacks that time every query, insert, update and delete
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) error {
	cb := db.Callback()

	before, after := timedCallbacks("select", recorder)
	errs := []error{
		cb.Query().Before("gorm:query").Register("metrics:query_before", before),
		cb.Query().After("gorm:query").Register("metrics:query_after", after),
	}

	before, after = timedCallbacks("insert", recorder)
	errs = append(errs,
		cb.Create().Before("gorm:create").Register("metrics:create_before", before),
		cb.Create().After("gorm:create").Register("metrics:create_after", after),
	)

	before, after = timedCallbacks("update", recorder)
	errs = append(errs,
		cb.Update().Before("gorm:update").Register("metrics:update_before", before),
		cb.Update().After("gorm:update").Register("metrics:update_after", after),
	)

	before, after = timedCallbacks("delete", recorder)
	errs = append(errs,
		cb.Delete().Before("gorm:delete").Register("metrics:delete_before", before),
		cb.Delete().After("gorm:delete").Register("metrics:delete_after", after),
	)

	return errors.Join(errs...)
}

// StartDBStatsCollector publishes connection pool stats every interval until ctx is done
func StartDBStatsCollector(ctx context.Context, db *gorm.DB, recorder MetricsRecorder, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					continue
				}
				recorder.UpdateDBStats(sqlDB.Stats())
			case <-ctx.Done():
				return
			}
		}
	}()
}
