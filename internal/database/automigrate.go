package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"jielong-bot/internal/domain"
)

// modelInfo holds information about a domain model and its table name
type modelInfo struct {
	model     interface{}
	tableName string
}

func models() []modelInfo {
	return []modelInfo{
		{&domain.SignupList{}, "signup_lists"},
		{&domain.Entry{}, "signup_entries"},
		{&domain.Slot{}, "signup_slots"},
		{&domain.SlotSignup{}, "signup_slot_signups"},
	}
}

// openListIndex backs the one-open-list-per-conversation rule at the storage level
const openListIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uq_signup_lists_open_conversation
	ON signup_lists(conversation_id) WHERE status = 'OPEN'`

// AutoMigrate creates or updates every table and the partial unique index on open lists
func AutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()

	for _, m := range models() {
		tableExists := migrator.HasTable(m.model)

		if err := db.AutoMigrate(m.model); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", m.tableName),
				zap.Bool("table_existed", tableExists),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", m.tableName, err)
		}

		logger.Debug("Migrated table",
			zap.String("table", m.tableName),
			zap.Bool("was_existing", tableExists),
		)
	}

	if err := db.Exec(openListIndex).Error; err != nil {
		return fmt.Errorf("failed to create open list index: %w", err)
	}

	logger.Info("Auto-migration completed", zap.Int("tables_migrated", len(models())))
	return nil
}
