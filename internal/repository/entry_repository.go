package repository

import (
	"context"

	"gorm.io/gorm"

	"jielong-bot/internal/domain"
)

// EntryRepository defines the interface for entry data access.
// Entries are only ever addressed through their list id.
type EntryRepository interface {
	Create(ctx context.Context, entry *domain.Entry) error
	Update(ctx context.Context, entry *domain.Entry) error
	FindByListAndUser(ctx context.Context, listID uint, userID string) (*domain.Entry, error)
	FindByListID(ctx context.Context, listID uint) ([]*domain.Entry, error)
	Delete(ctx context.Context, listID uint, userID string) (int64, error)
}

// entryRepositoryImpl is the GORM implementation of EntryRepository
type entryRepositoryImpl struct {
	db *gorm.DB
}

// NewEntryRepository creates a new instance of EntryRepository
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepositoryImpl{db: db}
}

// Create creates a new entry
func (r *entryRepositoryImpl) Create(ctx context.Context, entry *domain.Entry) error {
	return translateError(r.db.WithContext(ctx).Create(entry).Error)
}

// Update rewrites the user-editable fields of an entry; Seq is left untouched
func (r *entryRepositoryImpl) Update(ctx context.Context, entry *domain.Entry) error {
	return r.db.WithContext(ctx).
		Model(entry).
		Select("display_name", "item", "note", "updated_at").
		Updates(entry).Error
}

// FindByListAndUser finds the entry of a participant on a list
func (r *entryRepositoryImpl) FindByListAndUser(ctx context.Context, listID uint, userID string) (*domain.Entry, error) {
	var entry domain.Entry
	if err := r.db.WithContext(ctx).
		Where("list_id = ? AND user_id = ?", listID, userID).
		First(&entry).Error; err != nil {
		return nil, translateError(err)
	}
	return &entry, nil
}

// FindByListID finds all entries of a list, ordered by sequence number
func (r *entryRepositoryImpl) FindByListID(ctx context.Context, listID uint) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	if err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("seq ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes a participant's entry and reports how many rows went away
func (r *entryRepositoryImpl) Delete(ctx context.Context, listID uint, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("list_id = ? AND user_id = ?", listID, userID).
		Delete(&domain.Entry{})
	return result.RowsAffected, result.Error
}
