package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"jielong-bot/internal/domain"
)

// ListRepository defines the interface for sign-up list data access
type ListRepository interface {
	Create(ctx context.Context, list *domain.SignupList) error
	FindByID(ctx context.Context, id uint) (*domain.SignupList, error)
	FindOpenByConversation(ctx context.Context, conversationID string) (*domain.SignupList, error)
	FindLatestByConversation(ctx context.Context, conversationID string) (*domain.SignupList, error)
	FindAllOpen(ctx context.Context) ([]*domain.SignupList, error)
	CountOpen(ctx context.Context) (int64, error)
	NextSeq(ctx context.Context, listID uint) (int, error)
	Close(ctx context.Context, listID uint, closedAt time.Time) error
}

// listRepositoryImpl is the GORM implementation of ListRepository
type listRepositoryImpl struct {
	db *gorm.DB
}

// NewListRepository creates a new instance of ListRepository
func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepositoryImpl{db: db}
}

// Create creates a new sign-up list
func (r *listRepositoryImpl) Create(ctx context.Context, list *domain.SignupList) error {
	if list.NextSeq == 0 {
		list.NextSeq = 1
	}
	return translateError(r.db.WithContext(ctx).Create(list).Error)
}

// FindByID finds a list by ID
func (r *listRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.SignupList, error) {
	var list domain.SignupList
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return &list, nil
}

// FindOpenByConversation finds the open list of a conversation
func (r *listRepositoryImpl) FindOpenByConversation(ctx context.Context, conversationID string) (*domain.SignupList, error) {
	var list domain.SignupList
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND status = ?", conversationID, domain.ListStatusOpen).
		Order("id DESC").
		First(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return &list, nil
}

// FindLatestByConversation finds the most recently created list of a conversation, open or closed
func (r *listRepositoryImpl) FindLatestByConversation(ctx context.Context, conversationID string) (*domain.SignupList, error) {
	var list domain.SignupList
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		First(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return &list, nil
}

// FindAllOpen finds every open list, oldest first
func (r *listRepositoryImpl) FindAllOpen(ctx context.Context) ([]*domain.SignupList, error) {
	var lists []*domain.SignupList
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.ListStatusOpen).
		Order("id ASC").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

// CountOpen counts open lists across all conversations
func (r *listRepositoryImpl) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.SignupList{}).
		Where("status = ?", domain.ListStatusOpen).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextSeq hands out the next sequence number of a list and advances the counter.
// Must run inside a transaction so the read and the increment are not interleaved.
func (r *listRepositoryImpl) NextSeq(ctx context.Context, listID uint) (int, error) {
	var list domain.SignupList
	if err := r.db.WithContext(ctx).
		Select("id", "next_seq").
		Where("id = ?", listID).
		First(&list).Error; err != nil {
		return 0, translateError(err)
	}

	if err := r.db.WithContext(ctx).
		Model(&domain.SignupList{}).
		Where("id = ?", listID).
		UpdateColumn("next_seq", gorm.Expr("next_seq + 1")).Error; err != nil {
		return 0, err
	}
	return list.NextSeq, nil
}

// Close marks an open list as closed
func (r *listRepositoryImpl) Close(ctx context.Context, listID uint, closedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.SignupList{}).
		Where("id = ? AND status = ?", listID, domain.ListStatusOpen).
		Updates(map[string]interface{}{
			"status":    domain.ListStatusClosed,
			"closed_at": closedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
