package repository

import (
	"context"

	"gorm.io/gorm"

	"jielong-bot/internal/domain"
)

// SlotRepository defines the interface for schedule slot data access
type SlotRepository interface {
	CreateBatch(ctx context.Context, slots []*domain.Slot) error
	FindByListID(ctx context.Context, listID uint) ([]*domain.Slot, error)
	FindByListAndNum(ctx context.Context, listID uint, num int) (*domain.Slot, error)
	FindSignups(ctx context.Context, listID uint) ([]*domain.SlotSignup, error)
	FindSignup(ctx context.Context, listID uint, num int, userID string) (*domain.SlotSignup, error)
	FindSignupsByUser(ctx context.Context, listID uint, userID string) ([]*domain.SlotSignup, error)
	CountSignups(ctx context.Context, listID uint, num int) (int64, error)
	CreateSignup(ctx context.Context, signup *domain.SlotSignup) error
	UpdateSignupName(ctx context.Context, signup *domain.SlotSignup) error
	DeleteSignup(ctx context.Context, listID uint, num int, userID string) (int64, error)
	DeleteSignupsByUser(ctx context.Context, listID uint, userID string) (int64, error)
}

type slotRepositoryImpl struct {
	db *gorm.DB
}

// NewSlotRepository creates a new instance of SlotRepository
func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepositoryImpl{db: db}
}

// CreateBatch creates the slots of a schedule in one statement
func (r *slotRepositoryImpl) CreateBatch(ctx context.Context, slots []*domain.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&slots).Error
}

func (r *slotRepositoryImpl) FindByListID(ctx context.Context, listID uint) ([]*domain.Slot, error) {
	var slots []*domain.Slot
	if err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("num ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepositoryImpl) FindByListAndNum(ctx context.Context, listID uint, num int) (*domain.Slot, error) {
	var slot domain.Slot
	if err := r.db.WithContext(ctx).
		Where("list_id = ? AND num = ?", listID, num).
		First(&slot).Error; err != nil {
		return nil, translateError(err)
	}
	return &slot, nil
}

// FindSignups finds every slot sign-up of a list in sign-up order
func (r *slotRepositoryImpl) FindSignups(ctx context.Context, listID uint) ([]*domain.SlotSignup, error) {
	var signups []*domain.SlotSignup
	if err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("id ASC").
		Find(&signups).Error; err != nil {
		return nil, err
	}
	return signups, nil
}

func (r *slotRepositoryImpl) FindSignup(ctx context.Context, listID uint, num int, userID string) (*domain.SlotSignup, error) {
	var signup domain.SlotSignup
	if err := r.db.WithContext(ctx).
		Where("list_id = ? AND slot_num = ? AND user_id = ?", listID, num, userID).
		First(&signup).Error; err != nil {
		return nil, translateError(err)
	}
	return &signup, nil
}

func (r *slotRepositoryImpl) FindSignupsByUser(ctx context.Context, listID uint, userID string) ([]*domain.SlotSignup, error) {
	var signups []*domain.SlotSignup
	if err := r.db.WithContext(ctx).
		Where("list_id = ? AND user_id = ?", listID, userID).
		Order("slot_num ASC").
		Find(&signups).Error; err != nil {
		return nil, err
	}
	return signups, nil
}

func (r *slotRepositoryImpl) CountSignups(ctx context.Context, listID uint, num int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.SlotSignup{}).
		Where("list_id = ? AND slot_num = ?", listID, num).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *slotRepositoryImpl) CreateSignup(ctx context.Context, signup *domain.SlotSignup) error {
	return translateError(r.db.WithContext(ctx).Create(signup).Error)
}

func (r *slotRepositoryImpl) UpdateSignupName(ctx context.Context, signup *domain.SlotSignup) error {
	return r.db.WithContext(ctx).
		Model(signup).
		Select("display_name", "updated_at").
		Updates(signup).Error
}

func (r *slotRepositoryImpl) DeleteSignup(ctx context.Context, listID uint, num int, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("list_id = ? AND slot_num = ? AND user_id = ?", listID, num, userID).
		Delete(&domain.SlotSignup{})
	return result.RowsAffected, result.Error
}

func (r *slotRepositoryImpl) DeleteSignupsByUser(ctx context.Context, listID uint, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("list_id = ? AND user_id = ?", listID, userID).
		Delete(&domain.SlotSignup{})
	return result.RowsAffected, result.Error
}
