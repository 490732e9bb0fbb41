package repositories

import (
	"context"
	"errors"
	"fmt"

	"apotek/internal/apperrors"
	"apotek/internal/models"

	"gorm.io/gorm"
)

// GORMMedicineRepository is a GORM implementation of MedicineRepository.
type GORMMedicineRepository struct {
	db *gorm.DB
}

// NewGORMMedicineRepository creates a new instance of GORMMedicineRepository.
func NewGORMMedicineRepository(db *gorm.DB) *GORMMedicineRepository {
	return &GORMMedicineRepository{db: db}
}

// GetByID retrieves a single medicine by its ID.
func (r *GORMMedicineRepository) GetByID(ctx context.Context, id uint) (*models.Medicine, error) {
	var medicine models.Medicine
	if err := r.db.WithContext(ctx).First(&medicine, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("medicine", id)
		}
		return nil, fmt.Errorf("failed to get medicine by ID %d: %w", id, err)
	}
	return &medicine, nil
}

// GetByIDs loads every requested medicine in one query.
func (r *GORMMedicineRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Medicine, error) {
	result := make(map[uint]models.Medicine, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var medicines []models.Medicine
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&medicines).Error; err != nil {
		return nil, fmt.Errorf("failed to get medicines: %w", err)
	}
	for _, m := range medicines {
		result[m.ID] = m
	}
	return result, nil
}

// DecrementStock atomically takes qty units. A lost race, a disabled
// medicine or a missing row all surface as ItemUnavailableError.
func (r *GORMMedicineRepository) DecrementStock(ctx context.Context, id uint, qty int) error {
	if qty < 1 {
		return apperrors.Validation("quantity must be at least 1")
	}
	res := r.db.WithContext(ctx).Model(&models.Medicine{}).
		Where("id = ? AND is_available = ? AND stock >= ?", id, true, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock for medicine %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ItemUnavailable(id, "insufficient stock")
	}
	return nil
}

// RestoreStock puts qty units back, e.g. when an order is cancelled.
func (r *GORMMedicineRepository) RestoreStock(ctx context.Context, id uint, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Medicine{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to restore stock for medicine %d: %w", id, res.Error)
	}
	return nil
}

// Create creates a new medicine in the database.
func (r *GORMMedicineRepository) Create(ctx context.Context, medicine *models.Medicine) error {
	if err := r.db.WithContext(ctx).Create(medicine).Error; err != nil {
		return fmt.Errorf("failed to create medicine: %w", err)
	}
	return nil
}
