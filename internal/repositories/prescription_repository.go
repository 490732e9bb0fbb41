package repositories

import (
	"context"
	"errors"
	"fmt"

	"apotek/internal/apperrors"
	"apotek/internal/models"

	"gorm.io/gorm"
)

// PrescriptionRepository resolves prescription references.
type PrescriptionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Prescription, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Prescription, error)
	Create(ctx context.Context, p *models.Prescription) error
}

// GORMPrescriptionRepository is a GORM implementation of PrescriptionRepository.
type GORMPrescriptionRepository struct {
	db *gorm.DB
}

// NewGORMPrescriptionRepository creates a new instance of GORMPrescriptionRepository.
func NewGORMPrescriptionRepository(db *gorm.DB) *GORMPrescriptionRepository {
	return &GORMPrescriptionRepository{db: db}
}

func (r *GORMPrescriptionRepository) GetByID(ctx context.Context, id uint) (*models.Prescription, error) {
	var p models.Prescription
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("prescription", id)
		}
		return nil, fmt.Errorf("failed to get prescription by ID %d: %w", id, err)
	}
	return &p, nil
}

func (r *GORMPrescriptionRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Prescription, error) {
	result := make(map[uint]models.Prescription, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var list []models.Prescription
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to get prescriptions: %w", err)
	}
	for _, p := range list {
		result[p.ID] = p
	}
	return result, nil
}

func (r *GORMPrescriptionRepository) Create(ctx context.Context, p *models.Prescription) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}
