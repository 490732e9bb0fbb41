package repositories

import (
	"context"
	"errors"
	"fmt"

	"apotek/internal/apperrors"
	"apotek/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmergencyRepository defines the interface for emergency request data access.
type EmergencyRepository interface {
	Create(ctx context.Context, req *models.EmergencyDeliveryRequest) error
	GetByID(ctx context.Context, id string) (*models.EmergencyDeliveryRequest, error)
	LockByID(ctx context.Context, id string) (*models.EmergencyDeliveryRequest, error)
	Save(ctx context.Context, req *models.EmergencyDeliveryRequest) error
}

// GORMEmergencyRepository is a GORM implementation of EmergencyRepository.
type GORMEmergencyRepository struct {
	db *gorm.DB
}

// NewGORMEmergencyRepository creates a new instance of GORMEmergencyRepository.
func NewGORMEmergencyRepository(db *gorm.DB) *GORMEmergencyRepository {
	return &GORMEmergencyRepository{db: db}
}

func (r *GORMEmergencyRepository) Create(ctx context.Context, req *models.EmergencyDeliveryRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create emergency request: %w", err)
	}
	return nil
}

func (r *GORMEmergencyRepository) GetByID(ctx context.Context, id string) (*models.EmergencyDeliveryRequest, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GORMEmergencyRepository) LockByID(ctx context.Context, id string) (*models.EmergencyDeliveryRequest, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GORMEmergencyRepository) get(db *gorm.DB, id string) (*models.EmergencyDeliveryRequest, error) {
	var req models.EmergencyDeliveryRequest
	if err := db.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("emergency request", id)
		}
		return nil, fmt.Errorf("failed to get emergency request by ID %s: %w", id, err)
	}
	return &req, nil
}

func (r *GORMEmergencyRepository) Save(ctx context.Context, req *models.EmergencyDeliveryRequest) error {
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		return fmt.Errorf("failed to update emergency request %s: %w", req.ID, err)
	}
	return nil
}
