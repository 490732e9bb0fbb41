package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"apotek/internal/apperrors"
	"apotek/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryRepository stores delivery tracking rows and delivery proofs.
type DeliveryRepository interface {
	CreateTracking(ctx context.Context, tracking *models.DeliveryTracking) error
	GetTracking(ctx context.Context, orderID string) (*models.DeliveryTracking, error)
	UpdateTrackingStatus(ctx context.Context, orderID string, status models.OrderStatus, at time.Time) error
	// UpsertProof creates or replaces the proof of the order.
	UpsertProof(ctx context.Context, proof *models.DeliveryProof) error
	GetProof(ctx context.Context, orderID string) (*models.DeliveryProof, error)
}

// GORMDeliveryRepository is a GORM implementation of DeliveryRepository.
type GORMDeliveryRepository struct {
	db *gorm.DB
}

// NewGORMDeliveryRepository creates a new instance of GORMDeliveryRepository.
func NewGORMDeliveryRepository(db *gorm.DB) *GORMDeliveryRepository {
	return &GORMDeliveryRepository{db: db}
}

func (r *GORMDeliveryRepository) CreateTracking(ctx context.Context, tracking *models.DeliveryTracking) error {
	if err := r.db.WithContext(ctx).Create(tracking).Error; err != nil {
		return fmt.Errorf("failed to create tracking for order %s: %w", tracking.OrderID, err)
	}
	return nil
}

func (r *GORMDeliveryRepository) GetTracking(ctx context.Context, orderID string) (*models.DeliveryTracking, error) {
	var tracking models.DeliveryTracking
	if err := r.db.WithContext(ctx).First(&tracking, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("tracking for order", orderID)
		}
		return nil, fmt.Errorf("failed to get tracking for order %s: %w", orderID, err)
	}
	return &tracking, nil
}

func (r *GORMDeliveryRepository) UpdateTrackingStatus(ctx context.Context, orderID string, status models.OrderStatus, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.DeliveryTracking{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{"current_status": status, "last_updated": at})
	if res.Error != nil {
		return fmt.Errorf("failed to update tracking for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("tracking for order", orderID)
	}
	return nil
}

func (r *GORMDeliveryRepository) UpsertProof(ctx context.Context, proof *models.DeliveryProof) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"image_url", "signature", "delivered_at"}),
	}).Create(proof).Error
	if err != nil {
		return fmt.Errorf("failed to save delivery proof for order %s: %w", proof.OrderID, err)
	}
	return nil
}

func (r *GORMDeliveryRepository) GetProof(ctx context.Context, orderID string) (*models.DeliveryProof, error) {
	var proof models.DeliveryProof
	if err := r.db.WithContext(ctx).First(&proof, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("delivery proof for order", orderID)
		}
		return nil, fmt.Errorf("failed to get delivery proof for order %s: %w", orderID, err)
	}
	return &proof, nil
}
