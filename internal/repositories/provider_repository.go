package repositories

import (
	"context"
	"errors"
	"fmt"

	"apotek/internal/apperrors"
	"apotek/internal/models"

	"gorm.io/gorm"
)

// ProviderRepository reads pharmacies and delivery partners, and performs
// the partner reservation compare-and-swap.
type ProviderRepository interface {
	ListActivePharmacies(ctx context.Context) ([]models.Pharmacy, error)
	ListAvailablePartners(ctx context.Context) ([]models.DeliveryPartner, error)
	GetPartner(ctx context.Context, id uint) (*models.DeliveryPartner, error)
	// ReservePartner flips an available partner to on_delivery. It returns
	// false, without error, when the partner was no longer available.
	ReservePartner(ctx context.Context, id uint) (bool, error)
	ReleasePartner(ctx context.Context, id uint) error
	CreatePharmacy(ctx context.Context, p *models.Pharmacy) error
	CreatePartner(ctx context.Context, p *models.DeliveryPartner) error
}

// GORMProviderRepository is a GORM implementation of ProviderRepository.
type GORMProviderRepository struct {
	db *gorm.DB
}

// NewGORMProviderRepository creates a new instance of GORMProviderRepository.
func NewGORMProviderRepository(db *gorm.DB) *GORMProviderRepository {
	return &GORMProviderRepository{db: db}
}

// ListActivePharmacies returns active pharmacies ordered by id.
func (r *GORMProviderRepository) ListActivePharmacies(ctx context.Context) ([]models.Pharmacy, error) {
	var pharmacies []models.Pharmacy
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&pharmacies).Error; err != nil {
		return nil, fmt.Errorf("failed to list active pharmacies: %w", err)
	}
	return pharmacies, nil
}

// ListAvailablePartners returns available partners ordered by id.
func (r *GORMProviderRepository) ListAvailablePartners(ctx context.Context) ([]models.DeliveryPartner, error) {
	var partners []models.DeliveryPartner
	if err := r.db.WithContext(ctx).Where("is_available = ?", true).Order("id ASC").Find(&partners).Error; err != nil {
		return nil, fmt.Errorf("failed to list available partners: %w", err)
	}
	return partners, nil
}

func (r *GORMProviderRepository) GetPartner(ctx context.Context, id uint) (*models.DeliveryPartner, error) {
	var partner models.DeliveryPartner
	if err := r.db.WithContext(ctx).First(&partner, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("delivery partner", id)
		}
		return nil, fmt.Errorf("failed to get delivery partner by ID %d: %w", id, err)
	}
	return &partner, nil
}

func (r *GORMProviderRepository) ReservePartner(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.DeliveryPartner{}).
		Where("id = ? AND is_available = ?", id, true).
		Updates(map[string]interface{}{
			"is_available": false,
			"status":       models.PartnerOnDelivery,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to reserve delivery partner %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMProviderRepository) ReleasePartner(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.DeliveryPartner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_available":     true,
			"status":           models.PartnerAvailable,
			"current_order_id": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to release delivery partner %d: %w", id, res.Error)
	}
	return nil
}

func (r *GORMProviderRepository) CreatePharmacy(ctx context.Context, p *models.Pharmacy) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create pharmacy: %w", err)
	}
	return nil
}

func (r *GORMProviderRepository) CreatePartner(ctx context.Context, p *models.DeliveryPartner) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create delivery partner: %w", err)
	}
	return nil
}
