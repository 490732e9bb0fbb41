package repositories

import (
	"context"
	"errors"
	"fmt"

	"apotek/internal/apperrors"
	"apotek/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByUser returns the user's cart with its items in insertion order.
	GetByUser(ctx context.Context, userID string) (*models.Cart, error)
	// LockByUser is GetByUser with the cart row locked until the enclosing
	// transaction ends.
	LockByUser(ctx context.Context, userID string) (*models.Cart, error)
	// GetOrCreate returns the user's cart, creating an empty one if needed.
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uint) error
	// Delete removes the cart and all of its items.
	Delete(ctx context.Context, cartID uint) error
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	return r.load(ctx, false, userID)
}

func (r *GORMCartRepository) LockByUser(ctx context.Context, userID string) (*models.Cart, error) {
	return r.load(ctx, true, userID)
}

func (r *GORMCartRepository) load(ctx context.Context, lock bool, userID string) (*models.Cart, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cart models.Cart
	if err := db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("cart for user", userID)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).Order("id ASC").Find(&cart.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to get items of cart %d: %w", cart.ID, err)
	}
	return &cart, nil
}

func (r *GORMCartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, err)
	}
	return r.LockByUser(ctx, userID)
}

// SaveItem inserts or updates a cart item.
func (r *GORMCartRepository) SaveItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) DeleteItem(ctx context.Context, cartID, itemID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("cart item", itemID)
	}
	return nil
}

func (r *GORMCartRepository) Delete(ctx context.Context, cartID uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete items of cart %d: %w", cartID, err)
	}
	if err := db.Delete(&models.Cart{}, cartID).Error; err != nil {
		return fmt.Errorf("failed to delete cart %d: %w", cartID, err)
	}
	return nil
}
