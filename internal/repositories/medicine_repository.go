package repositories

import (
	"context"

	"apotek/internal/models"
)

// MedicineRepository is the read side of the catalog plus the stock
// commitment used at checkout.
type MedicineRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Medicine, error)
	// GetByIDs returns the medicines found among ids, keyed by id. Missing
	// ids are simply absent from the map.
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Medicine, error)
	// DecrementStock removes qty units only if the medicine is available
	// and has at least qty in stock.
	DecrementStock(ctx context.Context, id uint, qty int) error
	RestoreStock(ctx context.Context, id uint, qty int) error
	Create(ctx context.Context, medicine *models.Medicine) error
}
