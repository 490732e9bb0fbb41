package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories of one unit of work. Repositories obtained
// from the Store passed to Transaction's callback run inside that
// transaction.
type Store interface {
	Medicines() MedicineRepository
	Prescriptions() PrescriptionRepository
	Providers() ProviderRepository
	Carts() CartRepository
	Orders() OrderRepository
	Deliveries() DeliveryRepository
	Emergencies() EmergencyRepository
	Users() UserRepository

	// Transaction runs fn atomically; any error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GORMStore is a GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new instance of GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func (s *GORMStore) Medicines() MedicineRepository         { return NewGORMMedicineRepository(s.db) }
func (s *GORMStore) Prescriptions() PrescriptionRepository { return NewGORMPrescriptionRepository(s.db) }
func (s *GORMStore) Providers() ProviderRepository         { return NewGORMProviderRepository(s.db) }
func (s *GORMStore) Carts() CartRepository                 { return NewGORMCartRepository(s.db) }
func (s *GORMStore) Orders() OrderRepository               { return NewGORMOrderRepository(s.db) }
func (s *GORMStore) Deliveries() DeliveryRepository        { return NewGORMDeliveryRepository(s.db) }
func (s *GORMStore) Emergencies() EmergencyRepository      { return NewGORMEmergencyRepository(s.db) }
func (s *GORMStore) Users() UserRepository                 { return NewGORMUserRepository(s.db) }

// Transaction runs fn inside a database transaction.
func (s *GORMStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMStore{db: tx})
	})
}
