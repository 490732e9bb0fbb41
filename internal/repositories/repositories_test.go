package repositories_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"apotek/internal/apperrors"
	"apotek/internal/database"
	"apotek/internal/models"
	"apotek/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) repositories.Store {
	t.Helper()
	db, err := database.OpenInMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repositories.NewGORMStore(db)
}

func TestMedicineRepository_DecrementStock(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	repo := store.Medicines()

	med := &models.Medicine{Name: "Ibuprofen", Price: 8.5, Stock: 3, IsAvailable: true}
	require.NoError(t, repo.Create(ctx, med))

	require.NoError(t, repo.DecrementStock(ctx, med.ID, 2))

	err := repo.DecrementStock(ctx, med.ID, 2)
	assert.True(t, errors.Is(err, apperrors.ErrUnavailable), "only one unit left")

	err = repo.DecrementStock(ctx, med.ID, 0)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	err = repo.DecrementStock(ctx, 999, 1)
	assert.True(t, errors.Is(err, apperrors.ErrUnavailable))

	got, err := repo.GetByID(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)

	require.NoError(t, repo.RestoreStock(ctx, med.ID, 2))
	got, err = repo.GetByID(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestMedicineRepository_DecrementStockDisabled(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	med := &models.Medicine{Name: "Codeine", Price: 20, Stock: 10, IsAvailable: false}
	require.NoError(t, store.Medicines().Create(ctx, med))

	err := store.Medicines().DecrementStock(ctx, med.ID, 1)
	var unavailable *apperrors.ItemUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, med.ID, unavailable.MedicineID)
}

func TestMedicineRepository_GetByIDs(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	a := &models.Medicine{Name: "A", Price: 1, Stock: 1, IsAvailable: true}
	b := &models.Medicine{Name: "B", Price: 2, Stock: 1, IsAvailable: true}
	require.NoError(t, store.Medicines().Create(ctx, a))
	require.NoError(t, store.Medicines().Create(ctx, b))

	found, err := store.Medicines().GetByIDs(ctx, []uint{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "B", found[b.ID].Name)

	empty, err := store.Medicines().GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = store.Medicines().GetByID(ctx, 999)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProviderRepository_ReservePartner(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	repo := store.Providers()

	partner := &models.DeliveryPartner{Name: "Sari", IsAvailable: true, Status: models.PartnerAvailable}
	require.NoError(t, repo.CreatePartner(ctx, partner))

	ok, err := repo.ReservePartner(ctx, partner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ReservePartner(ctx, partner.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second reservation loses")

	available, err := repo.ListAvailablePartners(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)

	require.NoError(t, repo.ReleasePartner(ctx, partner.ID))
	got, err := repo.GetPartner(ctx, partner.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
	assert.Equal(t, models.PartnerAvailable, got.Status)
}

func TestProviderRepository_ListActivePharmacies(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Providers().CreatePharmacy(ctx, &models.Pharmacy{Name: "Open", IsActive: true}))
	require.NoError(t, store.Providers().CreatePharmacy(ctx, &models.Pharmacy{Name: "Closed", IsActive: false}))

	pharmacies, err := store.Providers().ListActivePharmacies(ctx)
	require.NoError(t, err)
	require.Len(t, pharmacies, 1)
	assert.Equal(t, "Open", pharmacies[0].Name)
}

func TestCartRepository(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	repo := store.Carts()

	_, err := repo.GetByUser(ctx, "user-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	cart, err := repo.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	again, err := repo.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID, "one cart per user")

	item := &models.CartItem{CartID: cart.ID, MedicineID: 1, Quantity: 2}
	require.NoError(t, repo.SaveItem(ctx, item))

	other, err := repo.GetOrCreate(ctx, "user-2")
	require.NoError(t, err)
	err = repo.DeleteItem(ctx, other.ID, item.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "item belongs to another cart")

	loaded, err := repo.LockByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)

	require.NoError(t, repo.Delete(ctx, cart.ID))
	_, err = repo.GetByUser(ctx, "user-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStore_TransactionRollback(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	med := &models.Medicine{Name: "Loratadine", Price: 5, Stock: 4, IsAvailable: true}
	require.NoError(t, store.Medicines().Create(ctx, med))

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Medicines().DecrementStock(ctx, med.ID, 3); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Medicines().GetByID(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock, "decrement rolled back")
}
