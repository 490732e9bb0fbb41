package services_test

import (
	"context"
	"testing"

	"apotek/internal/apperrors"
	"apotek/internal/models"
	"apotek/internal/services"
	"apotek/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectProviders_NearestAndTieBreak(t *testing.T) {
	ref := &geo.Point{Lat: 0, Lon: 0}
	pharmacies := []models.Pharmacy{
		{ID: 3, Latitude: ptr(0.0), Longitude: ptr(0.1)},
		{ID: 2, Latitude: ptr(0.0), Longitude: ptr(-0.1)}, // same distance as 3
		{ID: 5, Latitude: ptr(0.0), Longitude: ptr(0.5)},
	}
	partners := []models.DeliveryPartner{
		{ID: 9, Latitude: ptr(0.0), Longitude: ptr(-0.1)}, // at pharmacy 2
		{ID: 4, Latitude: ptr(0.0), Longitude: ptr(0.3)},
	}

	m := services.SelectProviders(ref, pharmacies, partners)
	require.NotNil(t, m.PharmacyID)
	assert.Equal(t, uint(2), *m.PharmacyID)
	require.NotNil(t, m.PartnerID)
	assert.Equal(t, uint(9), *m.PartnerID)
	require.NotNil(t, m.PharmacyLegKm)
	assert.InDelta(t, 11.12, *m.PharmacyLegKm, 0.01)
	require.NotNil(t, m.PartnerLegKm)
	assert.InDelta(t, 0, *m.PartnerLegKm, 1e-9)
	assert.InDelta(t, 11.12, m.DistanceKm(), 0.01)
}

func TestSelectProviders_PartnerTieBreak(t *testing.T) {
	ref := &geo.Point{Lat: 0, Lon: 0}
	pharmacies := []models.Pharmacy{{ID: 1, Latitude: ptr(0.0), Longitude: ptr(0.0)}}
	partners := []models.DeliveryPartner{
		{ID: 8, Latitude: ptr(0.1), Longitude: ptr(0.0)},
		{ID: 6, Latitude: ptr(-0.1), Longitude: ptr(0.0)},
	}
	m := services.SelectProviders(ref, pharmacies, partners)
	assert.Equal(t, uint(6), *m.PartnerID)
}

func TestSelectProviders_SkipsMissingCoordinates(t *testing.T) {
	ref := &geo.Point{Lat: 0, Lon: 0}
	pharmacies := []models.Pharmacy{
		{ID: 1}, // no coordinates
		{ID: 2, Latitude: ptr(1.0), Longitude: ptr(1.0)},
	}
	partners := []models.DeliveryPartner{
		{ID: 1},
		{ID: 2, Latitude: ptr(1.0), Longitude: ptr(1.1)},
	}
	m := services.SelectProviders(ref, pharmacies, partners)
	assert.Equal(t, uint(2), *m.PharmacyID)
	assert.Equal(t, uint(2), *m.PartnerID)
	assert.NotNil(t, m.PharmacyLegKm)
	assert.NotNil(t, m.PartnerLegKm)
}

func TestSelectProviders_FallbackWithoutReference(t *testing.T) {
	pharmacies := []models.Pharmacy{
		{ID: 7, Latitude: ptr(1.0), Longitude: ptr(1.0)},
		{ID: 4},
	}
	partners := []models.DeliveryPartner{{ID: 12}, {ID: 3}}

	m := services.SelectProviders(nil, pharmacies, partners)
	assert.Equal(t, uint(4), *m.PharmacyID)
	assert.Nil(t, m.PharmacyLegKm)
	// Pharmacy 4 has no coordinates, so the partner falls back too.
	assert.Equal(t, uint(3), *m.PartnerID)
	assert.Nil(t, m.PartnerLegKm)
	assert.Equal(t, 0.0, m.DistanceKm())
}

func TestSelectProviders_NoCandidates(t *testing.T) {
	m := services.SelectProviders(&geo.Point{}, nil, nil)
	assert.Nil(t, m.PharmacyID)
	assert.Nil(t, m.PartnerID)
	assert.Equal(t, 0.0, m.DistanceKm())
}

func TestProviderMatcher_Match(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	med := seedMedicine(t, store, models.Medicine{Price: 10, Stock: 3, IsAvailable: true})
	out := seedMedicine(t, store, models.Medicine{Name: "Ibuprofen", Price: 5, Stock: 0, IsAvailable: true})
	far := seedPharmacy(t, store, "Far", ptr(1.0), ptr(1.0))
	near := seedPharmacy(t, store, "Near", ptr(0.01), ptr(0.01))
	partner := seedPartner(t, store, "Budi", ptr(0.02), ptr(0.02))
	_ = far

	matcher := services.NewProviderMatcher(store.Medicines(), store.Providers())

	m, medicine, err := matcher.Match(ctx, &geo.Point{Lat: 0, Lon: 0}, med.ID)
	require.NoError(t, err)
	assert.Equal(t, med.ID, medicine.ID)
	assert.Equal(t, near.ID, *m.PharmacyID)
	assert.Equal(t, partner.ID, *m.PartnerID)

	// Matching never reserves.
	p, err := store.Providers().GetPartner(ctx, partner.ID)
	require.NoError(t, err)
	assert.True(t, p.IsAvailable)

	_, _, err = matcher.Match(ctx, nil, out.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	_, _, err = matcher.Match(ctx, nil, 999)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestProviderMatcher_NearbyPharmacies(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	med := seedMedicine(t, store, models.Medicine{Price: 10, Stock: 3, IsAvailable: true})
	for i := 0; i < 7; i++ {
		seedPharmacy(t, store, "P", ptr(float64(i)*0.1), ptr(0.0))
	}
	seedPharmacy(t, store, "NoCoords", nil, nil)

	matcher := services.NewProviderMatcher(store.Medicines(), store.Providers())
	nearby, err := matcher.NearbyPharmacies(ctx, geo.Point{Lat: 0.25, Lon: 0}, med.ID, 5)
	require.NoError(t, err)
	require.Len(t, nearby, 5)
	assert.Equal(t, uint(3), nearby[0].ID) // lat 0.2
	assert.Equal(t, uint(4), nearby[1].ID) // lat 0.3
	for i := 1; i < len(nearby); i++ {
		assert.LessOrEqual(t, nearby[i-1].DistanceKm, nearby[i].DistanceKm)
	}

	empty, err := matcher.NearbyPharmacies(ctx, geo.Point{}, 999, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
