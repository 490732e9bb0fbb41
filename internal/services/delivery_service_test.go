package services_test

import (
	"context"
	"testing"

	"apotek/internal/models"
	"apotek/internal/services"
	"apotek/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryService_Estimate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	med := seedMedicine(t, store, models.Medicine{Price: 10, Stock: 3, IsAvailable: true})
	pharmacy := seedPharmacy(t, store, "Apotek", ptr(0.0), ptr(0.0))
	partner := seedPartner(t, store, "Budi", ptr(0.0), ptr(0.0))
	svc := services.NewDeliveryService(services.NewProviderMatcher(store.Medicines(), store.Providers()))

	// Roughly 6 km away: 12 minutes, express surcharge.
	est, err := svc.Estimate(ctx, geo.Point{Lat: 0.054, Lon: 0}, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, est.EstimatedMinutes)
	assert.InDelta(t, 6.0, est.EstimatedDistanceKm, 0.01)
	assert.Equal(t, 12.0, est.DynamicPrice)
	assert.Equal(t, pharmacy.ID, *est.PharmacyID)
	assert.Equal(t, partner.ID, *est.PartnerID)
	assert.Equal(t, services.MessageEstimateCalculated, est.Message)

	// Roughly 10 km away: 20 minutes, base price.
	est, err = svc.Estimate(ctx, geo.Point{Lat: 0.09, Lon: 0}, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, est.EstimatedMinutes)
	assert.Equal(t, 10.0, est.DynamicPrice)
}

func TestDeliveryService_EstimateEdgeCases(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	med := seedMedicine(t, store, models.Medicine{Price: 10, Stock: 3, IsAvailable: true})
	disabled := seedMedicine(t, store, models.Medicine{Name: "Old", Price: 10, Stock: 3, IsAvailable: false})
	seedPharmacy(t, store, "Apotek", ptr(0.0), ptr(0.0))
	svc := services.NewDeliveryService(services.NewProviderMatcher(store.Medicines(), store.Providers()))

	est, err := svc.Estimate(ctx, geo.Point{}, disabled.ID)
	require.NoError(t, err)
	assert.Equal(t, services.MessageMedicineNotAvailable, est.Message)
	assert.Zero(t, est.EstimatedMinutes)
	assert.Zero(t, est.DynamicPrice)
	assert.Nil(t, est.PharmacyID)

	// No partner: the pharmacy leg alone drives the quote.
	est, err = svc.Estimate(ctx, geo.Point{}, med.ID)
	require.NoError(t, err)
	assert.Nil(t, est.PartnerID)
	assert.NotNil(t, est.PharmacyID)
	assert.Equal(t, 10, est.EstimatedMinutes)
	assert.Contains(t, est.Message, "no available delivery partner")

	partners, err := svc.AvailablePartners(ctx)
	require.NoError(t, err)
	assert.Empty(t, partners)
}
