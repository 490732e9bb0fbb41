package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"apotek/internal/models"
	"apotek/internal/repositories"
)

func coord(v float64) *float64 { return &v }

// seedDemoData populates an empty catalog with a few medicines, pharmacies
// and delivery partners around Jakarta. It does nothing when pharmacies
// already exist.
func seedDemoData(ctx context.Context, store repositories.Store) error {
	existing, err := store.Providers().ListActivePharmacies(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info().Int("pharmacies", len(existing)).Msg("Demo data already present")
		return nil
	}

	return store.Transaction(ctx, func(tx repositories.Store) error {
		medicines := []models.Medicine{
			{Name: "Paracetamol 500mg", Description: "Pain and fever relief", Price: 10.00, Stock: 200, IsAvailable: true},
			{Name: "Amoxicillin 500mg", Description: "Antibiotic", Price: 35.50, Stock: 80, IsAvailable: true, PrescriptionRequired: true},
			{Name: "Cetirizine 10mg", Description: "Antihistamine", Price: 12.25, Stock: 120, IsAvailable: true},
			{Name: "Insulin Glargine", Description: "Long-acting insulin", Price: 180.00, Stock: 15, IsAvailable: true, PrescriptionRequired: true},
		}
		for i := range medicines {
			if err := tx.Medicines().Create(ctx, &medicines[i]); err != nil {
				return fmt.Errorf("seed medicine %s: %w", medicines[i].Name, err)
			}
		}

		pharmacies := []models.Pharmacy{
			{Name: "Apotek Menteng", Address: "Jl. HOS Cokroaminoto 12, Jakarta", Latitude: coord(-6.1963), Longitude: coord(106.8330), IsActive: true},
			{Name: "Apotek Kemang", Address: "Jl. Kemang Raya 5, Jakarta", Latitude: coord(-6.2607), Longitude: coord(106.8137), IsActive: true},
			{Name: "Apotek Kelapa Gading", Address: "Jl. Boulevard Raya 3, Jakarta", Latitude: coord(-6.1588), Longitude: coord(106.9056), IsActive: true},
		}
		for i := range pharmacies {
			if err := tx.Providers().CreatePharmacy(ctx, &pharmacies[i]); err != nil {
				return fmt.Errorf("seed pharmacy %s: %w", pharmacies[i].Name, err)
			}
		}

		partners := []models.DeliveryPartner{
			{Name: "Budi", Phone: "+62811000001", Latitude: coord(-6.2000), Longitude: coord(106.8300), IsAvailable: true, Status: models.PartnerAvailable},
			{Name: "Sari", Phone: "+62811000002", Latitude: coord(-6.2550), Longitude: coord(106.8100), IsAvailable: true, Status: models.PartnerAvailable},
			{Name: "Agus", Phone: "+62811000003", IsAvailable: false, Status: models.PartnerOffline},
		}
		for i := range partners {
			if err := tx.Providers().CreatePartner(ctx, &partners[i]); err != nil {
				return fmt.Errorf("seed delivery partner %s: %w", partners[i].Name, err)
			}
		}

		log.Info().Int("medicines", len(medicines)).Int("pharmacies", len(pharmacies)).Int("partners", len(partners)).Msg("Seeded demo data")
		return nil
	})
}
