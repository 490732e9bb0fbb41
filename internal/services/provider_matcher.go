package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"apotek/internal/apperrors"
	"apotek/internal/models"
	"apotek/internal/repositories"
	"apotek/pkg/geo"

	"golang.org/x/sync/errgroup"
)

// DefaultNearbyLimit caps the nearby pharmacy listing.
const DefaultNearbyLimit = 5

// Match is an advisory pairing of a pharmacy and a delivery partner. A nil
// leg means no distance could be computed for it.
type Match struct {
	PharmacyID    *uint    `json:"pharmacy_id"`
	PartnerID     *uint    `json:"partner_id"`
	PharmacyLegKm *float64 `json:"pharmacy_leg_km,omitempty"`
	PartnerLegKm  *float64 `json:"partner_leg_km,omitempty"`
}

// DistanceKm sums the legs that are present.
func (m *Match) DistanceKm() float64 {
	var total float64
	if m.PharmacyLegKm != nil {
		total += *m.PharmacyLegKm
	}
	if m.PartnerLegKm != nil {
		total += *m.PartnerLegKm
	}
	return total
}

// NearbyPharmacy is a pharmacy annotated with its distance from the caller.
type NearbyPharmacy struct {
	models.Pharmacy
	DistanceKm float64 `json:"distance_km"`
}

// ProviderMatcher selects the pharmacy and partner for a delivery. It only
// reads; reserving the partner is the caller's business.
type ProviderMatcher struct {
	medicines repositories.MedicineRepository
	providers repositories.ProviderRepository
}

// NewProviderMatcher creates a new ProviderMatcher.
func NewProviderMatcher(medicines repositories.MedicineRepository, providers repositories.ProviderRepository) *ProviderMatcher {
	return &ProviderMatcher{medicines: medicines, providers: providers}
}

// Match picks the pharmacy nearest to ref and the partner nearest to that
// pharmacy. It fails with ErrUnavailable when the medicine cannot be
// supplied at all.
func (m *ProviderMatcher) Match(ctx context.Context, ref *geo.Point, medicineID uint) (*Match, *models.Medicine, error) {
	medicine, err := m.suppliable(ctx, medicineID)
	if err != nil {
		return nil, nil, err
	}

	pharmacies, partners, err := m.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return SelectProviders(ref, pharmacies, partners), medicine, nil
}

// NearbyPharmacies lists active pharmacies with coordinates by ascending
// distance from ref. An unsuppliable medicine yields an empty list.
func (m *ProviderMatcher) NearbyPharmacies(ctx context.Context, ref geo.Point, medicineID uint, limit int) ([]NearbyPharmacy, error) {
	if _, err := m.suppliable(ctx, medicineID); err != nil {
		if errors.Is(err, apperrors.ErrUnavailable) {
			return []NearbyPharmacy{}, nil
		}
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}

	pharmacies, err := m.providers.ListActivePharmacies(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbyPharmacy, 0, len(pharmacies))
	for _, p := range pharmacies {
		at, ok := geo.PointFrom(p.Latitude, p.Longitude)
		if !ok {
			continue
		}
		nearby = append(nearby, NearbyPharmacy{Pharmacy: p, DistanceKm: geo.Distance(ref, at)})
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].ID < nearby[j].ID
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

// AvailablePartners lists the partners that can currently take a delivery.
func (m *ProviderMatcher) AvailablePartners(ctx context.Context) ([]models.DeliveryPartner, error) {
	return m.providers.ListAvailablePartners(ctx)
}

func (m *ProviderMatcher) suppliable(ctx context.Context, medicineID uint) (*models.Medicine, error) {
	medicine, err := m.medicines.GetByID(ctx, medicineID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ItemUnavailable(medicineID, "not found")
		}
		return nil, err
	}
	if !medicine.IsAvailable || medicine.Stock < 1 {
		return nil, apperrors.ItemUnavailable(medicineID, "")
	}
	return medicine, nil
}

func (m *ProviderMatcher) load(ctx context.Context) ([]models.Pharmacy, []models.DeliveryPartner, error) {
	var (
		pharmacies []models.Pharmacy
		partners   []models.DeliveryPartner
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pharmacies, err = m.providers.ListActivePharmacies(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		partners, err = m.providers.ListAvailablePartners(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load providers: %w", err)
	}
	return pharmacies, partners, nil
}

// SelectProviders is the pure selection step of Match. Ties go to the lowest
// id. Without a usable reference point the lowest-id candidate is chosen and
// its leg is left nil.
func SelectProviders(ref *geo.Point, pharmacies []models.Pharmacy, partners []models.DeliveryPartner) *Match {
	match := &Match{}

	var pharmacyAt *geo.Point
	if i, km := nearest(ref, len(pharmacies), func(i int) (uint, *float64, *float64) {
		return pharmacies[i].ID, pharmacies[i].Latitude, pharmacies[i].Longitude
	}); i >= 0 {
		p := pharmacies[i]
		match.PharmacyID = &p.ID
		match.PharmacyLegKm = km
		if at, ok := geo.PointFrom(p.Latitude, p.Longitude); ok {
			pharmacyAt = &at
		}
	}

	if i, km := nearest(pharmacyAt, len(partners), func(i int) (uint, *float64, *float64) {
		return partners[i].ID, partners[i].Latitude, partners[i].Longitude
	}); i >= 0 {
		match.PartnerID = &partners[i].ID
		match.PartnerLegKm = km
	}
	return match
}

// nearest returns the index of the candidate closest to ref, or of the
// lowest-id candidate when no distance is computable. -1 means no candidates.
func nearest(ref *geo.Point, n int, at func(i int) (id uint, lat, lon *float64)) (int, *float64) {
	best, fallback := -1, -1
	var bestKm float64
	for i := 0; i < n; i++ {
		id, lat, lon := at(i)
		if fallback < 0 {
			fallback = i
		} else if fid, _, _ := at(fallback); id < fid {
			fallback = i
		}

		if ref == nil {
			continue
		}
		p, ok := geo.PointFrom(lat, lon)
		if !ok {
			continue
		}
		km := geo.Distance(*ref, p)
		if best < 0 || km < bestKm {
			best, bestKm = i, km
			continue
		}
		if bid, _, _ := at(best); km == bestKm && id < bid {
			best = i
		}
	}
	if best >= 0 {
		return best, &bestKm
	}
	return fallback, nil
}

// NearestPartner re-runs the partner half of a match for an already chosen
// pharmacy. It returns nil when no partner is available.
func (m *ProviderMatcher) NearestPartner(ctx context.Context, pharmacyID *uint) (*uint, error) {
	pharmacies, partners, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	var at *geo.Point
	if pharmacyID != nil {
		for _, p := range pharmacies {
			if p.ID != *pharmacyID {
				continue
			}
			if pt, ok := geo.PointFrom(p.Latitude, p.Longitude); ok {
				at = &pt
			}
			break
		}
	}

	i, _ := nearest(at, len(partners), func(i int) (uint, *float64, *float64) {
		return partners[i].ID, partners[i].Latitude, partners[i].Longitude
	})
	if i < 0 {
		return nil, nil
	}
	return &partners[i].ID, nil
}
