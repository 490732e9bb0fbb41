package services

import (
	"context"
	"errors"
	"strings"

	"apotek/internal/apperrors"
	"apotek/internal/models"
	"apotek/pkg/geo"
)

// Estimate messages.
const (
	MessageEstimateCalculated   = "Estimate calculated"
	MessageMedicineNotAvailable = "Medicine not available"
)

// DeliveryEstimate is a priced, advisory delivery estimate.
type DeliveryEstimate struct {
	EstimatedMinutes    int     `json:"estimated_time_minutes"`
	EstimatedDistanceKm float64 `json:"estimated_distance_km"`
	DynamicPrice        float64 `json:"dynamic_price"`
	PartnerID           *uint   `json:"partner_id"`
	PharmacyID          *uint   `json:"pharmacy_id"`
	Message             string  `json:"message"`
}

// DeliveryService answers the public delivery queries.
type DeliveryService struct {
	matcher *ProviderMatcher
}

// NewDeliveryService creates a new DeliveryService.
func NewDeliveryService(matcher *ProviderMatcher) *DeliveryService {
	return &DeliveryService{matcher: matcher}
}

// Estimate quotes a standard delivery of medicineID to ref. An unavailable
// medicine is not an error: the estimate is zeroed and says so.
func (s *DeliveryService) Estimate(ctx context.Context, ref geo.Point, medicineID uint) (*DeliveryEstimate, error) {
	match, medicine, err := s.matcher.Match(ctx, &ref, medicineID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnavailable) {
			return &DeliveryEstimate{Message: MessageMedicineNotAvailable}, nil
		}
		return nil, err
	}

	quote := QuoteStandard(match.DistanceKm(), medicine.Price)
	return &DeliveryEstimate{
		EstimatedMinutes:    quote.EstimatedMinutes,
		EstimatedDistanceKm: quote.DistanceKm,
		DynamicPrice:        quote.Price,
		PartnerID:           match.PartnerID,
		PharmacyID:          match.PharmacyID,
		Message:             estimateMessage(match),
	}, nil
}

func estimateMessage(m *Match) string {
	var missing []string
	if m.PharmacyID == nil {
		missing = append(missing, "no active pharmacy")
	}
	if m.PartnerID == nil {
		missing = append(missing, "no available delivery partner")
	}
	if len(missing) == 0 {
		return MessageEstimateCalculated
	}
	return MessageEstimateCalculated + "; " + strings.Join(missing, ", ")
}

// NearbyPharmacies lists the closest active pharmacies for a medicine.
func (s *DeliveryService) NearbyPharmacies(ctx context.Context, ref geo.Point, medicineID uint) ([]NearbyPharmacy, error) {
	return s.matcher.NearbyPharmacies(ctx, ref, medicineID, DefaultNearbyLimit)
}

// AvailablePartners lists the partners free to take a delivery.
func (s *DeliveryService) AvailablePartners(ctx context.Context) ([]models.DeliveryPartner, error) {
	return s.matcher.AvailablePartners(ctx)
}
