package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"apotek/internal/apperrors"
	"apotek/internal/metrics"
	"apotek/internal/models"
	"apotek/internal/repositories"
	"apotek/pkg/geo"

	"github.com/rs/zerolog/log"
)

// EmergencyInput is the payload of an emergency delivery request.
// Coordinates are optional; the user's stored location is used otherwise.
type EmergencyInput struct {
	MedicineID      uint           `json:"medicine_id" validate:"required"`
	Urgency         models.Urgency `json:"urgency" validate:"required,oneof=high critical"`
	DeliveryAddress string         `json:"delivery_address" validate:"required"`
	Latitude        *float64       `json:"latitude" validate:"omitempty,latitude"`
	Longitude       *float64       `json:"longitude" validate:"omitempty,longitude"`
}

// EmergencyEvent is the payload of emergency events.
type EmergencyEvent struct {
	RequestID    string                 `json:"request_id"`
	UserID       string                 `json:"user_id"`
	MedicineID   uint                   `json:"medicine_id"`
	Urgency      models.Urgency         `json:"urgency"`
	Status       models.EmergencyStatus `json:"status"`
	PharmacyID   *uint                  `json:"pharmacy_id"`
	PartnerID    *uint                  `json:"partner_id"`
	DynamicPrice float64                `json:"dynamic_price"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// EmergencyService dispatches single-item urgent deliveries. Requests do
// not take stock; they only reserve a delivery partner once assigned.
type EmergencyService struct {
	store    repositories.Store
	matcher  *ProviderMatcher
	events   EventPublisher
	notifier Notifier
}

// NewEmergencyService creates a new EmergencyService.
func NewEmergencyService(store repositories.Store, matcher *ProviderMatcher, events EventPublisher, notifier Notifier) *EmergencyService {
	return &EmergencyService{
		store:    store,
		matcher:  matcher,
		events:   events,
		notifier: notifier,
	}
}

// RequestEmergency opens a pending emergency request with an advisory
// pharmacy and partner and an urgency-priced quote.
func (s *EmergencyService) RequestEmergency(ctx context.Context, userID string, in EmergencyInput) (*models.EmergencyDeliveryRequest, error) {
	if in.Urgency != models.UrgencyHigh && in.Urgency != models.UrgencyCritical {
		return nil, apperrors.Validation(fmt.Sprintf("invalid urgency: %s", in.Urgency))
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, apperrors.Validation("delivery address is required")
	}

	ref := s.reference(ctx, userID, in)
	match, medicine, err := s.matcher.Match(ctx, ref, in.MedicineID)
	if err != nil {
		return nil, err
	}
	quote := QuoteEmergency(match.DistanceKm(), in.Urgency, medicine.Price)

	req := &models.EmergencyDeliveryRequest{
		UserID:            userID,
		MedicineID:        medicine.ID,
		Urgency:           in.Urgency,
		Status:            models.EmergencyPending,
		DeliveryPartnerID: match.PartnerID,
		PharmacyID:        match.PharmacyID,
		DeliveryAddress:   in.DeliveryAddress,
		DynamicPrice:      quote.Price,
	}
	if err := s.store.Emergencies().Create(ctx, req); err != nil {
		return nil, err
	}

	metrics.EmergencyRequests.WithLabelValues(string(in.Urgency)).Inc()
	log.Info().Str("request_id", req.ID).Str("urgency", string(req.Urgency)).Float64("price", req.DynamicPrice).Msg("Emergency delivery requested")
	publish(s.events, EventEmergencyCreated, emergencyEvent(req))
	return req, nil
}

// reference picks the point to match from: the request's coordinates, then
// the user's stored location, else none.
func (s *EmergencyService) reference(ctx context.Context, userID string, in EmergencyInput) *geo.Point {
	if p, ok := geo.PointFrom(in.Latitude, in.Longitude); ok {
		return &p
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("No stored location for emergency request")
		return nil
	}
	if p, ok := geo.PointFrom(user.Latitude, user.Longitude); ok {
		return &p
	}
	return nil
}

// Get returns one of the user's emergency requests.
func (s *EmergencyService) Get(ctx context.Context, userID, requestID string) (*models.EmergencyDeliveryRequest, error) {
	req, err := s.store.Emergencies().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, apperrors.NotFound("emergency request", requestID)
	}
	return req, nil
}

// Assign reserves a delivery partner for a pending request. The advisory
// partner is tried first; if another dispatch took it in the meantime the
// partner is re-matched once.
func (s *EmergencyService) Assign(ctx context.Context, userID, requestID string) (*models.EmergencyDeliveryRequest, error) {
	req, err := s.Get(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransitionTo(models.EmergencyAssigned) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot assign a request in status %s", req.Status))
	}

	partnerID, err := s.reserve(ctx, req)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := tx.Emergencies().LockByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !locked.Status.CanTransitionTo(models.EmergencyAssigned) {
			return apperrors.Conflict(fmt.Sprintf("cannot assign a request in status %s", locked.Status))
		}
		locked.DeliveryPartnerID = &partnerID
		locked.Status = models.EmergencyAssigned
		if err := tx.Emergencies().Save(ctx, locked); err != nil {
			return err
		}
		req = locked
		return nil
	})
	if err != nil {
		if releaseErr := s.store.Providers().ReleasePartner(ctx, partnerID); releaseErr != nil {
			log.Error().Err(releaseErr).Uint("partner_id", partnerID).Msg("Failed to release partner after aborted assignment")
		}
		return nil, err
	}

	log.Info().Str("request_id", req.ID).Uint("partner_id", partnerID).Msg("Emergency request assigned")
	if s.notifier != nil {
		s.notifier.NotifyUser(req.UserID, "Emergency Delivery", fmt.Sprintf("A delivery partner is on the way for request #%s.", req.ID))
	}
	return req, nil
}

// reserve claims the advisory partner, or a freshly matched one if that
// claim is lost.
func (s *EmergencyService) reserve(ctx context.Context, req *models.EmergencyDeliveryRequest) (uint, error) {
	candidate := req.DeliveryPartnerID
	for attempt := 0; attempt < 2; attempt++ {
		if candidate == nil || attempt > 0 {
			var err error
			candidate, err = s.matcher.NearestPartner(ctx, req.PharmacyID)
			if err != nil {
				return 0, err
			}
		}
		if candidate == nil {
			return 0, apperrors.Conflict("no delivery partner available")
		}

		ok, err := s.store.Providers().ReservePartner(ctx, *candidate)
		if err != nil {
			return 0, err
		}
		if ok {
			return *candidate, nil
		}
		metrics.PartnerReservationConflicts.Inc()
		log.Warn().Uint("partner_id", *candidate).Str("request_id", req.ID).Msg("Partner taken by another dispatch, re-matching")
	}
	return 0, apperrors.Conflict("delivery partner was taken by another dispatch")
}

// Complete closes an assigned request and frees its partner.
func (s *EmergencyService) Complete(ctx context.Context, userID, requestID string) (*models.EmergencyDeliveryRequest, error) {
	return s.finish(ctx, userID, requestID, models.EmergencyCompleted)
}

// Cancel abandons a pending or assigned request, freeing any reserved
// partner.
func (s *EmergencyService) Cancel(ctx context.Context, userID, requestID string) (*models.EmergencyDeliveryRequest, error) {
	return s.finish(ctx, userID, requestID, models.EmergencyCancelled)
}

// UpdateStatus routes a requested status to Assign, Complete or Cancel.
func (s *EmergencyService) UpdateStatus(ctx context.Context, userID, requestID string, status models.EmergencyStatus) (*models.EmergencyDeliveryRequest, error) {
	switch status {
	case models.EmergencyAssigned:
		return s.Assign(ctx, userID, requestID)
	case models.EmergencyCompleted:
		return s.Complete(ctx, userID, requestID)
	case models.EmergencyCancelled:
		return s.Cancel(ctx, userID, requestID)
	default:
		return nil, apperrors.Validation(fmt.Sprintf("invalid emergency status: %s", status))
	}
}

func (s *EmergencyService) finish(ctx context.Context, userID, requestID string, status models.EmergencyStatus) (*models.EmergencyDeliveryRequest, error) {
	var req *models.EmergencyDeliveryRequest
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := tx.Emergencies().LockByID(ctx, requestID)
		if err != nil {
			return err
		}
		if locked.UserID != userID {
			return apperrors.NotFound("emergency request", requestID)
		}
		if !locked.Status.CanTransitionTo(status) {
			return apperrors.Conflict(fmt.Sprintf("cannot change emergency request from %s to %s", locked.Status, status))
		}
		// Only an assigned request holds a reservation.
		if locked.Status == models.EmergencyAssigned && locked.DeliveryPartnerID != nil {
			if err := tx.Providers().ReleasePartner(ctx, *locked.DeliveryPartnerID); err != nil {
				return err
			}
		}
		locked.Status = status
		if err := tx.Emergencies().Save(ctx, locked); err != nil {
			return err
		}
		req = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("request_id", requestID).Str("status", string(status)).Msg("Emergency request closed")
	return req, nil
}

func emergencyEvent(req *models.EmergencyDeliveryRequest) EmergencyEvent {
	return EmergencyEvent{
		RequestID:    req.ID,
		UserID:       req.UserID,
		MedicineID:   req.MedicineID,
		Urgency:      req.Urgency,
		Status:       req.Status,
		PharmacyID:   req.PharmacyID,
		PartnerID:    req.DeliveryPartnerID,
		DynamicPrice: req.DynamicPrice,
		OccurredAt:   req.CreatedAt,
	}
}
