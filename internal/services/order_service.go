package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"apotek/internal/apperrors"
	"apotek/internal/metrics"
	"apotek/internal/models"
	"apotek/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OrderEvent is the payload of order events.
type OrderEvent struct {
	OrderID        string             `json:"order_id"`
	UserID         string             `json:"user_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	TotalAmount    float64            `json:"total_amount"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	store    repositories.Store
	cache    repositories.TrackingCache
	events   EventPublisher
	notifier Notifier
	now      func() time.Time
}

// NewOrderService creates a new OrderService. cache, events and notifier are
// optional.
func NewOrderService(store repositories.Store, cache repositories.TrackingCache, events EventPublisher, notifier Notifier) *OrderService {
	return &OrderService{
		store:    store,
		cache:    cache,
		events:   events,
		notifier: notifier,
		now:      time.Now,
	}
}

// PlaceOrder turns the user's cart into an order. Every line is re-checked
// and its stock taken inside one transaction, so either all lines commit
// together with the order, its tracking row and the cart removal, or
// nothing changes.
func (s *OrderService) PlaceOrder(ctx context.Context, userID, deliveryAddress string) (*models.Order, error) {
	if strings.TrimSpace(deliveryAddress) == "" {
		return nil, apperrors.Validation("delivery address is required")
	}

	var order *models.Order
	var medicines map[uint]models.Medicine
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().LockByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrEmptyCart
			}
			return err
		}
		if len(cart.Items) == 0 {
			return apperrors.ErrEmptyCart
		}

		var prescriptions map[uint]models.Prescription
		medicines, prescriptions, err = loadCartRefs(ctx, tx, cart.Items)
		if err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			medicine, err := checkoutLine(userID, item, medicines, prescriptions)
			if err != nil {
				return err
			}
			if err := tx.Medicines().DecrementStock(ctx, item.MedicineID, item.Quantity); err != nil {
				return err
			}
			total = total.Add(lineTotal(medicine.Price, item.Quantity))
			items = append(items, models.OrderItem{
				MedicineID:     item.MedicineID,
				Quantity:       item.Quantity,
				Price:          medicine.Price,
				PrescriptionID: item.PrescriptionID,
			})
		}

		order = &models.Order{
			UserID:          userID,
			DeliveryAddress: deliveryAddress,
			TotalAmount:     total.Round(2).InexactFloat64(),
			Status:          models.OrderPending,
			Items:           items,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := tx.Deliveries().CreateTracking(ctx, &models.DeliveryTracking{
			OrderID:       order.ID,
			CurrentStatus: models.OrderPending,
			LastUpdated:   s.now(),
		}); err != nil {
			return err
		}
		return tx.Carts().Delete(ctx, cart.ID)
	})
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues(checkoutFailureReason(err)).Inc()
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	log.Info().Str("order_id", order.ID).Str("user_id", userID).Float64("total", order.TotalAmount).Msg("Order placed")
	publish(s.events, EventOrderCreated, OrderEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  order.CreatedAt,
	})

	orders := []models.Order{*order}
	attachMedicineDetails(orders, medicines)
	return &orders[0], nil
}

// checkoutLine applies the cart rules plus the catalog's availability flag.
// Any failure is reported as the medicine being unavailable.
func checkoutLine(userID string, item models.CartItem, medicines map[uint]models.Medicine, prescriptions map[uint]models.Prescription) (*models.Medicine, error) {
	medicine, ok := medicines[item.MedicineID]
	if !ok {
		return nil, apperrors.ItemUnavailable(item.MedicineID, "not found")
	}
	if !medicine.IsAvailable {
		return nil, apperrors.ItemUnavailable(item.MedicineID, "disabled")
	}
	switch verdict, reason := ClassifyCartItem(userID, item, medicines, prescriptions); verdict {
	case ItemNeedsPrescription:
		return nil, apperrors.ItemUnavailable(item.MedicineID, "prescription required")
	case ItemInvalid:
		return nil, apperrors.ItemUnavailable(item.MedicineID, reason)
	}
	return &medicine, nil
}

func checkoutFailureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrEmptyCart):
		return metrics.ReasonEmptyCart
	case errors.Is(err, apperrors.ErrUnavailable):
		return metrics.ReasonUnavailable
	default:
		return metrics.ReasonError
	}
}

// UpdateStatus moves an order along its lifecycle. The order and its
// tracking row change together; cancelling returns the stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("invalid order status: %s", status))
	}

	var order *models.Order
	var previous models.OrderStatus
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		order, err = tx.Orders().LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		previous = order.Status
		if !previous.CanTransitionTo(status) {
			return apperrors.Conflict(fmt.Sprintf("cannot change order status from %s to %s", previous, status))
		}

		if err := tx.Orders().UpdateStatus(ctx, orderID, status); err != nil {
			return err
		}
		if err := tx.Deliveries().UpdateTrackingStatus(ctx, orderID, status, s.now()); err != nil {
			return err
		}
		if status == models.OrderCancelled {
			for _, item := range order.Items {
				if err := tx.Medicines().RestoreStock(ctx, item.MedicineID, item.Quantity); err != nil {
					return err
				}
			}
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTracking(ctx, orderID)
	metrics.OrderTransitions.WithLabelValues(string(status)).Inc()
	log.Info().Str("order_id", orderID).Str("from", string(previous)).Str("to", string(status)).Msg("Order status updated")
	publish(s.events, EventOrderStatusChanged, OrderEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         status,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount,
		OccurredAt:     s.now(),
	})
	s.notify(order.UserID, "Order Update", fmt.Sprintf("Your order #%s status: %s", order.ID, status))

	if err := s.withMedicineDetails(ctx, []models.Order{*order}); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Failed to resolve medicine names")
	}
	return order, nil
}

// RecordDeliveryProof stores how the order was handed over, replacing any
// earlier proof. The order status is left as it is.
func (s *OrderService) RecordDeliveryProof(ctx context.Context, orderID string, imageURL, signature *string) (*models.DeliveryProof, error) {
	if isBlank(imageURL) && isBlank(signature) {
		return nil, apperrors.Validation("an image or a signature is required")
	}

	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	proof := &models.DeliveryProof{
		OrderID:     order.ID,
		ImageURL:    imageURL,
		Signature:   signature,
		DeliveredAt: s.now(),
	}
	if err := s.store.Deliveries().UpsertProof(ctx, proof); err != nil {
		return nil, err
	}

	s.notify(order.UserID, "Order Delivered", fmt.Sprintf("Your order #%s has been delivered.", order.ID))
	return proof, nil
}

// GetOrder returns one of the user's orders.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("order", orderID)
	}
	orders := []models.Order{*order}
	if err := s.withMedicineDetails(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.withMedicineDetails(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Track returns the delivery tracking row of an order, served from the
// cache when one is configured.
func (s *OrderService) Track(ctx context.Context, orderID string) (*models.DeliveryTracking, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, orderID)
		if err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("Tracking cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	tracking, err := s.store.Deliveries().GetTracking(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tracking); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("Tracking cache write failed")
		}
	}
	return tracking, nil
}

func (s *OrderService) invalidateTracking(ctx context.Context, orderID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, orderID); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Tracking cache invalidation failed")
	}
}

func (s *OrderService) notify(userID, title, body string) {
	if s.notifier != nil {
		s.notifier.NotifyUser(userID, title, body)
	}
}

// withMedicineDetails resolves the medicine names of all items with a
// single catalog lookup.
func (s *OrderService) withMedicineDetails(ctx context.Context, orders []models.Order) error {
	var ids []uint
	for _, o := range orders {
		for _, item := range o.Items {
			ids = append(ids, item.MedicineID)
		}
	}
	medicines, err := s.store.Medicines().GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	attachMedicineDetails(orders, medicines)
	return nil
}

func attachMedicineDetails(orders []models.Order, medicines map[uint]models.Medicine) {
	for i := range orders {
		for j := range orders[i].Items {
			if m, ok := medicines[orders[i].Items[j].MedicineID]; ok {
				orders[i].Items[j].MedicineName = m.Name
				orders[i].Items[j].MedicineImageURL = m.ImageURL
			}
		}
	}
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
