package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderDispatched OrderStatus = "dispatched"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderDispatched, OrderCancelled},
	OrderDispatched: {OrderDelivered, OrderCancelled},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderDispatched, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is an immutable snapshot of a cart line at checkout.
type OrderItem struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	OrderID          string    `json:"order_id" gorm:"type:varchar(36);index;not null"`
	MedicineID       uint      `json:"medicine_id"`
	MedicineName     string    `json:"medicine_name,omitempty" gorm:"-"`
	MedicineImageURL string    `json:"medicine_image_url,omitempty" gorm:"-"`
	Quantity         int       `json:"quantity"`
	Price            float64   `json:"price"` // unit price at order time
	PrescriptionID   *uint     `json:"prescription_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Order represents a placed customer order.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string      `json:"user_id" gorm:"type:varchar(36);index;not null"`
	DeliveryAddress string      `json:"delivery_address" gorm:"not null"`
	TotalAmount     float64     `json:"total_amount"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
