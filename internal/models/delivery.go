package models

import "time"

// DeliveryTracking mirrors the status of its order (one per order).
type DeliveryTracking struct {
	ID               uint        `json:"-" gorm:"primaryKey"`
	OrderID          string      `json:"order_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	CurrentStatus    OrderStatus `json:"current_status" gorm:"type:varchar(20)"`
	CurrentLatitude  *float64    `json:"current_latitude"`
	CurrentLongitude *float64    `json:"current_longitude"`
	LastUpdated      time.Time   `json:"last_updated"`
}

// DeliveryProof records how an order was handed over (one per order).
type DeliveryProof struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	OrderID     string    `json:"order_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	ImageURL    *string   `json:"image_url"`
	Signature   *string   `json:"signature"`
	DeliveredAt time.Time `json:"delivered_at"`
}
