package models

import "time"

// Pharmacy is a fulfilment location.
type Pharmacy struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PartnerStatus is the working state of a delivery partner.
type PartnerStatus string

const (
	PartnerAvailable  PartnerStatus = "available"
	PartnerOnDelivery PartnerStatus = "on_delivery"
	PartnerOffline    PartnerStatus = "offline"
)

// DeliveryPartner is a courier that can be matched to a pharmacy.
type DeliveryPartner struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	Name           string        `json:"name"`
	Phone          string        `json:"phone,omitempty"`
	Latitude       *float64      `json:"latitude"`
	Longitude      *float64      `json:"longitude"`
	IsAvailable    bool          `json:"is_available"`
	Status         PartnerStatus `json:"status" gorm:"type:varchar(20);default:available"`
	CurrentOrderID *string       `json:"current_order_id,omitempty" gorm:"type:varchar(36)"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
