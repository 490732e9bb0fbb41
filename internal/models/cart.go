package models

import "time"

// Cart is the single live basket of a user; UserID is unique.
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one medicine line of a cart. PrescriptionRequired is copied
// from the medicine when the item is added.
type CartItem struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	CartID               uint      `json:"cart_id" gorm:"index;not null"`
	MedicineID           uint      `json:"medicine_id" gorm:"not null"`
	Quantity             int       `json:"quantity" gorm:"not null;check:quantity >= 1"`
	PrescriptionRequired bool      `json:"prescription_required"`
	PrescriptionID       *uint     `json:"prescription_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
