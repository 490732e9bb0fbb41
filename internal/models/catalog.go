package models

import "time"

// Medicine is the catalog entry the ordering core reads. Stock is only ever
// decremented through a conditional update and never goes below zero.
type Medicine struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	Name                 string    `json:"name" gorm:"type:varchar(255);index" validate:"required,min=2,max=255"`
	Description          string    `json:"description,omitempty"`
	ImageURL             string    `json:"image_url,omitempty"`
	Price                float64   `json:"price" validate:"gte=0"`
	Stock                int       `json:"stock" gorm:"check:stock >= 0" validate:"gte=0"`
	PrescriptionRequired bool      `json:"prescription_required"`
	IsAvailable          bool      `json:"is_available"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Prescription is owned by the prescription verification workflow. The core
// only needs its owner and whether it has been verified.
type Prescription struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);index"`
	ImageURL   string    `json:"image_url,omitempty"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidFor reports whether the prescription may back a cart item of userID.
func (p *Prescription) ValidFor(userID string) bool {
	return p != nil && p.IsVerified && p.UserID == userID
}
