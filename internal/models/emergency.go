package models

import "time"

// Urgency tiers of an emergency request.
type Urgency string

const (
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// EmergencyStatus is the lifecycle state of an emergency request.
type EmergencyStatus string

const (
	EmergencyPending   EmergencyStatus = "pending"
	EmergencyAssigned  EmergencyStatus = "assigned"
	EmergencyCompleted EmergencyStatus = "completed"
	EmergencyCancelled EmergencyStatus = "cancelled"
)

var emergencyTransitions = map[EmergencyStatus][]EmergencyStatus{
	EmergencyPending:  {EmergencyAssigned, EmergencyCancelled},
	EmergencyAssigned: {EmergencyCompleted, EmergencyCancelled},
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s EmergencyStatus) CanTransitionTo(next EmergencyStatus) bool {
	for _, allowed := range emergencyTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// EmergencyDeliveryRequest is a single-item urgent dispatch record. It does
// not commit stock.
type EmergencyDeliveryRequest struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string          `json:"user_id" gorm:"type:varchar(36);index;not null"`
	MedicineID        uint            `json:"medicine_id"`
	Urgency           Urgency         `json:"urgency" gorm:"type:varchar(20)"`
	Status            EmergencyStatus `json:"status" gorm:"type:varchar(20)"`
	DeliveryPartnerID *uint           `json:"delivery_partner_id"`
	PharmacyID        *uint           `json:"pharmacy_id"`
	DeliveryAddress   string          `json:"delivery_address" gorm:"not null"`
	DynamicPrice      float64         `json:"dynamic_price"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
