package models

import "time"

// User represents a customer of the platform.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username    string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email       string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password    string    `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	Phone       *string   `json:"phone,omitempty" gorm:"type:varchar(32)"`
	DeviceToken *string   `json:"device_token,omitempty" gorm:"type:varchar(255)"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserPatch lists the profile fields a user may change. Nil fields are left
// untouched.
type UserPatch struct {
	Phone       *string  `json:"phone" validate:"omitempty,min=5,max=32"`
	DeviceToken *string  `json:"device_token" validate:"omitempty,max=255"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// Apply copies the set fields of p onto u and reports which columns changed.
func (p UserPatch) Apply(u *User) []string {
	var changed []string
	if p.Phone != nil {
		u.Phone = p.Phone
		changed = append(changed, "phone")
	}
	if p.DeviceToken != nil {
		u.DeviceToken = p.DeviceToken
		changed = append(changed, "device_token")
	}
	if p.Latitude != nil {
		u.Latitude = p.Latitude
		changed = append(changed, "latitude")
	}
	if p.Longitude != nil {
		u.Longitude = p.Longitude
		changed = append(changed, "longitude")
	}
	return changed
}
