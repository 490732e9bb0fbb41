package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Match with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrValidation  = errors.New("validation failed")
	ErrEmptyCart   = errors.New("cart is empty")
	ErrConflict    = errors.New("conflict")
)

// NotFound builds an ErrNotFound for the named entity.
func NotFound(entity string, id interface{}) error {
	return fmt.Errorf("%s with ID %v %w", entity, id, ErrNotFound)
}

// Validation builds an ErrValidation carrying reason.
func Validation(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrValidation)
}

// Conflict builds an ErrConflict carrying reason.
func Conflict(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrConflict)
}

// ItemUnavailableError reports that a medicine cannot be committed, either at
// checkout or when opening an emergency request.
type ItemUnavailableError struct {
	MedicineID uint
	Reason     string
}

func (e *ItemUnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("Medicine %d not available", e.MedicineID)
	}
	return fmt.Sprintf("Medicine %d not available: %s", e.MedicineID, e.Reason)
}

// Is makes ItemUnavailableError match ErrUnavailable.
func (e *ItemUnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// ItemUnavailable returns an *ItemUnavailableError.
func ItemUnavailable(medicineID uint, reason string) error {
	return &ItemUnavailableError{MedicineID: medicineID, Reason: reason}
}
