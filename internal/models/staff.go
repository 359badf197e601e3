package models

import (
	"time"

	"github.com/google/uuid"
)

// Staff is an operator account allowed to use the dashboard.
type Staff struct {
	// ID is the local identifier (UUID format).
	ID string

	// Email is unique and used for login.
	Email string

	DisplayName string

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	// BackendID identifies this staff member on the village backend and
	// is sent as recorded_by on every payment.
	BackendID int64

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewStaff creates a Staff with a fresh ID and timestamps.
func NewStaff(email, displayName, passwordHash string, backendID int64) *Staff {
	now := time.Now().Unix()
	return &Staff{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		BackendID:    backendID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
