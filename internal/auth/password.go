package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/krama-desa/iuran/internal/models"
	"github.com/krama-desa/iuran/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidBackendID   = errors.New("backend staff id must be positive")
)

// StaffStorage defines the persistence the authenticator needs.
type StaffStorage interface {
	CreateStaff(ctx context.Context, staff *models.Staff) error
	GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage StaffStorage
	cost    int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage StaffStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new staff account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string, backendID int64) (*models.Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if backendID <= 0 {
		return nil, ErrInvalidBackendID
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	_, err := a.storage.GetStaffByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	staff := models.NewStaff(email, displayName, string(hashedPassword), backendID)
	if err := a.storage.CreateStaff(ctx, staff); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}

	return staff, nil
}

// Authenticate verifies the email and password, returning the staff account if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.Staff, error) {
	staff, err := a.storage.GetStaffByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return staff, nil
}
