package auth

import (
	"context"

	"github.com/krama-desa/iuran/internal/models"
)

// Authenticator defines the interface for staff authentication.
// This abstraction allows swapping password login for another method
// without changing the web and RPC layers.
type Authenticator interface {
	// Register creates a new staff account. backendID is the staff
	// identifier known to the village backend.
	Register(ctx context.Context, email, displayName, credential string, backendID int64) (*models.Staff, error)

	// Authenticate verifies the credentials and returns the staff account.
	Authenticate(ctx context.Context, email, credential string) (*models.Staff, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
