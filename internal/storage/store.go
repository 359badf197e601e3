// Package storage provides abstractions for the dashboard's local data:
// staff accounts and the payment journal. Members and tagihan are never
// stored locally.
package storage

import (
	"context"
	"errors"

	"github.com/krama-desa/iuran/internal/models"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique field is already taken.
var ErrDuplicate = errors.New("already exists")

// Store defines the interface for local persistence.
// This abstraction allows swapping storage backends without changing the
// auth and dashboard layers.
type Store interface {
	// CreateStaff persists a new staff account.
	// Returns ErrDuplicate if the email is taken.
	CreateStaff(ctx context.Context, staff *models.Staff) error

	// GetStaffByEmail returns ErrNotFound if no account matches.
	GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error)

	// GetStaffByID returns ErrNotFound if no account matches.
	GetStaffByID(ctx context.Context, id string) (*models.Staff, error)

	// AppendJournal records a payment submission. The entry's ID and
	// CreatedAt are filled in when empty.
	AppendJournal(ctx context.Context, entry *models.JournalEntry) error

	// ListJournal returns the most recent entries first, at most limit.
	ListJournal(ctx context.Context, limit int) ([]*models.JournalEntry, error)

	// Close releases any resources held by the store.
	Close() error
}
