package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/krama-desa/iuran/internal/models"
	"github.com/krama-desa/iuran/internal/storage"
)

const staffColumns = `id, email, display_name, password_hash, backend_id, created_at, updated_at`

// CreateStaff inserts a new staff account.
func (s *SQLiteStore) CreateStaff(ctx context.Context, staff *models.Staff) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO staff (`+staffColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		staff.ID,
		strings.ToLower(staff.Email),
		staff.DisplayName,
		staff.PasswordHash,
		staff.BackendID,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("staff %s: %w", staff.Email, storage.ErrDuplicate)
		}
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

// GetStaffByEmail retrieves a staff account by email, case-insensitively.
func (s *SQLiteStore) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE email = ?`,
		strings.ToLower(email),
	)
	staff, err := scanStaff(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff by email: %w", err)
	}
	return staff, nil
}

// GetStaffByID retrieves a staff account by ID.
func (s *SQLiteStore) GetStaffByID(ctx context.Context, id string) (*models.Staff, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = ?`, id)
	staff, err := scanStaff(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff by ID: %w", err)
	}
	return staff, nil
}

func scanStaff(row *sql.Row) (*models.Staff, error) {
	staff := &models.Staff{}
	err := row.Scan(
		&staff.ID,
		&staff.Email,
		&staff.DisplayName,
		&staff.PasswordHash,
		&staff.BackendID,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return staff, nil
}
