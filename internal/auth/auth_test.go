package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/krama-desa/iuran/internal/models"
	"github.com/krama-desa/iuran/internal/storage"
)

type memoryStaff struct {
	mu      sync.Mutex
	byEmail map[string]*models.Staff
}

func (m *memoryStaff) CreateStaff(ctx context.Context, staff *models.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[staff.Email]; ok {
		return storage.ErrDuplicate
	}
	m.byEmail[staff.Email] = staff
	return nil
}

func (m *memoryStaff) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	staff, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return staff, nil
}

func newTestAuthenticator() *PasswordAuthenticator {
	a := NewPasswordAuthenticator(&memoryStaff{byEmail: make(map[string]*models.Staff)})
	a.cost = bcrypt.MinCost
	return a
}

func TestPasswordAuthenticator(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	staff, err := a.Register(ctx, " Kelian@Desa.id ", "Kelian Adat", "rahasia123", 2)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if staff.Email != "kelian@desa.id" {
		t.Errorf("email should be normalized, got %q", staff.Email)
	}
	if staff.PasswordHash == "rahasia123" {
		t.Error("password must be hashed")
	}

	if _, err := a.Register(ctx, "kelian@desa.id", "Lagi", "rahasia123", 2); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
	if _, err := a.Register(ctx, "baru@desa.id", "Baru", "pendek", 2); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := a.Register(ctx, "baru@desa.id", "Baru", "rahasia123", 0); !errors.Is(err, ErrInvalidBackendID) {
		t.Errorf("expected ErrInvalidBackendID, got %v", err)
	}

	got, err := a.Authenticate(ctx, "KELIAN@desa.id", "rahasia123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != staff.ID {
		t.Errorf("authenticated wrong staff: %s", got.ID)
	}

	if _, err := a.Authenticate(ctx, "kelian@desa.id", "salah-sandi"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@desa.id", "rahasia123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)
	staff := models.NewStaff("kelian@desa.id", "Kelian Adat", "hash", 2)

	token, issued, err := m.Generate(staff)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if issued.SessionID == "" {
		t.Fatal("expected a session ID")
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.StaffID != staff.ID || claims.BackendID != 2 || claims.SessionID != issued.SessionID {
		t.Errorf("claims mismatch: %+v", claims)
	}

	_, second, err := m.Generate(staff)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if second.SessionID == issued.SessionID {
		t.Error("each login must open a new session")
	}

	other := NewJWTManager("another-secret-another-secret!!", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	expired := NewJWTManager("0123456789abcdef0123456789abcdef", -time.Minute)
	old, _, err := expired.Generate(staff)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(old); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
