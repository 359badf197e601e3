package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/krama-desa/iuran/internal/auth"
	"github.com/krama-desa/iuran/internal/models"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Login authenticates a staff member and opens a dashboard session.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	email := strings.TrimSpace(req.Msg.Email)
	s.logger.Info("Login request", "email", email)

	// Validate input
	if email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	// Authenticate staff
	staff, err := s.authenticator.Authenticate(ctx, email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	// Generate JWT token
	token, claims, err := s.jwtManager.Generate(staff)
	if err != nil {
		s.logger.Error("Failed to generate token", "staff_id", staff.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	response := &LoginResponse{
		Token:     token,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Unix(),
		Staff:     toStaff(staff),
	}

	s.logger.Info("Staff logged in successfully", "staff_id", staff.ID, "session_id", claims.SessionID)
	return connect.NewResponse(response), nil
}

func toStaff(staff *models.Staff) *Staff {
	return &Staff{
		ID:          staff.ID,
		Email:       staff.Email,
		DisplayName: staff.DisplayName,
		BackendID:   staff.BackendID,
	}
}
