package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"connectrpc.com/connect"

	"github.com/krama-desa/iuran/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClaimsKey is the context key for the authenticated session's claims.
const ClaimsKey contextKey = "claims"

// SessionCookie holds the session token of browser clients.
const SessionCookie = "iuran_session"

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetClaims extracts the session claims from the context.
// Returns nil if the request is not authenticated.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims
}

// GetStaffID extracts the staff ID from the context.
// Returns empty string if not found.
func GetStaffID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.StaffID
	}
	return ""
}

// bearerToken parses an "Authorization: Bearer <token>" header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAuth returns an interceptor that validates JWT tokens and requires
// authentication. The claims are added to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			tokenString, err := bearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithClaims(ctx, claims), req)
		}
	}
}

// RequireSession is the browser counterpart of RequireAuth: it reads the
// token from the session cookie and redirects to loginPath when the cookie
// is missing or no longer valid.
func RequireSession(jwtManager *auth.JWTManager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			claims, err := jwtManager.Validate(cookie.Value)
			if err != nil {
				ClearSessionCookie(w)
				http.Redirect(w, r, loginPath+"?expired=1", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// SetSessionCookie stores token in the session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, claims *auth.Claims) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if claims != nil && claims.ExpiresAt != nil {
		c.Expires = claims.ExpiresAt.Time
	}
	http.SetCookie(w, c)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SafeRedirect returns target when it is a local path, otherwise fallback.
func SafeRedirect(target, fallback string) string {
	u, err := url.Parse(target)
	if err != nil || target == "" || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	return target
}
