package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/api/response"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Roles    []string  `json:"roles"`
	jwt.RegisteredClaims
}

// Auth provides JWT authentication and role-checking middleware.
type Auth struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewAuth creates a new Auth middleware with an HS256 signing secret.
func NewAuth(secret string, tokenTTL time.Duration) *Auth {
	return &Auth{secret: []byte(secret), tokenTTL: tokenTTL}
}

// IssueToken signs a token for the user. Called by the login handler.
func (a *Auth) IssueToken(u *models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   u.ID,
		TenantID: u.TenantID,
		Roles:    u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Authenticate validates the Bearer token and sets the principal in the
// request context. The principal's tenant comes from the signed claims, never
// from a header or body field the client controls.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearerToken(r)
		if raw == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid or expired token", nil)
			return
		}
		if claims.UserID == uuid.Nil || claims.TenantID == uuid.Nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Token is missing identity claims", nil)
			return
		}

		p := models.Principal{
			UserID:   claims.UserID,
			TenantID: claims.TenantID,
			Roles:    claims.Roles,
		}
		next.ServeHTTP(w, r.WithContext(SetPrincipal(r.Context(), p)))
	})
}

// RequireRole returns middleware that checks whether the principal carries
// the named role.
func (a *Auth) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r)
			if !ok || !p.HasRole(role) {
				response.Error(w, http.StatusForbidden,
					"FORBIDDEN", "Insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
