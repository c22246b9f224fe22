package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/exportdesk/exportdesk/internal/api/response"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// LoginService defines what the login handler needs from the core.
type LoginService interface {
	TenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	UserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
	RecordLogin(ctx context.Context, u *models.User) error
}

// TokenIssuer signs an access token for an authenticated user.
type TokenIssuer interface {
	IssueToken(u *models.User) (string, error)
}

// NewLoginHandler returns an http.HandlerFunc for POST /api/v1/auth/login.
// Every failure mode returns the same 401 so valid emails cannot be enumerated.
func NewLoginHandler(svc LoginService, issuer TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Tenant   string `json:"tenant"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Tenant == "" || req.Email == "" || req.Password == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"tenant, email and password are required", nil)
			return
		}

		deny := func() {
			response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS",
				"Invalid tenant, email or password", nil)
		}

		t, err := svc.TenantBySlug(r.Context(), req.Tenant)
		if err != nil || !t.IsActive {
			deny()
			return
		}
		u, err := svc.UserByEmail(r.Context(), t.ID, req.Email)
		if err != nil || !u.IsActive {
			deny()
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			deny()
			return
		}

		token, err := issuer.IssueToken(u)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		_ = svc.RecordLogin(r.Context(), u)

		response.JSON(w, map[string]any{
			"token": token,
			"user":  u,
		})
	}
}
