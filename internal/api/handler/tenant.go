package handler

import (
	"context"
	"net/http"

	"github.com/exportdesk/exportdesk/internal/api/response"
	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// TenantService defines what the tenant handler needs from the core.
type TenantService interface {
	Onboard(ctx context.Context, in crm.OnboardTenantInput) (*models.Tenant, *models.User, error)
	Get(ctx context.Context, p models.Principal) (*models.Tenant, error)
	Update(ctx context.Context, p models.Principal, in crm.UpdateTenantInput) (*models.Tenant, error)
	Deactivate(ctx context.Context, p models.Principal) error
}

// TenantHandler serves the tenant registry endpoints.
type TenantHandler struct {
	svc TenantService
}

func NewTenantHandler(svc TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

// Onboard handles POST /api/v1/tenants. It is the only unauthenticated write:
// a new organization signs up with its first admin account.
func (h *TenantHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var in crm.OnboardTenantInput
	if !decodeBody(w, r, &in) {
		return
	}
	t, u, err := h.svc.Onboard(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, map[string]any{
		"tenant": t,
		"admin":  u,
	})
}

// GetCurrent handles GET /api/v1/tenant.
func (h *TenantHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Get(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, t)
}

// Update handles PUT /api/v1/tenant.
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in crm.UpdateTenantInput
	if !decodeBody(w, r, &in) {
		return
	}
	t, err := h.svc.Update(r.Context(), p, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, t)
}

// Deactivate handles DELETE /api/v1/tenant.
func (h *TenantHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Deactivate(r.Context(), p); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}
