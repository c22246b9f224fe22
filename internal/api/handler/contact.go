package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/api/response"
	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// ContactService defines what the contact handler needs from the core.
type ContactService interface {
	Create(ctx context.Context, p models.Principal, in crm.CreateContactInput) (*models.Contact, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Contact, error)
	List(ctx context.Context, p models.Principal, f store.ContactFilter) ([]*models.Contact, int, error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, in crm.UpdateContactInput) (*models.Contact, error)
	Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// ContactHandler serves the contact endpoints.
type ContactHandler struct {
	svc ContactService
}

func NewContactHandler(svc ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in crm.CreateContactInput
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := h.svc.Create(r.Context(), p, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, c)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "contactID")
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, c)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	page, limit := queryPage(r)
	f := store.ContactFilter{
		CompanyID:         queryUUID(r, "company_id"),
		ActiveCompanyOnly: queryBool(r, "active_company"),
		ActiveOnly:        queryBool(r, "active"),
		Page:              page,
		Limit:             limit,
	}
	contacts, total, err := h.svc.List(r.Context(), p, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Collection(w, contacts, collectionMeta(page, limit, total, len(contacts)))
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "contactID")
	if !ok {
		return
	}
	var in crm.UpdateContactInput
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := h.svc.Update(r.Context(), p, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, c)
}

func (h *ContactHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "contactID")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(r.Context(), p, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}
