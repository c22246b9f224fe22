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

// CompanyService defines what the company handler needs from the core.
type CompanyService interface {
	Create(ctx context.Context, p models.Principal, in crm.CreateCompanyInput) (*models.Company, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context, p models.Principal, f store.CompanyFilter) ([]*models.Company, int, error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, in crm.UpdateCompanyInput) (*models.Company, error)
	Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error

	AddAddress(ctx context.Context, p models.Principal, companyID uuid.UUID, in crm.CreateAddressInput) (*models.Address, error)
	ListAddresses(ctx context.Context, p models.Principal, companyID uuid.UUID) ([]*models.Address, error)
	UpdateAddress(ctx context.Context, p models.Principal, id uuid.UUID, in crm.UpdateAddressInput) (*models.Address, error)
	DeactivateAddress(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// CompanyHandler serves company and address endpoints.
type CompanyHandler struct {
	svc CompanyService
}

func NewCompanyHandler(svc CompanyService) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in crm.CreateCompanyInput
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

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "companyID")
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

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	page, limit := queryPage(r)
	f := store.CompanyFilter{
		Status:     r.URL.Query().Get("status"),
		Industry:   r.URL.Query().Get("industry"),
		AssignedTo: queryUUID(r, "assigned_to"),
		ActiveOnly: queryBool(r, "active"),
		Page:       page,
		Limit:      limit,
	}
	companies, total, err := h.svc.List(r.Context(), p, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Collection(w, companies, collectionMeta(page, limit, total, len(companies)))
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "companyID")
	if !ok {
		return
	}
	var in crm.UpdateCompanyInput
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

func (h *CompanyHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "companyID")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(r.Context(), p, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *CompanyHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	companyID, ok := pathID(w, r, "companyID")
	if !ok {
		return
	}
	var in crm.CreateAddressInput
	if !decodeBody(w, r, &in) {
		return
	}
	a, err := h.svc.AddAddress(r.Context(), p, companyID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, a)
}

func (h *CompanyHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	companyID, ok := pathID(w, r, "companyID")
	if !ok {
		return
	}
	addrs, err := h.svc.ListAddresses(r.Context(), p, companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, addrs)
}

func (h *CompanyHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "addressID")
	if !ok {
		return
	}
	var in crm.UpdateAddressInput
	if !decodeBody(w, r, &in) {
		return
	}
	a, err := h.svc.UpdateAddress(r.Context(), p, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, a)
}

func (h *CompanyHandler) DeactivateAddress(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "addressID")
	if !ok {
		return
	}
	if err := h.svc.DeactivateAddress(r.Context(), p, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}
