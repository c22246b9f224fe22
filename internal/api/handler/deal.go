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

// DealService defines what the deal handler needs from the core.
type DealService interface {
	Create(ctx context.Context, p models.Principal, in crm.CreateDealInput) (*models.Deal, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Deal, error)
	List(ctx context.Context, p models.Principal, f store.DealFilter) ([]*models.Deal, int, error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, in crm.UpdateDealInput) (*models.Deal, error)
	Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error

	AddActivity(ctx context.Context, p models.Principal, dealID uuid.UUID, in crm.AddActivityInput) (*models.Activity, error)
	ListActivities(ctx context.Context, p models.Principal, dealID uuid.UUID) ([]*models.Activity, error)
}

// DealHandler serves deal and activity endpoints.
type DealHandler struct {
	svc DealService
}

func NewDealHandler(svc DealService) *DealHandler {
	return &DealHandler{svc: svc}
}

func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in crm.CreateDealInput
	if !decodeBody(w, r, &in) {
		return
	}
	d, err := h.svc.Create(r.Context(), p, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, d)
}

func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "dealID")
	if !ok {
		return
	}
	d, err := h.svc.Get(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, d)
}

func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	page, limit := queryPage(r)
	f := store.DealFilter{
		CompanyID:         queryUUID(r, "company_id"),
		Stage:             r.URL.Query().Get("stage"),
		ActiveCompanyOnly: queryBool(r, "active_company"),
		ActiveOnly:        queryBool(r, "active"),
		Page:              page,
		Limit:             limit,
	}
	deals, total, err := h.svc.List(r.Context(), p, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Collection(w, deals, collectionMeta(page, limit, total, len(deals)))
}

func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "dealID")
	if !ok {
		return
	}
	var in crm.UpdateDealInput
	if !decodeBody(w, r, &in) {
		return
	}
	d, err := h.svc.Update(r.Context(), p, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, d)
}

func (h *DealHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "dealID")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(r.Context(), p, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *DealHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	dealID, ok := pathID(w, r, "dealID")
	if !ok {
		return
	}
	var in crm.AddActivityInput
	if !decodeBody(w, r, &in) {
		return
	}
	a, err := h.svc.AddActivity(r.Context(), p, dealID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, a)
}

func (h *DealHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	dealID, ok := pathID(w, r, "dealID")
	if !ok {
		return
	}
	activities, err := h.svc.ListActivities(r.Context(), p, dealID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, activities)
}
