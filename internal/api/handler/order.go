package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/api/response"
	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// OrderService defines what the order handler needs from the core.
type OrderService interface {
	Create(ctx context.Context, p models.Principal, in crm.CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, p models.Principal, number string) (*models.Order, error)
	List(ctx context.Context, p models.Principal, f store.OrderFilter) ([]*models.Order, int, error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, in crm.UpdateOrderInput) (*models.Order, error)
	Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// OrderHandler serves the export order endpoints.
type OrderHandler struct {
	svc OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in crm.CreateOrderInput
	if !decodeBody(w, r, &in) {
		return
	}
	o, err := h.svc.Create(r.Context(), p, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, o)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	// /orders/{orderID} also accepts an order number for lookups from
	// shipping paperwork.
	key := chi.URLParam(r, "orderID")
	if id, err := uuid.Parse(key); err == nil {
		o, err := h.svc.Get(r.Context(), p, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, o)
		return
	}

	o, err := h.svc.GetByNumber(r.Context(), p, key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, o)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	page, limit := queryPage(r)
	f := store.OrderFilter{
		CompanyID:  queryUUID(r, "company_id"),
		Status:     r.URL.Query().Get("status"),
		ActiveOnly: queryBool(r, "active"),
		Page:       page,
		Limit:      limit,
	}
	orders, total, err := h.svc.List(r.Context(), p, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Collection(w, orders, collectionMeta(page, limit, total, len(orders)))
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	var in crm.UpdateOrderInput
	if !decodeBody(w, r, &in) {
		return
	}
	o, err := h.svc.Update(r.Context(), p, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, o)
}

func (h *OrderHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(r.Context(), p, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}
