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

// ShipmentService defines what the shipment handler needs from the core.
type ShipmentService interface {
	Create(ctx context.Context, p models.Principal, in crm.CreateShipmentInput) (*models.Shipment, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Shipment, error)
	List(ctx context.Context, p models.Principal, f store.ShipmentFilter) ([]*models.Shipment, int, error)
	UpdateTracking(ctx context.Context, p models.Principal, id uuid.UUID, in crm.UpdateShipmentTrackingInput) (*models.Shipment, error)
	Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// ShipmentHandler serves the shipment endpoints.
type ShipmentHandler struct {
	svc ShipmentService
}

func NewShipmentHandler(svc ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{svc: svc}
}

func (h *ShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in crm.CreateShipmentInput
	if !decodeBody(w, r, &in) {
		return
	}
	sh, err := h.svc.Create(r.Context(), p, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, sh)
}

func (h *ShipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "shipmentID")
	if !ok {
		return
	}
	sh, err := h.svc.Get(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, sh)
}

func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	page, limit := queryPage(r)
	f := store.ShipmentFilter{
		OrderID:     queryUUID(r, "order_id"),
		Status:      r.URL.Query().Get("status"),
		Carrier:     r.URL.Query().Get("carrier"),
		OverdueOnly: queryBool(r, "overdue"),
		ActiveOnly:  queryBool(r, "active"),
		Page:        page,
		Limit:       limit,
	}
	shipments, total, err := h.svc.List(r.Context(), p, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Collection(w, shipments, collectionMeta(page, limit, total, len(shipments)))
}

func (h *ShipmentHandler) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "shipmentID")
	if !ok {
		return
	}
	var in crm.UpdateShipmentTrackingInput
	if !decodeBody(w, r, &in) {
		return
	}
	sh, err := h.svc.UpdateTracking(r.Context(), p, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, sh)
}

func (h *ShipmentHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "shipmentID")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(r.Context(), p, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}
