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

// DocumentService defines what the document handler needs from the core.
type DocumentService interface {
	Create(ctx context.Context, p models.Principal, in crm.CreateDocumentInput) (*models.Document, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, p models.Principal, f store.DocumentFilter) ([]*models.Document, int, error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, in crm.UpdateDocumentInput) (*models.Document, error)
	Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// DocumentHandler serves the document metadata endpoints.
type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in crm.CreateDocumentInput
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

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "documentID")
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

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	page, limit := queryPage(r)
	f := store.DocumentFilter{
		EntityType: models.EntityType(r.URL.Query().Get("entity_type")),
		EntityID:   queryUUID(r, "entity_id"),
		ActiveOnly: queryBool(r, "active"),
		Page:       page,
		Limit:      limit,
	}
	docs, total, err := h.svc.List(r.Context(), p, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Collection(w, docs, collectionMeta(page, limit, total, len(docs)))
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}
	var in crm.UpdateDocumentInput
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

func (h *DocumentHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(r.Context(), p, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}
