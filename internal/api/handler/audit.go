package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/exportdesk/exportdesk/internal/api/response"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// AuditService defines what the audit handler needs from the core.
type AuditService interface {
	List(ctx context.Context, p models.Principal, f store.AuditFilter) ([]*models.AuditLogEntry, int, error)
}

// AuditHandler serves the read-only change trail.
type AuditHandler struct {
	svc AuditService
}

func NewAuditHandler(svc AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// List handles GET /api/v1/audit. Entries come back in chronological order
// and can be narrowed by entity, actor or time window.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	page, limit := queryPage(r)
	f := store.AuditFilter{
		EntityType: models.EntityType(r.URL.Query().Get("entity_type")),
		EntityID:   queryUUID(r, "entity_id"),
		ActorID:    queryUUID(r, "actor_id"),
		Page:       page,
		Limit:      limit,
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"from must be a valid RFC3339 timestamp", nil)
			return
		}
		f.From = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"to must be a valid RFC3339 timestamp", nil)
			return
		}
		f.To = t
	}

	entries, total, err := h.svc.List(r.Context(), p, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Collection(w, entries, collectionMeta(page, limit, total, len(entries)))
}
