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

// UserService defines what the user handler needs from the core.
type UserService interface {
	Create(ctx context.Context, p models.Principal, in crm.CreateUserInput) (*models.User, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, p models.Principal, f store.UserFilter) ([]*models.User, int, error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, in crm.UpdateUserInput) (*models.User, error)
	Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// UserHandler serves the user account endpoints.
type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in crm.CreateUserInput
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := h.svc.Create(r.Context(), p, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, u)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	u, err := h.svc.Get(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, u)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	page, limit := queryPage(r)
	f := store.UserFilter{
		Role:       r.URL.Query().Get("role"),
		ActiveOnly: queryBool(r, "active"),
		Page:       page,
		Limit:      limit,
	}
	users, total, err := h.svc.List(r.Context(), p, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Collection(w, users, collectionMeta(page, limit, total, len(users)))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var in crm.UpdateUserInput
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := h.svc.Update(r.Context(), p, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, u)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(r.Context(), p, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}
