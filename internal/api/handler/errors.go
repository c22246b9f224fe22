package handler

import (
	"errors"
	"net/http"

	mw "github.com/exportdesk/exportdesk/internal/api/middleware"
	"github.com/exportdesk/exportdesk/internal/api/response"
	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/internal/scope"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// writeServiceError maps core errors onto HTTP statuses. A row in another
// tenant surfaces as 404 through the store, so only explicit reference
// checks produce 403 here.
func writeServiceError(w http.ResponseWriter, err error) {
	var validation *crm.ValidationError
	var referential *crm.ReferentialIntegrityError

	switch {
	case errors.As(err, &validation):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
			validation.Error(), map[string]string{"field": validation.Field})
	case errors.Is(err, scope.ErrCrossTenantAccess):
		response.Error(w, http.StatusForbidden, "CROSS_TENANT_ACCESS",
			"The referenced resource belongs to another tenant", nil)
	case errors.As(err, &referential):
		response.Error(w, http.StatusConflict, "REFERENTIAL_INTEGRITY",
			referential.Error(), map[string]string{"constraint": referential.Constraint})
	case errors.Is(err, store.ErrDuplicateSlug):
		response.Error(w, http.StatusConflict, "DUPLICATE_SLUG",
			"A tenant with this slug already exists", nil)
	case errors.Is(err, store.ErrDuplicateKey):
		response.Error(w, http.StatusConflict, "DUPLICATE_KEY",
			"A resource with these unique fields already exists", nil)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND",
			"The requested resource does not exist", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

// requirePrincipal pulls the authenticated principal or writes a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := mw.GetPrincipal(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing principal", nil)
		return models.Principal{}, false
	}
	return p, true
}
