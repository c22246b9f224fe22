package middleware

import (
	"context"
	"net/http"

	"github.com/exportdesk/exportdesk/pkg/models"
)

type contextKey string

const principalKey contextKey = "principal"

// SetPrincipal stores the authenticated principal in the context.
func SetPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal retrieves the authenticated principal from the request.
func GetPrincipal(r *http.Request) (models.Principal, bool) {
	p, ok := r.Context().Value(principalKey).(models.Principal)
	return p, ok
}
