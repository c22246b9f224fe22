// Package scope enforces the tenant isolation boundary. Every core
// operation passes its principal through here before touching data; no
// entity type bypasses the guard.
package scope

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/pkg/models"
)

// ErrCrossTenantAccess is returned when a principal targets a row owned by
// a different tenant.
var ErrCrossTenantAccess = errors.New("cross-tenant access denied")

// TenantLookup resolves the owning tenant of a row by entity type tag. The
// store satisfies this through its entity table registry, which gives the
// guard one uniform mechanism for every current and future entity type.
type TenantLookup interface {
	EntityTenant(ctx context.Context, entity models.EntityType, id uuid.UUID) (uuid.UUID, error)
}

// Check allows the operation only if the target row's tenant equals the
// principal's tenant.
func Check(p models.Principal, entityTenant uuid.UUID) error {
	if p.TenantID != entityTenant {
		return ErrCrossTenantAccess
	}
	return nil
}

// ForceTenant stamps the principal's tenant onto a new entity, overriding
// whatever the client supplied. Creates can never plant rows in a foreign
// tenant.
func ForceTenant(p models.Principal, tenantID *uuid.UUID) {
	*tenantID = p.TenantID
}

// CheckReference verifies that the referenced row exists and belongs to the
// principal's tenant. Used for every foreign-key field before a write, and
// for polymorphic (entity type, id) pairs, where the secondary lookup stops
// a document from pointing at another tenant's row.
func CheckReference(ctx context.Context, lookup TenantLookup, p models.Principal, entity models.EntityType, id uuid.UUID) error {
	tenantID, err := lookup.EntityTenant(ctx, entity, id)
	if err != nil {
		return fmt.Errorf("resolve %s %s: %w", entity, id, err)
	}
	return Check(p, tenantID)
}
