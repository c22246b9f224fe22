package crm

import (
	"context"

	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// AuditService exposes the change trail read-only. Entries are written by
// the recorder inside mutation transactions; nothing here can modify them.
type AuditService struct {
	store store.Store
}

// List returns the principal's tenant trail in chronological order.
func (s *AuditService) List(ctx context.Context, p models.Principal, f store.AuditFilter) ([]*models.AuditLogEntry, int, error) {
	f.TenantID = p.TenantID
	return s.store.ListAuditEntries(ctx, f)
}
