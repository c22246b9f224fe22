// Package crm implements the core business operations: tenant-scoped CRUD
// over companies, contacts, deals, orders, shipments and documents, with referential
// checks and an audit entry written in the same transaction as every
// mutation.
package crm

import (
	"time"

	"github.com/exportdesk/exportdesk/internal/audit"
	"github.com/exportdesk/exportdesk/internal/cache"
	"github.com/exportdesk/exportdesk/internal/store"
)

// Services bundles the per-entity services over one store and one audit
// recorder.
type Services struct {
	Tenants   *TenantService
	Users     *UserService
	Companies *CompanyService
	Contacts  *ContactService
	Deals     *DealService
	Orders    *OrderService
	Shipments *ShipmentService
	Documents *DocumentService
	Audit     *AuditService
}

// NewServices wires all entity services.
func NewServices(st store.Store, rec *audit.Recorder, ca cache.Cache) *Services {
	return NewServicesAt(st, rec, ca, func() time.Time { return time.Now().UTC() })
}

// NewServicesAt wires the services with a fixed clock, for tests.
func NewServicesAt(st store.Store, rec *audit.Recorder, ca cache.Cache, now func() time.Time) *Services {
	return &Services{
		Tenants:   &TenantService{store: st, audit: rec, cache: ca, now: now},
		Users:     &UserService{store: st, audit: rec, now: now},
		Companies: &CompanyService{store: st, audit: rec, now: now},
		Contacts:  &ContactService{store: st, audit: rec, now: now},
		Deals:     &DealService{store: st, audit: rec, now: now},
		Orders:    &OrderService{store: st, audit: rec, now: now},
		Shipments: &ShipmentService{store: st, audit: rec, now: now},
		Documents: &DocumentService{store: st, audit: rec, now: now},
		Audit:     &AuditService{store: st},
	}
}
