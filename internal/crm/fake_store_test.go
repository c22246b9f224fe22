package crm_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// fakeStore is an in-memory store.Store with real transaction semantics:
// Tx snapshots all state and restores it when fn fails, so rollback
// behavior can be asserted without a database. failAudit forces
// CreateAuditEntry to fail, to prove mutations roll back with their trail.
type fakeStore struct {
	mu sync.Mutex

	tenants       map[uuid.UUID]*models.Tenant
	users         map[uuid.UUID]*models.User
	companies     map[uuid.UUID]*models.Company
	addresses     map[uuid.UUID]*models.Address
	contacts      map[uuid.UUID]*models.Contact
	deals         map[uuid.UUID]*models.Deal
	activities    map[uuid.UUID]*models.Activity
	orders        map[uuid.UUID]*models.Order
	orderItems    map[uuid.UUID]*models.OrderItem
	shipments     map[uuid.UUID]*models.Shipment
	shipmentItems map[uuid.UUID]*models.ShipmentItem
	documents     map[uuid.UUID]*models.Document
	audit         []*models.AuditLogEntry

	failAudit bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenants:       map[uuid.UUID]*models.Tenant{},
		users:         map[uuid.UUID]*models.User{},
		companies:     map[uuid.UUID]*models.Company{},
		addresses:     map[uuid.UUID]*models.Address{},
		contacts:      map[uuid.UUID]*models.Contact{},
		deals:         map[uuid.UUID]*models.Deal{},
		activities:    map[uuid.UUID]*models.Activity{},
		orders:        map[uuid.UUID]*models.Order{},
		orderItems:    map[uuid.UUID]*models.OrderItem{},
		shipments:     map[uuid.UUID]*models.Shipment{},
		shipmentItems: map[uuid.UUID]*models.ShipmentItem{},
		documents:     map[uuid.UUID]*models.Document{},
	}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func cloneMap[V any](m map[uuid.UUID]*V) map[uuid.UUID]*V {
	out := make(map[uuid.UUID]*V, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func (f *fakeStore) Tx(_ context.Context, fn func(store.Store) error) error {
	f.mu.Lock()
	snap := &fakeStore{
		tenants:       cloneMap(f.tenants),
		users:         cloneMap(f.users),
		companies:     cloneMap(f.companies),
		addresses:     cloneMap(f.addresses),
		contacts:      cloneMap(f.contacts),
		deals:         cloneMap(f.deals),
		activities:    cloneMap(f.activities),
		orders:        cloneMap(f.orders),
		orderItems:    cloneMap(f.orderItems),
		shipments:     cloneMap(f.shipments),
		shipmentItems: cloneMap(f.shipmentItems),
		documents:     cloneMap(f.documents),
		audit:         append([]*models.AuditLogEntry(nil), f.audit...),
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.tenants, f.users, f.companies = snap.tenants, snap.users, snap.companies
		f.addresses, f.contacts, f.deals = snap.addresses, snap.contacts, snap.deals
		f.activities, f.orders, f.orderItems = snap.activities, snap.orders, snap.orderItems
		f.shipments, f.shipmentItems = snap.shipments, snap.shipmentItems
		f.documents, f.audit = snap.documents, snap.audit
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) EntityTenant(_ context.Context, entity models.EntityType, id uuid.UUID) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch entity {
	case models.EntityTenant:
		if _, ok := f.tenants[id]; ok {
			return id, nil
		}
	case models.EntityUser:
		if u, ok := f.users[id]; ok {
			return u.TenantID, nil
		}
	case models.EntityCompany:
		if c, ok := f.companies[id]; ok {
			return c.TenantID, nil
		}
	case models.EntityAddress:
		if a, ok := f.addresses[id]; ok {
			return a.TenantID, nil
		}
	case models.EntityContact:
		if c, ok := f.contacts[id]; ok {
			return c.TenantID, nil
		}
	case models.EntityDeal:
		if d, ok := f.deals[id]; ok {
			return d.TenantID, nil
		}
	case models.EntityActivity:
		if a, ok := f.activities[id]; ok {
			return a.TenantID, nil
		}
	case models.EntityOrder:
		if o, ok := f.orders[id]; ok {
			return o.TenantID, nil
		}
	case models.EntityShipment:
		if sh, ok := f.shipments[id]; ok {
			return sh.TenantID, nil
		}
	case models.EntityDocument:
		if d, ok := f.documents[id]; ok {
			return d.TenantID, nil
		}
	}
	return uuid.Nil, store.ErrNotFound
}

// --- tenants ---

func (f *fakeStore) CreateTenant(_ context.Context, t *models.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.tenants {
		if other.Slug == t.Slug {
			return store.ErrDuplicateSlug
		}
	}
	c := *t
	f.tenants[t.ID] = &c
	return nil
}

func (f *fakeStore) GetTenant(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tenants[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetTenantBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.Slug == slug {
			c := *t
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListTenants(_ context.Context, filter store.TenantFilter) ([]*models.Tenant, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Tenant
	for _, t := range f.tenants {
		if filter.ActiveOnly && !t.IsActive {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateTenant(_ context.Context, t *models.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tenants[t.ID]; !ok {
		return store.ErrNotFound
	}
	c := *t
	f.tenants[t.ID] = &c
	return nil
}

// --- users ---

func (f *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.users {
		if other.TenantID == u.TenantID && other.Email == u.Email {
			return store.ErrDuplicateKey
		}
	}
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id, tenantID uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok && u.TenantID == tenantID {
		c := *u
		return &c, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserByEmail(_ context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.TenantID == tenantID && u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListUsers(_ context.Context, filter store.UserFilter) ([]*models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.users {
		if u.TenantID != filter.TenantID {
			continue
		}
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[u.ID]
	if !ok || existing.TenantID != u.TenantID {
		return store.ErrNotFound
	}
	c := *u
	f.users[u.ID] = &c
	return nil
}

// --- companies ---

func (f *fakeStore) CreateCompany(_ context.Context, c *models.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.companies[c.ID] = &cp
	return nil
}

func (f *fakeStore) GetCompany(_ context.Context, id, tenantID uuid.UUID) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.companies[id]; ok && c.TenantID == tenantID {
		cp := *c
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListCompanies(_ context.Context, filter store.CompanyFilter) ([]*models.Company, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Company
	for _, c := range f.companies {
		if c.TenantID != filter.TenantID {
			continue
		}
		if filter.ActiveOnly && !c.IsActive {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateCompany(_ context.Context, c *models.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.companies[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return store.ErrNotFound
	}
	cp := *c
	f.companies[c.ID] = &cp
	return nil
}

// --- addresses ---

func (f *fakeStore) CreateAddress(_ context.Context, a *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.addresses[a.ID] = &cp
	return nil
}

func (f *fakeStore) GetAddress(_ context.Context, id, tenantID uuid.UUID) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.addresses[id]; ok && a.TenantID == tenantID {
		cp := *a
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListAddresses(_ context.Context, companyID, tenantID uuid.UUID) ([]*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Address
	for _, a := range f.addresses {
		if a.CompanyID == companyID && a.TenantID == tenantID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAddress(_ context.Context, a *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.addresses[a.ID]
	if !ok || existing.TenantID != a.TenantID {
		return store.ErrNotFound
	}
	cp := *a
	f.addresses[a.ID] = &cp
	return nil
}

func (f *fakeStore) HasPrimaryAddress(_ context.Context, companyID, tenantID, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.addresses {
		if a.CompanyID == companyID && a.TenantID == tenantID && a.IsPrimary && a.IsActive && a.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

// --- contacts ---

func (f *fakeStore) CreateContact(_ context.Context, c *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeStore) GetContact(_ context.Context, id, tenantID uuid.UUID) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.contacts[id]; ok && c.TenantID == tenantID {
		cp := *c
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListContacts(_ context.Context, filter store.ContactFilter) ([]*models.Contact, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Contact
	for _, c := range f.contacts {
		if c.TenantID != filter.TenantID {
			continue
		}
		if filter.ActiveOnly && !c.IsActive {
			continue
		}
		if filter.CompanyID != nil && (c.CompanyID == nil || *c.CompanyID != *filter.CompanyID) {
			continue
		}
		if filter.ActiveCompanyOnly {
			if c.CompanyID == nil {
				continue
			}
			co, ok := f.companies[*c.CompanyID]
			if !ok || !co.IsActive {
				continue
			}
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateContact(_ context.Context, c *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.contacts[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return store.ErrNotFound
	}
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeStore) HasPrimaryContact(_ context.Context, companyID, tenantID, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.CompanyID != nil && *c.CompanyID == companyID && c.TenantID == tenantID &&
			c.IsPrimary && c.IsActive && c.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

// --- deals ---

func (f *fakeStore) CreateDeal(_ context.Context, d *models.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	f.deals[d.ID] = &cp
	return nil
}

func (f *fakeStore) GetDeal(_ context.Context, id, tenantID uuid.UUID) (*models.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.deals[id]; ok && d.TenantID == tenantID {
		cp := *d
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListDeals(_ context.Context, filter store.DealFilter) ([]*models.Deal, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Deal
	for _, d := range f.deals {
		if d.TenantID != filter.TenantID {
			continue
		}
		if filter.ActiveOnly && !d.IsActive {
			continue
		}
		if filter.Stage != "" && d.Stage != filter.Stage {
			continue
		}
		if filter.ActiveCompanyOnly {
			if d.CompanyID == nil {
				continue
			}
			co, ok := f.companies[*d.CompanyID]
			if !ok || !co.IsActive {
				continue
			}
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateDeal(_ context.Context, d *models.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.deals[d.ID]
	if !ok || existing.TenantID != d.TenantID {
		return store.ErrNotFound
	}
	cp := *d
	f.deals[d.ID] = &cp
	return nil
}

func (f *fakeStore) CreateActivity(_ context.Context, a *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.activities[a.ID] = &cp
	return nil
}

func (f *fakeStore) ListActivities(_ context.Context, dealID, tenantID uuid.UUID) ([]*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Activity
	for _, a := range f.activities {
		if a.DealID == dealID && a.TenantID == tenantID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- orders ---

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.orders {
		if other.TenantID == o.TenantID && other.OrderNumber == o.OrderNumber {
			return store.ErrDuplicateKey
		}
	}
	cp := *o
	cp.Items = nil
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id, tenantID uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok && o.TenantID == tenantID {
		cp := *o
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetOrderByNumber(_ context.Context, tenantID uuid.UUID, number string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.TenantID == tenantID && o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListOrders(_ context.Context, filter store.OrderFilter) ([]*models.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.orders {
		if o.TenantID != filter.TenantID {
			continue
		}
		if filter.ActiveOnly && !o.IsActive {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.orders[o.ID]
	if !ok || existing.TenantID != o.TenantID {
		return store.ErrNotFound
	}
	cp := *o
	cp.Items = nil
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeStore) OrderExistsForDeal(_ context.Context, dealID, tenantID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.DealID != nil && *o.DealID == dealID && o.TenantID == tenantID && o.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateOrderItem(_ context.Context, item *models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *item
	f.orderItems[item.ID] = &cp
	return nil
}

func (f *fakeStore) ListOrderItems(_ context.Context, orderID, tenantID uuid.UUID) ([]*models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.OrderItem
	for _, item := range f.orderItems {
		if item.OrderID == orderID && item.TenantID == tenantID {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out, nil
}

// --- shipments ---

func (f *fakeStore) CreateShipment(_ context.Context, sh *models.Shipment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.shipments {
		if other.TenantID == sh.TenantID && other.ShipmentNumber == sh.ShipmentNumber {
			return store.ErrDuplicateKey
		}
	}
	cp := *sh
	cp.Items = nil
	f.shipments[sh.ID] = &cp
	return nil
}

func (f *fakeStore) GetShipment(_ context.Context, id, tenantID uuid.UUID) (*models.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sh, ok := f.shipments[id]; ok && sh.TenantID == tenantID {
		cp := *sh
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListShipments(_ context.Context, filter store.ShipmentFilter) ([]*models.Shipment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Shipment
	for _, sh := range f.shipments {
		if sh.TenantID != filter.TenantID {
			continue
		}
		if filter.OrderID != nil && sh.OrderID != *filter.OrderID {
			continue
		}
		if filter.Status != "" && sh.Status != filter.Status {
			continue
		}
		if filter.Carrier != "" && sh.Carrier != filter.Carrier {
			continue
		}
		if filter.OverdueOnly && !sh.Overdue(time.Now()) {
			continue
		}
		if filter.ActiveOnly && !sh.IsActive {
			continue
		}
		cp := *sh
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateShipment(_ context.Context, sh *models.Shipment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.shipments[sh.ID]
	if !ok || existing.TenantID != sh.TenantID {
		return store.ErrNotFound
	}
	cp := *sh
	cp.Items = nil
	f.shipments[sh.ID] = &cp
	return nil
}

func (f *fakeStore) UndeliveredShipmentExists(_ context.Context, orderID, tenantID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sh := range f.shipments {
		if sh.OrderID == orderID && sh.TenantID == tenantID && sh.IsActive &&
			sh.Status != models.ShipmentStatusDelivered {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateShipmentItem(_ context.Context, item *models.ShipmentItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *item
	f.shipmentItems[item.ID] = &cp
	return nil
}

func (f *fakeStore) ListShipmentItems(_ context.Context, shipmentID, tenantID uuid.UUID) ([]*models.ShipmentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ShipmentItem
	for _, item := range f.shipmentItems {
		if item.ShipmentID == shipmentID && item.TenantID == tenantID {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- documents ---

func (f *fakeStore) CreateDocument(_ context.Context, d *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	f.documents[d.ID] = &cp
	return nil
}

func (f *fakeStore) GetDocument(_ context.Context, id, tenantID uuid.UUID) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.documents[id]; ok && d.TenantID == tenantID {
		cp := *d
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListDocuments(_ context.Context, filter store.DocumentFilter) ([]*models.Document, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Document
	for _, d := range f.documents {
		if d.TenantID != filter.TenantID {
			continue
		}
		if filter.ActiveOnly && !d.IsActive {
			continue
		}
		if filter.EntityType != "" && d.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != nil && d.EntityID != *filter.EntityID {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateDocument(_ context.Context, d *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.documents[d.ID]
	if !ok || existing.TenantID != d.TenantID {
		return store.ErrNotFound
	}
	cp := *d
	f.documents[d.ID] = &cp
	return nil
}

// --- audit ---

var errAuditUnavailable = errors.New("audit storage unavailable")

func (f *fakeStore) CreateAuditEntry(_ context.Context, e *models.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAudit {
		return errAuditUnavailable
	}
	cp := *e
	f.audit = append(f.audit, &cp)
	return nil
}

func (f *fakeStore) ListAuditEntries(_ context.Context, filter store.AuditFilter) ([]*models.AuditLogEntry, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AuditLogEntry
	for _, e := range f.audit {
		if e.TenantID != filter.TenantID {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != nil && e.EntityID != *filter.EntityID {
			continue
		}
		if filter.ActorID != nil && e.ActorID != *filter.ActorID {
			continue
		}
		if !filter.From.IsZero() && e.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.CreatedAt.After(filter.To) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, len(out), nil
}

// entriesFor returns the raw audit entries recorded for one entity.
func (f *fakeStore) entriesFor(id uuid.UUID) []*models.AuditLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AuditLogEntry
	for _, e := range f.audit {
		if e.EntityID == id {
			out = append(out, e)
		}
	}
	return out
}

var _ store.Store = (*fakeStore)(nil)

// fakeClock returns a deterministic, strictly increasing clock.
func fakeClock() func() time.Time {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		base = base.Add(time.Second)
		return base
	}
}
