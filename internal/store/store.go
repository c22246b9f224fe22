package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrDuplicateSlug = errors.New("tenant slug already taken")

// Store is the data access interface. All database operations go through
// here. Methods that take a tenant id build it into the query itself, so a
// row outside the caller's tenant is indistinguishable from a missing row.
type Store interface {
	Ping(ctx context.Context) error

	// Tx runs fn against a transaction-bound Store. fn returning an error
	// rolls everything back; otherwise the transaction commits. The audit
	// write and the business write share one fn so they land atomically.
	Tx(ctx context.Context, fn func(Store) error) error

	// EntityTenant resolves the owning tenant of any row by entity type tag.
	// Inside a transaction the row is share-locked until commit, so a parent
	// referenced during the transaction cannot be retargeted concurrently.
	EntityTenant(ctx context.Context, entity models.EntityType, id uuid.UUID) (uuid.UUID, error)

	CreateTenant(ctx context.Context, t *models.Tenant) error
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	ListTenants(ctx context.Context, filter TenantFilter) ([]*models.Tenant, int, error)
	UpdateTenant(ctx context.Context, t *models.Tenant) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id, tenantID uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, u *models.User) error

	CreateCompany(ctx context.Context, c *models.Company) error
	GetCompany(ctx context.Context, id, tenantID uuid.UUID) (*models.Company, error)
	ListCompanies(ctx context.Context, filter CompanyFilter) ([]*models.Company, int, error)
	UpdateCompany(ctx context.Context, c *models.Company) error

	CreateAddress(ctx context.Context, a *models.Address) error
	GetAddress(ctx context.Context, id, tenantID uuid.UUID) (*models.Address, error)
	ListAddresses(ctx context.Context, companyID, tenantID uuid.UUID) ([]*models.Address, error)
	UpdateAddress(ctx context.Context, a *models.Address) error
	HasPrimaryAddress(ctx context.Context, companyID, tenantID, exclude uuid.UUID) (bool, error)

	CreateContact(ctx context.Context, c *models.Contact) error
	GetContact(ctx context.Context, id, tenantID uuid.UUID) (*models.Contact, error)
	ListContacts(ctx context.Context, filter ContactFilter) ([]*models.Contact, int, error)
	UpdateContact(ctx context.Context, c *models.Contact) error
	HasPrimaryContact(ctx context.Context, companyID, tenantID, exclude uuid.UUID) (bool, error)

	CreateDeal(ctx context.Context, d *models.Deal) error
	GetDeal(ctx context.Context, id, tenantID uuid.UUID) (*models.Deal, error)
	ListDeals(ctx context.Context, filter DealFilter) ([]*models.Deal, int, error)
	UpdateDeal(ctx context.Context, d *models.Deal) error

	CreateActivity(ctx context.Context, a *models.Activity) error
	ListActivities(ctx context.Context, dealID, tenantID uuid.UUID) ([]*models.Activity, error)

	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id, tenantID uuid.UUID) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, int, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
	OrderExistsForDeal(ctx context.Context, dealID, tenantID uuid.UUID) (bool, error)
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	ListOrderItems(ctx context.Context, orderID, tenantID uuid.UUID) ([]*models.OrderItem, error)

	CreateShipment(ctx context.Context, sh *models.Shipment) error
	GetShipment(ctx context.Context, id, tenantID uuid.UUID) (*models.Shipment, error)
	ListShipments(ctx context.Context, filter ShipmentFilter) ([]*models.Shipment, int, error)
	UpdateShipment(ctx context.Context, sh *models.Shipment) error
	UndeliveredShipmentExists(ctx context.Context, orderID, tenantID uuid.UUID) (bool, error)
	CreateShipmentItem(ctx context.Context, item *models.ShipmentItem) error
	ListShipmentItems(ctx context.Context, shipmentID, tenantID uuid.UUID) ([]*models.ShipmentItem, error)

	CreateDocument(ctx context.Context, d *models.Document) error
	GetDocument(ctx context.Context, id, tenantID uuid.UUID) (*models.Document, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]*models.Document, int, error)
	UpdateDocument(ctx context.Context, d *models.Document) error

	// Audit entries are append-only: there is deliberately no update or
	// delete surface for them.
	CreateAuditEntry(ctx context.Context, e *models.AuditLogEntry) error
	ListAuditEntries(ctx context.Context, filter AuditFilter) ([]*models.AuditLogEntry, int, error)
}

type TenantFilter struct {
	ActiveOnly bool
	Page       int
	Limit      int
}

type UserFilter struct {
	TenantID   uuid.UUID
	Role       string
	ActiveOnly bool
	Page       int
	Limit      int
}

type CompanyFilter struct {
	TenantID   uuid.UUID
	Status     string
	Industry   string
	AssignedTo *uuid.UUID
	ActiveOnly bool
	Page       int
	Limit      int
}

type ContactFilter struct {
	TenantID  uuid.UUID
	CompanyID *uuid.UUID
	// ActiveCompanyOnly restricts results to contacts of active companies,
	// for aggregate views that must filter on both parent and child flags.
	ActiveCompanyOnly bool
	ActiveOnly        bool
	Page              int
	Limit             int
}

type DealFilter struct {
	TenantID          uuid.UUID
	CompanyID         *uuid.UUID
	Stage             string
	ActiveCompanyOnly bool
	ActiveOnly        bool
	Page              int
	Limit             int
}

type OrderFilter struct {
	TenantID   uuid.UUID
	CompanyID  *uuid.UUID
	Status     string
	ActiveOnly bool
	Page       int
	Limit      int
}

type ShipmentFilter struct {
	TenantID uuid.UUID
	OrderID  *uuid.UUID
	Status   string
	Carrier  string
	// OverdueOnly keeps only shipments past their estimated delivery date
	// that are neither delivered nor returned.
	OverdueOnly bool
	ActiveOnly  bool
	Page        int
	Limit       int
}

type DocumentFilter struct {
	TenantID   uuid.UUID
	EntityType models.EntityType
	EntityID   *uuid.UUID
	ActiveOnly bool
	Page       int
	Limit      int
}

type AuditFilter struct {
	TenantID   uuid.UUID
	EntityType models.EntityType
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
	From       time.Time
	To         time.Time
	Page       int
	Limit      int
}
