// Package models contains shared data models used across the ExportDesk codebase.
package models

// EntityType tags a row for audit records and polymorphic references.
type EntityType string

const (
	EntityTenant   EntityType = "tenant"
	EntityUser     EntityType = "user"
	EntityCompany  EntityType = "company"
	EntityAddress  EntityType = "address"
	EntityContact  EntityType = "contact"
	EntityDeal     EntityType = "deal"
	EntityActivity EntityType = "activity"
	EntityOrder    EntityType = "order"
	EntityShipment EntityType = "shipment"
	EntityDocument EntityType = "document"
)

// ValidEntityType reports whether t is a known entity type tag.
func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityTenant, EntityUser, EntityCompany, EntityAddress, EntityContact,
		EntityDeal, EntityActivity, EntityOrder, EntityShipment, EntityDocument:
		return true
	}
	return false
}

// Snapshot is a structured field-name to value capture of an entity at a
// point in time. Audit entries store one snapshot before and one after each
// mutation.
type Snapshot map[string]any
