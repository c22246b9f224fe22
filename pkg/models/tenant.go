package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanStatusActive    = "active"
	PlanStatusTrialing  = "trialing"
	PlanStatusSuspended = "suspended"
)

// Tenant represents a customer organization. Every other entity belongs to
// exactly one tenant; the slug is globally unique and immutable after creation.
type Tenant struct {
	ID         uuid.UUID         `db:"id"          json:"id"`
	Name       string            `db:"name"        json:"name"`
	Slug       string            `db:"slug"        json:"slug"`
	Domain     string            `db:"domain"      json:"domain"`
	Settings   map[string]string `db:"settings"    json:"settings"`
	Plan       string            `db:"plan"        json:"plan"`
	PlanStatus string            `db:"plan_status" json:"plan_status"`
	IsActive   bool              `db:"is_active"   json:"is_active"`
	CreatedAt  time.Time         `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at"  json:"updated_at"`
}

// Snapshot captures the tenant's auditable fields.
func (t *Tenant) Snapshot() Snapshot {
	return Snapshot{
		"name":        t.Name,
		"slug":        t.Slug,
		"domain":      t.Domain,
		"plan":        t.Plan,
		"plan_status": t.PlanStatus,
		"is_active":   t.IsActive,
	}
}
