package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a person at a client company. CompanyID is optional; at most
// one contact per company may be marked primary.
type Contact struct {
	ID        uuid.UUID  `db:"id"         json:"id"`
	TenantID  uuid.UUID  `db:"tenant_id"  json:"tenant_id"`
	CompanyID *uuid.UUID `db:"company_id" json:"company_id,omitempty"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name"  json:"last_name"`
	Title     string     `db:"title"      json:"title"`
	Email     string     `db:"email"      json:"email"`
	Phone     string     `db:"phone"      json:"phone"`
	Mobile    string     `db:"mobile"     json:"mobile"`
	IsPrimary bool       `db:"is_primary" json:"is_primary"`
	Notes     string     `db:"notes"      json:"notes"`
	IsActive  bool       `db:"is_active"  json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

func (c *Contact) Snapshot() Snapshot {
	s := Snapshot{
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"title":      c.Title,
		"email":      c.Email,
		"phone":      c.Phone,
		"mobile":     c.Mobile,
		"is_primary": c.IsPrimary,
		"notes":      c.Notes,
		"is_active":  c.IsActive,
	}
	if c.CompanyID != nil {
		s["company_id"] = c.CompanyID.String()
	}
	return s
}
