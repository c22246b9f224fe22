package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CompanyStatusActive      = "active"
	CompanyStatusProspect    = "prospect"
	CompanyStatusInactive    = "inactive"
	CompanyStatusBlacklisted = "blacklisted"
)

// Company is a client organization the tenant does business with.
type Company struct {
	ID          uuid.UUID  `db:"id"           json:"id"`
	TenantID    uuid.UUID  `db:"tenant_id"    json:"tenant_id"`
	Name        string     `db:"name"         json:"name"`
	LegalName   string     `db:"legal_name"   json:"legal_name"`
	Industry    string     `db:"industry"     json:"industry"`
	CompanyType string     `db:"company_type" json:"company_type"`
	Website     string     `db:"website"      json:"website"`
	Phone       string     `db:"phone"        json:"phone"`
	Email       string     `db:"email"        json:"email"`
	TaxID       string     `db:"tax_id"       json:"tax_id"`
	Currency    string     `db:"currency"     json:"currency"`
	Status      string     `db:"status"       json:"status"`
	Source      string     `db:"source"       json:"source"`
	AssignedTo  *uuid.UUID `db:"assigned_to"  json:"assigned_to,omitempty"`
	Notes       string     `db:"notes"        json:"notes"`
	IsActive    bool       `db:"is_active"    json:"is_active"`
	CreatedAt   time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"   json:"updated_at"`
}

func (c *Company) Snapshot() Snapshot {
	s := Snapshot{
		"name":         c.Name,
		"legal_name":   c.LegalName,
		"industry":     c.Industry,
		"company_type": c.CompanyType,
		"website":      c.Website,
		"phone":        c.Phone,
		"email":        c.Email,
		"tax_id":       c.TaxID,
		"currency":     c.Currency,
		"status":       c.Status,
		"source":       c.Source,
		"notes":        c.Notes,
		"is_active":    c.IsActive,
	}
	if c.AssignedTo != nil {
		s["assigned_to"] = c.AssignedTo.String()
	}
	return s
}

// Address is a postal address attached to a company. At most one address per
// company may be marked primary.
type Address struct {
	ID            uuid.UUID `db:"id"             json:"id"`
	TenantID      uuid.UUID `db:"tenant_id"      json:"tenant_id"`
	CompanyID     uuid.UUID `db:"company_id"     json:"company_id"`
	AddressType   string    `db:"address_type"   json:"address_type"`
	StreetAddress string    `db:"street_address" json:"street_address"`
	City          string    `db:"city"           json:"city"`
	StateProvince string    `db:"state_province" json:"state_province"`
	PostalCode    string    `db:"postal_code"    json:"postal_code"`
	Country       string    `db:"country"        json:"country"`
	IsPrimary     bool      `db:"is_primary"     json:"is_primary"`
	IsActive      bool      `db:"is_active"      json:"is_active"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
}

func (a *Address) Snapshot() Snapshot {
	return Snapshot{
		"company_id":     a.CompanyID.String(),
		"address_type":   a.AddressType,
		"street_address": a.StreetAddress,
		"city":           a.City,
		"state_province": a.StateProvince,
		"postal_code":    a.PostalCode,
		"country":        a.Country,
		"is_primary":     a.IsPrimary,
		"is_active":      a.IsActive,
	}
}
