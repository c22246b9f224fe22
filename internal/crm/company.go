package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/audit"
	"github.com/exportdesk/exportdesk/internal/scope"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

func validCompanyStatus(s string) bool {
	switch s {
	case models.CompanyStatusActive, models.CompanyStatusProspect,
		models.CompanyStatusInactive, models.CompanyStatusBlacklisted:
		return true
	}
	return false
}

// CompanyService manages client companies and their addresses.
type CompanyService struct {
	store store.Store
	audit *audit.Recorder
	now   func() time.Time
}

type CreateCompanyInput struct {
	Name        string     `json:"name"`
	LegalName   string     `json:"legal_name"`
	Industry    string     `json:"industry"`
	CompanyType string     `json:"company_type"`
	Website     string     `json:"website"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	TaxID       string     `json:"tax_id"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	Source      string     `json:"source"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	Notes       string     `json:"notes"`
}

type UpdateCompanyInput struct {
	Name        *string    `json:"name"`
	LegalName   *string    `json:"legal_name"`
	Industry    *string    `json:"industry"`
	CompanyType *string    `json:"company_type"`
	Website     *string    `json:"website"`
	Phone       *string    `json:"phone"`
	Email       *string    `json:"email"`
	TaxID       *string    `json:"tax_id"`
	Currency    *string    `json:"currency"`
	Status      *string    `json:"status"`
	Source      *string    `json:"source"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	Notes       *string    `json:"notes"`
}

func (s *CompanyService) Create(ctx context.Context, p models.Principal, in CreateCompanyInput) (*models.Company, error) {
	if in.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.Status == "" {
		in.Status = models.CompanyStatusProspect
	}
	if !validCompanyStatus(in.Status) {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", in.Status)}
	}

	now := s.now()
	c := &models.Company{
		ID:          uuid.New(),
		Name:        in.Name,
		LegalName:   in.LegalName,
		Industry:    in.Industry,
		CompanyType: in.CompanyType,
		Website:     in.Website,
		Phone:       in.Phone,
		Email:       in.Email,
		TaxID:       in.TaxID,
		Currency:    in.Currency,
		Status:      in.Status,
		Source:      in.Source,
		AssignedTo:  in.AssignedTo,
		Notes:       in.Notes,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	scope.ForceTenant(p, &c.TenantID)

	err := s.store.Tx(ctx, func(tx store.Store) error {
		if c.AssignedTo != nil {
			if err := scope.CheckReference(ctx, tx, p, models.EntityUser, *c.AssignedTo); err != nil {
				return referenceError(err, "companies_assigned_to")
			}
		}
		if err := tx.CreateCompany(ctx, c); err != nil {
			return err
		}
		return s.audit.Created(ctx, tx, p, models.EntityCompany, c.ID, c.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Company, error) {
	return s.store.GetCompany(ctx, id, p.TenantID)
}

func (s *CompanyService) List(ctx context.Context, p models.Principal, f store.CompanyFilter) ([]*models.Company, int, error) {
	f.TenantID = p.TenantID
	return s.store.ListCompanies(ctx, f)
}

func (s *CompanyService) Update(ctx context.Context, p models.Principal, id uuid.UUID, in UpdateCompanyInput) (*models.Company, error) {
	var updated *models.Company
	err := s.store.Tx(ctx, func(tx store.Store) error {
		c, err := tx.GetCompany(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		before := c.Snapshot()

		if in.Name != nil {
			if *in.Name == "" {
				return &ValidationError{Field: "name", Reason: "must not be empty"}
			}
			c.Name = *in.Name
		}
		if in.LegalName != nil {
			c.LegalName = *in.LegalName
		}
		if in.Industry != nil {
			c.Industry = *in.Industry
		}
		if in.CompanyType != nil {
			c.CompanyType = *in.CompanyType
		}
		if in.Website != nil {
			c.Website = *in.Website
		}
		if in.Phone != nil {
			c.Phone = *in.Phone
		}
		if in.Email != nil {
			c.Email = *in.Email
		}
		if in.TaxID != nil {
			c.TaxID = *in.TaxID
		}
		if in.Currency != nil {
			c.Currency = *in.Currency
		}
		if in.Status != nil {
			if !validCompanyStatus(*in.Status) {
				return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *in.Status)}
			}
			c.Status = *in.Status
		}
		if in.Source != nil {
			c.Source = *in.Source
		}
		if in.AssignedTo != nil {
			if err := scope.CheckReference(ctx, tx, p, models.EntityUser, *in.AssignedTo); err != nil {
				return referenceError(err, "companies_assigned_to")
			}
			c.AssignedTo = in.AssignedTo
		}
		if in.Notes != nil {
			c.Notes = *in.Notes
		}
		c.UpdatedAt = s.now()

		if err := tx.UpdateCompany(ctx, c); err != nil {
			return err
		}
		if err := s.audit.Updated(ctx, tx, p, models.EntityCompany, c.ID, before, c.Snapshot()); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Deactivate soft-deletes a company. Contacts, deals and orders keep their
// own flags; list queries filter through the company flag where the view
// demands it.
func (s *CompanyService) Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		c, err := tx.GetCompany(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return nil
		}
		before := c.Snapshot()
		c.IsActive = false
		c.UpdatedAt = s.now()
		if err := tx.UpdateCompany(ctx, c); err != nil {
			return err
		}
		return s.audit.Deleted(ctx, tx, p, models.EntityCompany, c.ID, before)
	})
}

type CreateAddressInput struct {
	AddressType   string `json:"address_type"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	StateProvince string `json:"state_province"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	IsPrimary     bool   `json:"is_primary"`
}

type UpdateAddressInput struct {
	AddressType   *string `json:"address_type"`
	StreetAddress *string `json:"street_address"`
	City          *string `json:"city"`
	StateProvince *string `json:"state_province"`
	PostalCode    *string `json:"postal_code"`
	Country       *string `json:"country"`
	IsPrimary     *bool   `json:"is_primary"`
}

// AddAddress attaches an address to a company. At most one active address
// per company may be primary; a partial unique index backstops the check.
func (s *CompanyService) AddAddress(ctx context.Context, p models.Principal, companyID uuid.UUID, in CreateAddressInput) (*models.Address, error) {
	if in.Country == "" {
		return nil, &ValidationError{Field: "country", Reason: "must not be empty"}
	}

	now := s.now()
	a := &models.Address{
		ID:            uuid.New(),
		CompanyID:     companyID,
		AddressType:   in.AddressType,
		StreetAddress: in.StreetAddress,
		City:          in.City,
		StateProvince: in.StateProvince,
		PostalCode:    in.PostalCode,
		Country:       in.Country,
		IsPrimary:     in.IsPrimary,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	scope.ForceTenant(p, &a.TenantID)

	err := s.store.Tx(ctx, func(tx store.Store) error {
		if err := scope.CheckReference(ctx, tx, p, models.EntityCompany, companyID); err != nil {
			return referenceError(err, "company_addresses_company")
		}
		if a.IsPrimary {
			taken, err := tx.HasPrimaryAddress(ctx, companyID, p.TenantID, a.ID)
			if err != nil {
				return err
			}
			if taken {
				return &ReferentialIntegrityError{Constraint: "company_addresses_primary_key"}
			}
		}
		if err := tx.CreateAddress(ctx, a); err != nil {
			return err
		}
		return s.audit.Created(ctx, tx, p, models.EntityAddress, a.ID, a.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CompanyService) ListAddresses(ctx context.Context, p models.Principal, companyID uuid.UUID) ([]*models.Address, error) {
	return s.store.ListAddresses(ctx, companyID, p.TenantID)
}

func (s *CompanyService) UpdateAddress(ctx context.Context, p models.Principal, id uuid.UUID, in UpdateAddressInput) (*models.Address, error) {
	var updated *models.Address
	err := s.store.Tx(ctx, func(tx store.Store) error {
		a, err := tx.GetAddress(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		before := a.Snapshot()

		if in.AddressType != nil {
			a.AddressType = *in.AddressType
		}
		if in.StreetAddress != nil {
			a.StreetAddress = *in.StreetAddress
		}
		if in.City != nil {
			a.City = *in.City
		}
		if in.StateProvince != nil {
			a.StateProvince = *in.StateProvince
		}
		if in.PostalCode != nil {
			a.PostalCode = *in.PostalCode
		}
		if in.Country != nil {
			if *in.Country == "" {
				return &ValidationError{Field: "country", Reason: "must not be empty"}
			}
			a.Country = *in.Country
		}
		if in.IsPrimary != nil && *in.IsPrimary && !a.IsPrimary {
			taken, err := tx.HasPrimaryAddress(ctx, a.CompanyID, p.TenantID, a.ID)
			if err != nil {
				return err
			}
			if taken {
				return &ReferentialIntegrityError{Constraint: "company_addresses_primary_key"}
			}
		}
		if in.IsPrimary != nil {
			a.IsPrimary = *in.IsPrimary
		}
		a.UpdatedAt = s.now()

		if err := tx.UpdateAddress(ctx, a); err != nil {
			return err
		}
		if err := s.audit.Updated(ctx, tx, p, models.EntityAddress, a.ID, before, a.Snapshot()); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CompanyService) DeactivateAddress(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		a, err := tx.GetAddress(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		if !a.IsActive {
			return nil
		}
		before := a.Snapshot()
		a.IsActive = false
		a.UpdatedAt = s.now()
		if err := tx.UpdateAddress(ctx, a); err != nil {
			return err
		}
		return s.audit.Deleted(ctx, tx, p, models.EntityAddress, a.ID, before)
	})
}
