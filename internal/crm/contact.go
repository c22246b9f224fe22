package crm

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/audit"
	"github.com/exportdesk/exportdesk/internal/scope"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// ContactService manages people at client companies.
type ContactService struct {
	store store.Store
	audit *audit.Recorder
	now   func() time.Time
}

type CreateContactInput struct {
	CompanyID *uuid.UUID `json:"company_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Title     string     `json:"title"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Mobile    string     `json:"mobile"`
	IsPrimary bool       `json:"is_primary"`
	Notes     string     `json:"notes"`
}

type UpdateContactInput struct {
	CompanyID *uuid.UUID `json:"company_id"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Title     *string    `json:"title"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Mobile    *string    `json:"mobile"`
	IsPrimary *bool      `json:"is_primary"`
	Notes     *string    `json:"notes"`
}

func (s *ContactService) Create(ctx context.Context, p models.Principal, in CreateContactInput) (*models.Contact, error) {
	if in.FirstName == "" && in.LastName == "" {
		return nil, &ValidationError{Field: "first_name", Reason: "a contact needs a name"}
	}
	if in.IsPrimary && in.CompanyID == nil {
		return nil, &ValidationError{Field: "is_primary", Reason: "a primary contact must belong to a company"}
	}

	now := s.now()
	c := &models.Contact{
		ID:        uuid.New(),
		CompanyID: in.CompanyID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Title:     in.Title,
		Email:     in.Email,
		Phone:     in.Phone,
		Mobile:    in.Mobile,
		IsPrimary: in.IsPrimary,
		Notes:     in.Notes,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	scope.ForceTenant(p, &c.TenantID)

	err := s.store.Tx(ctx, func(tx store.Store) error {
		if c.CompanyID != nil {
			if err := scope.CheckReference(ctx, tx, p, models.EntityCompany, *c.CompanyID); err != nil {
				return referenceError(err, "contacts_company")
			}
		}
		if c.IsPrimary {
			taken, err := tx.HasPrimaryContact(ctx, *c.CompanyID, p.TenantID, c.ID)
			if err != nil {
				return err
			}
			if taken {
				return &ReferentialIntegrityError{Constraint: "contacts_primary_key"}
			}
		}
		if err := tx.CreateContact(ctx, c); err != nil {
			return err
		}
		return s.audit.Created(ctx, tx, p, models.EntityContact, c.ID, c.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Contact, error) {
	return s.store.GetContact(ctx, id, p.TenantID)
}

func (s *ContactService) List(ctx context.Context, p models.Principal, f store.ContactFilter) ([]*models.Contact, int, error) {
	f.TenantID = p.TenantID
	return s.store.ListContacts(ctx, f)
}

func (s *ContactService) Update(ctx context.Context, p models.Principal, id uuid.UUID, in UpdateContactInput) (*models.Contact, error) {
	var updated *models.Contact
	err := s.store.Tx(ctx, func(tx store.Store) error {
		c, err := tx.GetContact(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		before := c.Snapshot()

		if in.CompanyID != nil {
			if err := scope.CheckReference(ctx, tx, p, models.EntityCompany, *in.CompanyID); err != nil {
				return referenceError(err, "contacts_company")
			}
			c.CompanyID = in.CompanyID
		}
		if in.FirstName != nil {
			c.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			c.LastName = *in.LastName
		}
		if in.Title != nil {
			c.Title = *in.Title
		}
		if in.Email != nil {
			c.Email = *in.Email
		}
		if in.Phone != nil {
			c.Phone = *in.Phone
		}
		if in.Mobile != nil {
			c.Mobile = *in.Mobile
		}
		wantPrimary := c.IsPrimary
		if in.IsPrimary != nil {
			wantPrimary = *in.IsPrimary
		}
		if wantPrimary {
			if c.CompanyID == nil {
				return &ValidationError{Field: "is_primary", Reason: "a primary contact must belong to a company"}
			}
			if !c.IsPrimary || in.CompanyID != nil {
				taken, err := tx.HasPrimaryContact(ctx, *c.CompanyID, p.TenantID, c.ID)
				if err != nil {
					return err
				}
				if taken {
					return &ReferentialIntegrityError{Constraint: "contacts_primary_key"}
				}
			}
		}
		c.IsPrimary = wantPrimary
		if in.Notes != nil {
			c.Notes = *in.Notes
		}
		c.UpdatedAt = s.now()

		if err := tx.UpdateContact(ctx, c); err != nil {
			return err
		}
		if err := s.audit.Updated(ctx, tx, p, models.EntityContact, c.ID, before, c.Snapshot()); err != nil {
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

func (s *ContactService) Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		c, err := tx.GetContact(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return nil
		}
		before := c.Snapshot()
		c.IsActive = false
		c.UpdatedAt = s.now()
		if err := tx.UpdateContact(ctx, c); err != nil {
			return err
		}
		return s.audit.Deleted(ctx, tx, p, models.EntityContact, c.ID, before)
	})
}
