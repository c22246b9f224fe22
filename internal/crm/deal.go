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

// DealService manages the sales pipeline and deal activities.
type DealService struct {
	store store.Store
	audit *audit.Recorder
	now   func() time.Time
}

type CreateDealInput struct {
	CompanyID         *uuid.UUID `json:"company_id"`
	ContactID         *uuid.UUID `json:"contact_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Stage             string     `json:"stage"`
	Value             float64    `json:"value"`
	Currency          string     `json:"currency"`
	Probability       int        `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	AssignedTo        *uuid.UUID `json:"assigned_to"`
}

type UpdateDealInput struct {
	CompanyID         *uuid.UUID `json:"company_id"`
	ContactID         *uuid.UUID `json:"contact_id"`
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	Stage             *string    `json:"stage"`
	Value             *float64   `json:"value"`
	Currency          *string    `json:"currency"`
	Probability       *int       `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	AssignedTo        *uuid.UUID `json:"assigned_to"`
}

func (s *DealService) Create(ctx context.Context, p models.Principal, in CreateDealInput) (*models.Deal, error) {
	if in.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if in.Stage == "" {
		in.Stage = models.StageLead
	}
	if !models.ValidDealStage(in.Stage) {
		return nil, &ValidationError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", in.Stage)}
	}
	if in.Probability < 0 || in.Probability > 100 {
		return nil, &ValidationError{Field: "probability", Reason: "must be between 0 and 100"}
	}
	if in.Value < 0 {
		return nil, &ValidationError{Field: "value", Reason: "must not be negative"}
	}

	now := s.now()
	d := &models.Deal{
		ID:                uuid.New(),
		CompanyID:         in.CompanyID,
		ContactID:         in.ContactID,
		Title:             in.Title,
		Description:       in.Description,
		Stage:             in.Stage,
		Value:             in.Value,
		Currency:          in.Currency,
		Probability:       in.Probability,
		ExpectedCloseDate: in.ExpectedCloseDate,
		AssignedTo:        in.AssignedTo,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	scope.ForceTenant(p, &d.TenantID)

	err := s.store.Tx(ctx, func(tx store.Store) error {
		if err := s.checkDealRefs(ctx, tx, p, d.CompanyID, d.ContactID, d.AssignedTo); err != nil {
			return err
		}
		if err := tx.CreateDeal(ctx, d); err != nil {
			return err
		}
		return s.audit.Created(ctx, tx, p, models.EntityDeal, d.ID, d.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DealService) checkDealRefs(ctx context.Context, tx store.Store, p models.Principal, companyID, contactID, assignedTo *uuid.UUID) error {
	if companyID != nil {
		if err := scope.CheckReference(ctx, tx, p, models.EntityCompany, *companyID); err != nil {
			return referenceError(err, "deals_company")
		}
	}
	if contactID != nil {
		if err := scope.CheckReference(ctx, tx, p, models.EntityContact, *contactID); err != nil {
			return referenceError(err, "deals_contact")
		}
	}
	if assignedTo != nil {
		if err := scope.CheckReference(ctx, tx, p, models.EntityUser, *assignedTo); err != nil {
			return referenceError(err, "deals_assigned_to")
		}
	}
	return nil
}

func (s *DealService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Deal, error) {
	return s.store.GetDeal(ctx, id, p.TenantID)
}

func (s *DealService) List(ctx context.Context, p models.Principal, f store.DealFilter) ([]*models.Deal, int, error) {
	f.TenantID = p.TenantID
	return s.store.ListDeals(ctx, f)
}

func (s *DealService) Update(ctx context.Context, p models.Principal, id uuid.UUID, in UpdateDealInput) (*models.Deal, error) {
	var updated *models.Deal
	err := s.store.Tx(ctx, func(tx store.Store) error {
		d, err := tx.GetDeal(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		before := d.Snapshot()

		if err := s.checkDealRefs(ctx, tx, p, in.CompanyID, in.ContactID, in.AssignedTo); err != nil {
			return err
		}
		if in.CompanyID != nil && (d.CompanyID == nil || *d.CompanyID != *in.CompanyID) {
			// A deal referenced by an order cannot move to another company:
			// the order's company and the deal's company must stay equal.
			linked, err := tx.OrderExistsForDeal(ctx, d.ID, p.TenantID)
			if err != nil {
				return err
			}
			if linked {
				return &ReferentialIntegrityError{Constraint: "orders_deal_company_match"}
			}
		}
		if in.CompanyID != nil {
			d.CompanyID = in.CompanyID
		}
		if in.ContactID != nil {
			d.ContactID = in.ContactID
		}
		if in.Title != nil {
			if *in.Title == "" {
				return &ValidationError{Field: "title", Reason: "must not be empty"}
			}
			d.Title = *in.Title
		}
		if in.Description != nil {
			d.Description = *in.Description
		}
		if in.Stage != nil {
			if !models.ValidDealStage(*in.Stage) {
				return &ValidationError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", *in.Stage)}
			}
			d.Stage = *in.Stage
		}
		if in.Value != nil {
			if *in.Value < 0 {
				return &ValidationError{Field: "value", Reason: "must not be negative"}
			}
			d.Value = *in.Value
		}
		if in.Currency != nil {
			d.Currency = *in.Currency
		}
		if in.Probability != nil {
			if *in.Probability < 0 || *in.Probability > 100 {
				return &ValidationError{Field: "probability", Reason: "must be between 0 and 100"}
			}
			d.Probability = *in.Probability
		}
		if in.ExpectedCloseDate != nil {
			d.ExpectedCloseDate = in.ExpectedCloseDate
		}
		if in.AssignedTo != nil {
			d.AssignedTo = in.AssignedTo
		}
		d.UpdatedAt = s.now()

		if err := tx.UpdateDeal(ctx, d); err != nil {
			return err
		}
		if err := s.audit.Updated(ctx, tx, p, models.EntityDeal, d.ID, before, d.Snapshot()); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *DealService) Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		d, err := tx.GetDeal(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		if !d.IsActive {
			return nil
		}
		before := d.Snapshot()
		d.IsActive = false
		d.UpdatedAt = s.now()
		if err := tx.UpdateDeal(ctx, d); err != nil {
			return err
		}
		return s.audit.Deleted(ctx, tx, p, models.EntityDeal, d.ID, before)
	})
}

type AddActivityInput struct {
	ActivityType    string    `json:"activity_type"`
	Subject         string    `json:"subject"`
	Description     string    `json:"description"`
	ActivityDate    time.Time `json:"activity_date"`
	DurationMinutes int       `json:"duration_minutes"`
	Outcome         string    `json:"outcome"`
	Completed       bool      `json:"completed"`
}

// AddActivity records an interaction on a deal.
func (s *DealService) AddActivity(ctx context.Context, p models.Principal, dealID uuid.UUID, in AddActivityInput) (*models.Activity, error) {
	if in.Subject == "" {
		return nil, &ValidationError{Field: "subject", Reason: "must not be empty"}
	}
	if in.ActivityDate.IsZero() {
		in.ActivityDate = s.now()
	}

	now := s.now()
	a := &models.Activity{
		ID:              uuid.New(),
		DealID:          dealID,
		ActivityType:    in.ActivityType,
		Subject:         in.Subject,
		Description:     in.Description,
		ActivityDate:    in.ActivityDate,
		DurationMinutes: in.DurationMinutes,
		Outcome:         in.Outcome,
		Completed:       in.Completed,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	scope.ForceTenant(p, &a.TenantID)

	err := s.store.Tx(ctx, func(tx store.Store) error {
		if err := scope.CheckReference(ctx, tx, p, models.EntityDeal, dealID); err != nil {
			return referenceError(err, "deal_activities_deal")
		}
		if err := tx.CreateActivity(ctx, a); err != nil {
			return err
		}
		return s.audit.Created(ctx, tx, p, models.EntityActivity, a.ID, a.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *DealService) ListActivities(ctx context.Context, p models.Principal, dealID uuid.UUID) ([]*models.Activity, error) {
	return s.store.ListActivities(ctx, dealID, p.TenantID)
}
