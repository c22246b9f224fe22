package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/audit"
	"github.com/exportdesk/exportdesk/internal/scope"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// OrderService manages export orders and their line items.
type OrderService struct {
	store store.Store
	audit *audit.Recorder
	now   func() time.Time
}

type OrderItemInput struct {
	ProductCode     string  `json:"product_code"`
	ProductName     string  `json:"product_name"`
	Description     string  `json:"description"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	UnitOfMeasure   string  `json:"unit_of_measure"`
	HSCode          string  `json:"hs_code"`
	CountryOfOrigin string  `json:"country_of_origin"`
}

type CreateOrderInput struct {
	OrderNumber    string           `json:"order_number"`
	DealID         *uuid.UUID       `json:"deal_id"`
	CompanyID      uuid.UUID        `json:"company_id"`
	ContactID      *uuid.UUID       `json:"contact_id"`
	OrderDate      *time.Time       `json:"order_date"`
	Currency       string           `json:"currency"`
	TaxAmount      float64          `json:"tax_amount"`
	ShippingAmount float64          `json:"shipping_amount"`
	DiscountAmount float64          `json:"discount_amount"`
	Incoterms      string           `json:"incoterms"`
	PaymentTerms   string           `json:"payment_terms"`
	Notes          string           `json:"notes"`
	AssignedTo     *uuid.UUID       `json:"assigned_to"`
	Items          []OrderItemInput `json:"items"`
}

type UpdateOrderInput struct {
	DealID         *uuid.UUID `json:"deal_id"`
	ContactID      *uuid.UUID `json:"contact_id"`
	Status         *string    `json:"status"`
	Currency       *string    `json:"currency"`
	TaxAmount      *float64   `json:"tax_amount"`
	ShippingAmount *float64   `json:"shipping_amount"`
	DiscountAmount *float64   `json:"discount_amount"`
	Incoterms      *string    `json:"incoterms"`
	PaymentTerms   *string    `json:"payment_terms"`
	Notes          *string    `json:"notes"`
	AssignedTo     *uuid.UUID `json:"assigned_to"`
}

// generateOrderNumber builds a readable per-tenant order number. Uniqueness
// is enforced by the tenant-scoped unique index, not here.
func (s *OrderService) generateOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("EXP-%s-%s", s.now().Format("20060102"), suffix)
}

// Create writes an order and its items in one transaction. The company is
// mandatory; when a deal is linked it must belong to the same company.
func (s *OrderService) Create(ctx context.Context, p models.Principal, in CreateOrderInput) (*models.Order, error) {
	if in.CompanyID == uuid.Nil {
		return nil, &ValidationError{Field: "company_id", Reason: "an order needs a company"}
	}
	if len(in.Items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "an order needs at least one line item"}
	}
	for i, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "must be positive"}
		}
		if item.UnitPrice < 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].unit_price", i), Reason: "must not be negative"}
		}
	}

	now := s.now()
	o := &models.Order{
		ID:             uuid.New(),
		OrderNumber:    in.OrderNumber,
		DealID:         in.DealID,
		CompanyID:      in.CompanyID,
		ContactID:      in.ContactID,
		Status:         models.OrderStatusPending,
		OrderDate:      now,
		Currency:       in.Currency,
		TaxAmount:      in.TaxAmount,
		ShippingAmount: in.ShippingAmount,
		DiscountAmount: in.DiscountAmount,
		Incoterms:      in.Incoterms,
		PaymentTerms:   in.PaymentTerms,
		Notes:          in.Notes,
		AssignedTo:     in.AssignedTo,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.OrderDate != nil {
		o.OrderDate = *in.OrderDate
	}
	if o.OrderNumber == "" {
		o.OrderNumber = s.generateOrderNumber()
	}
	scope.ForceTenant(p, &o.TenantID)

	for i, item := range in.Items {
		total := item.Quantity * item.UnitPrice
		o.Items = append(o.Items, &models.OrderItem{
			ID:              uuid.New(),
			TenantID:        o.TenantID,
			OrderID:         o.ID,
			LineNumber:      i + 1,
			ProductCode:     item.ProductCode,
			ProductName:     item.ProductName,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      total,
			Currency:        o.Currency,
			UnitOfMeasure:   item.UnitOfMeasure,
			HSCode:          item.HSCode,
			CountryOfOrigin: item.CountryOfOrigin,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		o.Subtotal += total
	}
	o.TotalAmount = o.Subtotal + o.TaxAmount + o.ShippingAmount - o.DiscountAmount

	err := s.store.Tx(ctx, func(tx store.Store) error {
		if err := scope.CheckReference(ctx, tx, p, models.EntityCompany, o.CompanyID); err != nil {
			return referenceError(err, "orders_company")
		}
		if o.DealID != nil {
			if err := s.checkDealLink(ctx, tx, p, *o.DealID, o.CompanyID); err != nil {
				return err
			}
		}
		if o.ContactID != nil {
			if err := scope.CheckReference(ctx, tx, p, models.EntityContact, *o.ContactID); err != nil {
				return referenceError(err, "orders_contact")
			}
		}
		if o.AssignedTo != nil {
			if err := scope.CheckReference(ctx, tx, p, models.EntityUser, *o.AssignedTo); err != nil {
				return referenceError(err, "orders_assigned_to")
			}
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		for _, item := range o.Items {
			if err := tx.CreateOrderItem(ctx, item); err != nil {
				return err
			}
		}
		return s.audit.Created(ctx, tx, p, models.EntityOrder, o.ID, o.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// checkDealLink verifies the linked deal is in-tenant and tied to the same
// company as the order.
func (s *OrderService) checkDealLink(ctx context.Context, tx store.Store, p models.Principal, dealID, companyID uuid.UUID) error {
	if err := scope.CheckReference(ctx, tx, p, models.EntityDeal, dealID); err != nil {
		return referenceError(err, "orders_deal")
	}
	d, err := tx.GetDeal(ctx, dealID, p.TenantID)
	if err != nil {
		return err
	}
	if d.CompanyID == nil || *d.CompanyID != companyID {
		return &ReferentialIntegrityError{Constraint: "orders_deal_company_match"}
	}
	return nil
}

func (s *OrderService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Order, error) {
	o, err := s.store.GetOrder(ctx, id, p.TenantID)
	if err != nil {
		return nil, err
	}
	o.Items, err = s.store.ListOrderItems(ctx, o.ID, p.TenantID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) GetByNumber(ctx context.Context, p models.Principal, number string) (*models.Order, error) {
	o, err := s.store.GetOrderByNumber(ctx, p.TenantID, number)
	if err != nil {
		return nil, err
	}
	o.Items, err = s.store.ListOrderItems(ctx, o.ID, p.TenantID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, p models.Principal, f store.OrderFilter) ([]*models.Order, int, error) {
	f.TenantID = p.TenantID
	return s.store.ListOrders(ctx, f)
}

func (s *OrderService) Update(ctx context.Context, p models.Principal, id uuid.UUID, in UpdateOrderInput) (*models.Order, error) {
	var updated *models.Order
	err := s.store.Tx(ctx, func(tx store.Store) error {
		o, err := tx.GetOrder(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		before := o.Snapshot()

		if in.DealID != nil {
			if err := s.checkDealLink(ctx, tx, p, *in.DealID, o.CompanyID); err != nil {
				return err
			}
			o.DealID = in.DealID
		}
		if in.ContactID != nil {
			if err := scope.CheckReference(ctx, tx, p, models.EntityContact, *in.ContactID); err != nil {
				return referenceError(err, "orders_contact")
			}
			o.ContactID = in.ContactID
		}
		if in.Status != nil {
			if !models.ValidOrderStatus(*in.Status) {
				return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *in.Status)}
			}
			o.Status = *in.Status
		}
		if in.Currency != nil {
			o.Currency = *in.Currency
		}
		if in.TaxAmount != nil {
			o.TaxAmount = *in.TaxAmount
		}
		if in.ShippingAmount != nil {
			o.ShippingAmount = *in.ShippingAmount
		}
		if in.DiscountAmount != nil {
			o.DiscountAmount = *in.DiscountAmount
		}
		if in.Incoterms != nil {
			o.Incoterms = *in.Incoterms
		}
		if in.PaymentTerms != nil {
			o.PaymentTerms = *in.PaymentTerms
		}
		if in.Notes != nil {
			o.Notes = *in.Notes
		}
		if in.AssignedTo != nil {
			if err := scope.CheckReference(ctx, tx, p, models.EntityUser, *in.AssignedTo); err != nil {
				return referenceError(err, "orders_assigned_to")
			}
			o.AssignedTo = in.AssignedTo
		}
		o.TotalAmount = o.Subtotal + o.TaxAmount + o.ShippingAmount - o.DiscountAmount
		o.UpdatedAt = s.now()

		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if err := s.audit.Updated(ctx, tx, p, models.EntityOrder, o.ID, before, o.Snapshot()); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *OrderService) Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		o, err := tx.GetOrder(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		if !o.IsActive {
			return nil
		}
		before := o.Snapshot()
		o.IsActive = false
		o.UpdatedAt = s.now()
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		return s.audit.Deleted(ctx, tx, p, models.EntityOrder, o.ID, before)
	})
}
