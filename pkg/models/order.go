package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is a recognized order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a confirmed export order for a company. When a deal is linked,
// that deal's company must match the order's company.
type Order struct {
	ID             uuid.UUID  `db:"id"              json:"id"`
	TenantID       uuid.UUID  `db:"tenant_id"       json:"tenant_id"`
	OrderNumber    string     `db:"order_number"    json:"order_number"`
	DealID         *uuid.UUID `db:"deal_id"         json:"deal_id,omitempty"`
	CompanyID      uuid.UUID  `db:"company_id"      json:"company_id"`
	ContactID      *uuid.UUID `db:"contact_id"      json:"contact_id,omitempty"`
	Status         string     `db:"status"          json:"status"`
	OrderDate      time.Time  `db:"order_date"      json:"order_date"`
	Currency       string     `db:"currency"        json:"currency"`
	Subtotal       float64    `db:"subtotal"        json:"subtotal"`
	TaxAmount      float64    `db:"tax_amount"      json:"tax_amount"`
	ShippingAmount float64    `db:"shipping_amount" json:"shipping_amount"`
	DiscountAmount float64    `db:"discount_amount" json:"discount_amount"`
	TotalAmount    float64    `db:"total_amount"    json:"total_amount"`
	Incoterms      string     `db:"incoterms"       json:"incoterms"`
	PaymentTerms   string     `db:"payment_terms"   json:"payment_terms"`
	Notes          string     `db:"notes"           json:"notes"`
	AssignedTo     *uuid.UUID `db:"assigned_to"     json:"assigned_to,omitempty"`
	IsActive       bool       `db:"is_active"       json:"is_active"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"      json:"updated_at"`

	Items []*OrderItem `db:"-" json:"items,omitempty"`
}

func (o *Order) Snapshot() Snapshot {
	s := Snapshot{
		"order_number":    o.OrderNumber,
		"company_id":      o.CompanyID.String(),
		"status":          o.Status,
		"currency":        o.Currency,
		"subtotal":        o.Subtotal,
		"tax_amount":      o.TaxAmount,
		"shipping_amount": o.ShippingAmount,
		"discount_amount": o.DiscountAmount,
		"total_amount":    o.TotalAmount,
		"incoterms":       o.Incoterms,
		"payment_terms":   o.PaymentTerms,
		"notes":           o.Notes,
		"is_active":       o.IsActive,
	}
	if o.DealID != nil {
		s["deal_id"] = o.DealID.String()
	}
	if o.ContactID != nil {
		s["contact_id"] = o.ContactID.String()
	}
	return s
}

// OrderItem is one line of an order. An order carries at least one item.
type OrderItem struct {
	ID              uuid.UUID `db:"id"                json:"id"`
	TenantID        uuid.UUID `db:"tenant_id"         json:"tenant_id"`
	OrderID         uuid.UUID `db:"order_id"          json:"order_id"`
	LineNumber      int       `db:"line_number"       json:"line_number"`
	ProductCode     string    `db:"product_code"      json:"product_code"`
	ProductName     string    `db:"product_name"      json:"product_name"`
	Description     string    `db:"description"       json:"description"`
	Quantity        float64   `db:"quantity"          json:"quantity"`
	UnitPrice       float64   `db:"unit_price"        json:"unit_price"`
	TotalPrice      float64   `db:"total_price"       json:"total_price"`
	Currency        string    `db:"currency"          json:"currency"`
	UnitOfMeasure   string    `db:"unit_of_measure"   json:"unit_of_measure"`
	HSCode          string    `db:"hs_code"           json:"hs_code"`
	CountryOfOrigin string    `db:"country_of_origin" json:"country_of_origin"`
	IsActive        bool      `db:"is_active"         json:"is_active"`
	CreatedAt       time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"        json:"updated_at"`
}
