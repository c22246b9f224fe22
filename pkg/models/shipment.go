package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ShipmentStatusPreparing = "preparing"
	ShipmentStatusShipped   = "shipped"
	ShipmentStatusInTransit = "in_transit"
	ShipmentStatusDelivered = "delivered"
	ShipmentStatusReturned  = "returned"
)

// ValidShipmentStatus reports whether s is a recognized shipment status.
func ValidShipmentStatus(s string) bool {
	switch s {
	case ShipmentStatusPreparing, ShipmentStatusShipped, ShipmentStatusInTransit,
		ShipmentStatusDelivered, ShipmentStatusReturned:
		return true
	}
	return false
}

const (
	ShipmentItemConditionGood      = "good"
	ShipmentItemConditionDamaged   = "damaged"
	ShipmentItemConditionDefective = "defective"
)

// ValidShipmentItemCondition reports whether c is a recognized item condition.
func ValidShipmentItemCondition(c string) bool {
	switch c {
	case ShipmentItemConditionGood, ShipmentItemConditionDamaged, ShipmentItemConditionDefective:
		return true
	}
	return false
}

// Shipment tracks a partial or complete fulfillment of an order. An order
// can ship in several shipments; each one always references its order.
type Shipment struct {
	ID                    uuid.UUID  `db:"id"                      json:"id"`
	TenantID              uuid.UUID  `db:"tenant_id"               json:"tenant_id"`
	OrderID               uuid.UUID  `db:"order_id"                json:"order_id"`
	ShipmentNumber        string     `db:"shipment_number"         json:"shipment_number"`
	Status                string     `db:"status"                  json:"status"`
	Carrier               string     `db:"carrier"                 json:"carrier"`
	TrackingNumber        string     `db:"tracking_number"         json:"tracking_number"`
	ShippingMethod        string     `db:"shipping_method"         json:"shipping_method"`
	ShipmentDate          time.Time  `db:"shipment_date"           json:"shipment_date"`
	EstimatedDeliveryDate *time.Time `db:"estimated_delivery_date" json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time `db:"actual_delivery_date"    json:"actual_delivery_date,omitempty"`
	PackageCount          int        `db:"package_count"           json:"package_count"`
	TotalWeight           float64    `db:"total_weight"            json:"total_weight"`
	ShippingCost          float64    `db:"shipping_cost"           json:"shipping_cost"`
	Currency              string     `db:"currency"                json:"currency"`
	Notes                 string     `db:"notes"                   json:"notes"`
	IsActive              bool       `db:"is_active"               json:"is_active"`
	CreatedAt             time.Time  `db:"created_at"              json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"              json:"updated_at"`

	Items []*ShipmentItem `db:"-" json:"items,omitempty"`
}

// Overdue reports whether the shipment missed its estimated delivery date
// without reaching a terminal state.
func (s *Shipment) Overdue(now time.Time) bool {
	if s.EstimatedDeliveryDate == nil {
		return false
	}
	if s.Status == ShipmentStatusDelivered || s.Status == ShipmentStatusReturned {
		return false
	}
	return now.After(*s.EstimatedDeliveryDate)
}

func (s *Shipment) Snapshot() Snapshot {
	snap := Snapshot{
		"shipment_number": s.ShipmentNumber,
		"order_id":        s.OrderID.String(),
		"status":          s.Status,
		"carrier":         s.Carrier,
		"tracking_number": s.TrackingNumber,
		"shipping_method": s.ShippingMethod,
		"package_count":   s.PackageCount,
		"total_weight":    s.TotalWeight,
		"shipping_cost":   s.ShippingCost,
		"currency":        s.Currency,
		"notes":           s.Notes,
		"is_active":       s.IsActive,
	}
	if s.EstimatedDeliveryDate != nil {
		snap["estimated_delivery_date"] = s.EstimatedDeliveryDate.Format(time.RFC3339)
	}
	if s.ActualDeliveryDate != nil {
		snap["actual_delivery_date"] = s.ActualDeliveryDate.Format(time.RFC3339)
	}
	return snap
}

// ShipmentItem records how much of one order line went into a shipment.
type ShipmentItem struct {
	ID              uuid.UUID `db:"id"               json:"id"`
	TenantID        uuid.UUID `db:"tenant_id"        json:"tenant_id"`
	ShipmentID      uuid.UUID `db:"shipment_id"      json:"shipment_id"`
	OrderItemID     uuid.UUID `db:"order_item_id"    json:"order_item_id"`
	QuantityShipped float64   `db:"quantity_shipped" json:"quantity_shipped"`
	PackageNumber   string    `db:"package_number"   json:"package_number"`
	Condition       string    `db:"condition"        json:"condition"`
	IsActive        bool      `db:"is_active"        json:"is_active"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"       json:"updated_at"`
}
