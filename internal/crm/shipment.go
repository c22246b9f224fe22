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

// ShipmentService manages order fulfillment: shipments, their line items and
// delivery tracking.
type ShipmentService struct {
	store store.Store
	audit *audit.Recorder
	now   func() time.Time
}

type ShipmentItemInput struct {
	OrderItemID     uuid.UUID `json:"order_item_id"`
	QuantityShipped float64   `json:"quantity_shipped"`
	PackageNumber   string    `json:"package_number"`
	Condition       string    `json:"condition"`
}

type CreateShipmentInput struct {
	OrderID               uuid.UUID           `json:"order_id"`
	ShipmentNumber        string              `json:"shipment_number"`
	Carrier               string              `json:"carrier"`
	TrackingNumber        string              `json:"tracking_number"`
	ShippingMethod        string              `json:"shipping_method"`
	ShipmentDate          *time.Time          `json:"shipment_date"`
	EstimatedDeliveryDate *time.Time          `json:"estimated_delivery_date"`
	PackageCount          int                 `json:"package_count"`
	TotalWeight           float64             `json:"total_weight"`
	ShippingCost          float64             `json:"shipping_cost"`
	Currency              string              `json:"currency"`
	Notes                 string              `json:"notes"`
	Items                 []ShipmentItemInput `json:"items"`
}

type UpdateShipmentTrackingInput struct {
	Status                *string    `json:"status"`
	Carrier               *string    `json:"carrier"`
	TrackingNumber        *string    `json:"tracking_number"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
	ActualDeliveryDate    *time.Time `json:"actual_delivery_date"`
	Notes                 *string    `json:"notes"`
}

func (s *ShipmentService) generateShipmentNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("SHP-%s-%s", s.now().Format("20060102"), suffix)
}

// Create writes a shipment and its items in one transaction. The order is
// mandatory; every shipped item must be a line of that order. Creating the
// first shipment moves a pending order to processing.
func (s *ShipmentService) Create(ctx context.Context, p models.Principal, in CreateShipmentInput) (*models.Shipment, error) {
	if in.OrderID == uuid.Nil {
		return nil, &ValidationError{Field: "order_id", Reason: "a shipment needs an order"}
	}
	for i, item := range in.Items {
		if item.OrderItemID == uuid.Nil {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].order_item_id", i), Reason: "must be set"}
		}
		if item.QuantityShipped <= 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].quantity_shipped", i), Reason: "must be positive"}
		}
		if item.Condition != "" && !models.ValidShipmentItemCondition(item.Condition) {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].condition", i), Reason: fmt.Sprintf("unknown condition %q", item.Condition)}
		}
	}

	now := s.now()
	sh := &models.Shipment{
		ID:                    uuid.New(),
		OrderID:               in.OrderID,
		ShipmentNumber:        in.ShipmentNumber,
		Status:                models.ShipmentStatusPreparing,
		Carrier:               in.Carrier,
		TrackingNumber:        in.TrackingNumber,
		ShippingMethod:        in.ShippingMethod,
		ShipmentDate:          now,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
		PackageCount:          in.PackageCount,
		TotalWeight:           in.TotalWeight,
		ShippingCost:          in.ShippingCost,
		Currency:              in.Currency,
		Notes:                 in.Notes,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if in.ShipmentDate != nil {
		sh.ShipmentDate = *in.ShipmentDate
	}
	if sh.ShipmentNumber == "" {
		sh.ShipmentNumber = s.generateShipmentNumber()
	}
	if sh.PackageCount <= 0 {
		sh.PackageCount = 1
	}
	scope.ForceTenant(p, &sh.TenantID)

	for _, item := range in.Items {
		condition := item.Condition
		if condition == "" {
			condition = models.ShipmentItemConditionGood
		}
		sh.Items = append(sh.Items, &models.ShipmentItem{
			ID:              uuid.New(),
			TenantID:        sh.TenantID,
			ShipmentID:      sh.ID,
			OrderItemID:     item.OrderItemID,
			QuantityShipped: item.QuantityShipped,
			PackageNumber:   item.PackageNumber,
			Condition:       condition,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	err := s.store.Tx(ctx, func(tx store.Store) error {
		if err := scope.CheckReference(ctx, tx, p, models.EntityOrder, sh.OrderID); err != nil {
			return referenceError(err, "shipments_order")
		}
		o, err := tx.GetOrder(ctx, sh.OrderID, p.TenantID)
		if err != nil {
			return err
		}
		if sh.Currency == "" {
			sh.Currency = o.Currency
		}

		if len(sh.Items) > 0 {
			orderItems, err := tx.ListOrderItems(ctx, o.ID, p.TenantID)
			if err != nil {
				return err
			}
			known := make(map[uuid.UUID]bool, len(orderItems))
			for _, it := range orderItems {
				known[it.ID] = true
			}
			for _, it := range sh.Items {
				if !known[it.OrderItemID] {
					return &ReferentialIntegrityError{Constraint: "shipment_items_order_item"}
				}
			}
		}

		if err := tx.CreateShipment(ctx, sh); err != nil {
			return err
		}
		for _, it := range sh.Items {
			if err := tx.CreateShipmentItem(ctx, it); err != nil {
				return err
			}
		}

		// Fulfillment has started for the order.
		if o.Status == models.OrderStatusPending {
			before := o.Snapshot()
			o.Status = models.OrderStatusProcessing
			o.UpdatedAt = now
			if err := tx.UpdateOrder(ctx, o); err != nil {
				return err
			}
			if err := s.audit.Updated(ctx, tx, p, models.EntityOrder, o.ID, before, o.Snapshot()); err != nil {
				return err
			}
		}
		return s.audit.Created(ctx, tx, p, models.EntityShipment, sh.ID, sh.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *ShipmentService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Shipment, error) {
	sh, err := s.store.GetShipment(ctx, id, p.TenantID)
	if err != nil {
		return nil, err
	}
	sh.Items, err = s.store.ListShipmentItems(ctx, sh.ID, p.TenantID)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *ShipmentService) List(ctx context.Context, p models.Principal, f store.ShipmentFilter) ([]*models.Shipment, int, error) {
	f.TenantID = p.TenantID
	return s.store.ListShipments(ctx, f)
}

// UpdateTracking applies carrier and delivery updates. When a shipment
// reaches delivered its actual delivery date is stamped, and once no other
// active shipment of the order remains undelivered the order itself becomes
// delivered.
func (s *ShipmentService) UpdateTracking(ctx context.Context, p models.Principal, id uuid.UUID, in UpdateShipmentTrackingInput) (*models.Shipment, error) {
	var updated *models.Shipment
	err := s.store.Tx(ctx, func(tx store.Store) error {
		sh, err := tx.GetShipment(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		before := sh.Snapshot()

		if in.Status != nil {
			if !models.ValidShipmentStatus(*in.Status) {
				return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *in.Status)}
			}
			sh.Status = *in.Status
		}
		if in.Carrier != nil {
			sh.Carrier = *in.Carrier
		}
		if in.TrackingNumber != nil {
			sh.TrackingNumber = *in.TrackingNumber
		}
		if in.EstimatedDeliveryDate != nil {
			sh.EstimatedDeliveryDate = in.EstimatedDeliveryDate
		}
		if in.ActualDeliveryDate != nil {
			sh.ActualDeliveryDate = in.ActualDeliveryDate
		}
		if in.Notes != nil {
			sh.Notes = *in.Notes
		}
		now := s.now()
		if sh.Status == models.ShipmentStatusDelivered && sh.ActualDeliveryDate == nil {
			sh.ActualDeliveryDate = &now
		}
		sh.UpdatedAt = now

		if err := tx.UpdateShipment(ctx, sh); err != nil {
			return err
		}
		if err := s.audit.Updated(ctx, tx, p, models.EntityShipment, sh.ID, before, sh.Snapshot()); err != nil {
			return err
		}

		if sh.Status == models.ShipmentStatusDelivered {
			if err := s.closeOutOrder(ctx, tx, p, sh.OrderID, now); err != nil {
				return err
			}
		}
		updated = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// closeOutOrder marks the order delivered once every active shipment is.
func (s *ShipmentService) closeOutOrder(ctx context.Context, tx store.Store, p models.Principal, orderID uuid.UUID, now time.Time) error {
	pending, err := tx.UndeliveredShipmentExists(ctx, orderID, p.TenantID)
	if err != nil {
		return err
	}
	if pending {
		return nil
	}
	o, err := tx.GetOrder(ctx, orderID, p.TenantID)
	if err != nil {
		return err
	}
	if o.Status == models.OrderStatusDelivered {
		return nil
	}
	before := o.Snapshot()
	o.Status = models.OrderStatusDelivered
	o.UpdatedAt = now
	if err := tx.UpdateOrder(ctx, o); err != nil {
		return err
	}
	return s.audit.Updated(ctx, tx, p, models.EntityOrder, o.ID, before, o.Snapshot())
}

func (s *ShipmentService) Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		sh, err := tx.GetShipment(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		if !sh.IsActive {
			return nil
		}
		before := sh.Snapshot()
		sh.IsActive = false
		sh.UpdatedAt = s.now()
		if err := tx.UpdateShipment(ctx, sh); err != nil {
			return err
		}
		return s.audit.Deleted(ctx, tx, p, models.EntityShipment, sh.ID, before)
	})
}
