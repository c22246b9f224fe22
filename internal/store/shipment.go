package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/exportdesk/exportdesk/pkg/models"
)

const shipmentColumns = `id, tenant_id, order_id, shipment_number, status, carrier,
	tracking_number, shipping_method, shipment_date, estimated_delivery_date,
	actual_delivery_date, package_count, total_weight, shipping_cost, currency, notes,
	is_active, created_at, updated_at`

func (s *PostgresStore) CreateShipment(ctx context.Context, sh *models.Shipment) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO shipments (id, tenant_id, order_id, shipment_number, status, carrier,
		                        tracking_number, shipping_method, shipment_date,
		                        estimated_delivery_date, actual_delivery_date, package_count,
		                        total_weight, shipping_cost, currency, notes, is_active,
		                        created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		sh.ID, sh.TenantID, sh.OrderID, sh.ShipmentNumber, sh.Status, sh.Carrier,
		sh.TrackingNumber, sh.ShippingMethod, sh.ShipmentDate,
		sh.EstimatedDeliveryDate, sh.ActualDeliveryDate, sh.PackageCount,
		sh.TotalWeight, sh.ShippingCost, sh.Currency, sh.Notes, sh.IsActive,
		sh.CreatedAt, sh.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create shipment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetShipment(ctx context.Context, id, tenantID uuid.UUID) (*models.Shipment, error) {
	sh, err := scanShipment(s.db.QueryRow(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) ListShipments(ctx context.Context, filter ShipmentFilter) ([]*models.Shipment, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", argIdx))
		args = append(args, *filter.OrderID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Carrier != "" {
		conditions = append(conditions, fmt.Sprintf("carrier = $%d", argIdx))
		args = append(args, filter.Carrier)
		argIdx++
	}
	if filter.OverdueOnly {
		conditions = append(conditions,
			"estimated_delivery_date < NOW()",
			"status NOT IN ('delivered', 'returned')")
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	where := joinAnd(conditions)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM shipments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count shipments: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT `+shipmentColumns+` FROM shipments WHERE %s ORDER BY shipment_date DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var shipments []*models.Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan shipment: %w", err)
		}
		shipments = append(shipments, sh)
	}
	return shipments, total, rows.Err()
}

// UpdateShipment never touches tenant_id, order_id or shipment_number.
func (s *PostgresStore) UpdateShipment(ctx context.Context, sh *models.Shipment) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE shipments SET status = $3, carrier = $4, tracking_number = $5,
		        shipping_method = $6, shipment_date = $7, estimated_delivery_date = $8,
		        actual_delivery_date = $9, package_count = $10, total_weight = $11,
		        shipping_cost = $12, currency = $13, notes = $14, is_active = $15,
		        updated_at = $16
		 WHERE id = $1 AND tenant_id = $2`,
		sh.ID, sh.TenantID, sh.Status, sh.Carrier, sh.TrackingNumber,
		sh.ShippingMethod, sh.ShipmentDate, sh.EstimatedDeliveryDate,
		sh.ActualDeliveryDate, sh.PackageCount, sh.TotalWeight,
		sh.ShippingCost, sh.Currency, sh.Notes, sh.IsActive, sh.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UndeliveredShipmentExists reports whether the order still has an active
// shipment that is not delivered.
func (s *PostgresStore) UndeliveredShipmentExists(ctx context.Context, orderID, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shipments
		  WHERE order_id = $1 AND tenant_id = $2 AND is_active AND status <> 'delivered')`,
		orderID, tenantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("undelivered shipment exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CreateShipmentItem(ctx context.Context, item *models.ShipmentItem) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO shipment_items (id, tenant_id, shipment_id, order_item_id,
		                             quantity_shipped, package_number, condition, is_active,
		                             created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.TenantID, item.ShipmentID, item.OrderItemID,
		item.QuantityShipped, item.PackageNumber, item.Condition, item.IsActive,
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create shipment item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListShipmentItems(ctx context.Context, shipmentID, tenantID uuid.UUID) ([]*models.ShipmentItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, shipment_id, order_item_id, quantity_shipped, package_number,
		        condition, is_active, created_at, updated_at
		 FROM shipment_items WHERE shipment_id = $1 AND tenant_id = $2 ORDER BY created_at`,
		shipmentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list shipment items: %w", err)
	}
	defer rows.Close()

	var items []*models.ShipmentItem
	for rows.Next() {
		var it models.ShipmentItem
		if err := rows.Scan(&it.ID, &it.TenantID, &it.ShipmentID, &it.OrderItemID,
			&it.QuantityShipped, &it.PackageNumber, &it.Condition, &it.IsActive,
			&it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan shipment item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	var sh models.Shipment
	if err := row.Scan(&sh.ID, &sh.TenantID, &sh.OrderID, &sh.ShipmentNumber, &sh.Status,
		&sh.Carrier, &sh.TrackingNumber, &sh.ShippingMethod, &sh.ShipmentDate,
		&sh.EstimatedDeliveryDate, &sh.ActualDeliveryDate, &sh.PackageCount,
		&sh.TotalWeight, &sh.ShippingCost, &sh.Currency, &sh.Notes, &sh.IsActive,
		&sh.CreatedAt, &sh.UpdatedAt); err != nil {
		return nil, err
	}
	return &sh, nil
}
