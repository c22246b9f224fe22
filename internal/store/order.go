package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/exportdesk/exportdesk/pkg/models"
)

const orderColumns = `id, tenant_id, order_number, deal_id, company_id, contact_id, status,
	order_date, currency, subtotal, tax_amount, shipping_amount, discount_amount, total_amount,
	incoterms, payment_terms, notes, assigned_to, is_active, created_at, updated_at`

func (s *PostgresStore) CreateOrder(ctx context.Context, o *models.Order) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO orders (id, tenant_id, order_number, deal_id, company_id, contact_id, status,
		                     order_date, currency, subtotal, tax_amount, shipping_amount,
		                     discount_amount, total_amount, incoterms, payment_terms, notes,
		                     assigned_to, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		o.ID, o.TenantID, o.OrderNumber, o.DealID, o.CompanyID, o.ContactID, o.Status,
		o.OrderDate, o.Currency, o.Subtotal, o.TaxAmount, o.ShippingAmount,
		o.DiscountAmount, o.TotalAmount, o.Incoterms, o.PaymentTerms, o.Notes,
		o.AssignedTo, o.IsActive, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id, tenantID uuid.UUID) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) GetOrderByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE tenant_id = $1 AND order_number = $2`, tenantID, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order by number: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) ListOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.CompanyID != nil {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", argIdx))
		args = append(args, *filter.CompanyID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	where := joinAnd(conditions)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT `+orderColumns+` FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// UpdateOrder never touches tenant_id or order_number.
func (s *PostgresStore) UpdateOrder(ctx context.Context, o *models.Order) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE orders SET deal_id = $3, company_id = $4, contact_id = $5, status = $6,
		        order_date = $7, currency = $8, subtotal = $9, tax_amount = $10,
		        shipping_amount = $11, discount_amount = $12, total_amount = $13,
		        incoterms = $14, payment_terms = $15, notes = $16, assigned_to = $17,
		        is_active = $18, updated_at = $19
		 WHERE id = $1 AND tenant_id = $2`,
		o.ID, o.TenantID, o.DealID, o.CompanyID, o.ContactID, o.Status,
		o.OrderDate, o.Currency, o.Subtotal, o.TaxAmount,
		o.ShippingAmount, o.DiscountAmount, o.TotalAmount,
		o.Incoterms, o.PaymentTerms, o.Notes, o.AssignedTo, o.IsActive, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OrderExistsForDeal reports whether any active order is linked to the deal.
func (s *PostgresStore) OrderExistsForDeal(ctx context.Context, dealID, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE deal_id = $1 AND tenant_id = $2 AND is_active)`,
		dealID, tenantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("order exists for deal: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO order_items (id, tenant_id, order_id, line_number, product_code, product_name,
		                          description, quantity, unit_price, total_price, currency,
		                          unit_of_measure, hs_code, country_of_origin, is_active,
		                          created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		item.ID, item.TenantID, item.OrderID, item.LineNumber, item.ProductCode, item.ProductName,
		item.Description, item.Quantity, item.UnitPrice, item.TotalPrice, item.Currency,
		item.UnitOfMeasure, item.HSCode, item.CountryOfOrigin, item.IsActive,
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListOrderItems(ctx context.Context, orderID, tenantID uuid.UUID) ([]*models.OrderItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, order_id, line_number, product_code, product_name, description,
		        quantity, unit_price, total_price, currency, unit_of_measure, hs_code,
		        country_of_origin, is_active, created_at, updated_at
		 FROM order_items WHERE order_id = $1 AND tenant_id = $2 ORDER BY line_number`,
		orderID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.TenantID, &it.OrderID, &it.LineNumber, &it.ProductCode,
			&it.ProductName, &it.Description, &it.Quantity, &it.UnitPrice, &it.TotalPrice,
			&it.Currency, &it.UnitOfMeasure, &it.HSCode, &it.CountryOfOrigin, &it.IsActive,
			&it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.TenantID, &o.OrderNumber, &o.DealID, &o.CompanyID,
		&o.ContactID, &o.Status, &o.OrderDate, &o.Currency, &o.Subtotal, &o.TaxAmount,
		&o.ShippingAmount, &o.DiscountAmount, &o.TotalAmount, &o.Incoterms,
		&o.PaymentTerms, &o.Notes, &o.AssignedTo, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
