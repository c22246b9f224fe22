package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/exportdesk/exportdesk/pkg/models"
)

const contactColumns = `ct.id, ct.tenant_id, ct.company_id, ct.first_name, ct.last_name,
	ct.title, ct.email, ct.phone, ct.mobile, ct.is_primary, ct.notes, ct.is_active,
	ct.created_at, ct.updated_at`

func (s *PostgresStore) CreateContact(ctx context.Context, c *models.Contact) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO contacts (id, tenant_id, company_id, first_name, last_name, title, email,
		                       phone, mobile, is_primary, notes, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.ID, c.TenantID, c.CompanyID, c.FirstName, c.LastName, c.Title, c.Email,
		c.Phone, c.Mobile, c.IsPrimary, c.Notes, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetContact(ctx context.Context, id, tenantID uuid.UUID) (*models.Contact, error) {
	c, err := scanContact(s.db.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts ct WHERE ct.id = $1 AND ct.tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, filter ContactFilter) ([]*models.Contact, int, error) {
	from := "contacts ct"
	if filter.ActiveCompanyOnly {
		// Aggregate views must filter on parent and child flags together.
		from = `contacts ct JOIN companies co
		        ON co.id = ct.company_id AND co.tenant_id = ct.tenant_id AND co.is_active`
	}

	conditions := []string{"ct.tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.CompanyID != nil {
		conditions = append(conditions, fmt.Sprintf("ct.company_id = $%d", argIdx))
		args = append(args, *filter.CompanyID)
		argIdx++
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "ct.is_active")
	}
	where := joinAnd(conditions)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, from, where)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT `+contactColumns+` FROM %s WHERE %s ORDER BY ct.created_at DESC LIMIT $%d OFFSET $%d`,
		from, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, total, rows.Err()
}

// UpdateContact never touches tenant_id.
func (s *PostgresStore) UpdateContact(ctx context.Context, c *models.Contact) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE contacts SET company_id = $3, first_name = $4, last_name = $5, title = $6,
		        email = $7, phone = $8, mobile = $9, is_primary = $10, notes = $11,
		        is_active = $12, updated_at = $13
		 WHERE id = $1 AND tenant_id = $2`,
		c.ID, c.TenantID, c.CompanyID, c.FirstName, c.LastName, c.Title,
		c.Email, c.Phone, c.Mobile, c.IsPrimary, c.Notes, c.IsActive, c.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) HasPrimaryContact(ctx context.Context, companyID, tenantID, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM contacts
		  WHERE company_id = $1 AND tenant_id = $2 AND id <> $3 AND is_primary AND is_active)`,
		companyID, tenantID, exclude).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check primary contact: %w", err)
	}
	return exists, nil
}

func scanContact(row pgx.Row) (*models.Contact, error) {
	var c models.Contact
	if err := row.Scan(&c.ID, &c.TenantID, &c.CompanyID, &c.FirstName, &c.LastName,
		&c.Title, &c.Email, &c.Phone, &c.Mobile, &c.IsPrimary, &c.Notes,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
