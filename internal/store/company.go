package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/exportdesk/exportdesk/pkg/models"
)

const companyColumns = `id, tenant_id, name, legal_name, industry, company_type, website,
	phone, email, tax_id, currency, status, source, assigned_to, notes, is_active,
	created_at, updated_at`

func (s *PostgresStore) CreateCompany(ctx context.Context, c *models.Company) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO companies (id, tenant_id, name, legal_name, industry, company_type, website,
		                        phone, email, tax_id, currency, status, source, assigned_to, notes,
		                        is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		c.ID, c.TenantID, c.Name, c.LegalName, c.Industry, c.CompanyType, c.Website,
		c.Phone, c.Email, c.TaxID, c.Currency, c.Status, c.Source, c.AssignedTo, c.Notes,
		c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, id, tenantID uuid.UUID) (*models.Company, error) {
	c, err := scanCompany(s.db.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]*models.Company, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Industry != "" {
		conditions = append(conditions, fmt.Sprintf("industry = $%d", argIdx))
		args = append(args, filter.Industry)
		argIdx++
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argIdx))
		args = append(args, *filter.AssignedTo)
		argIdx++
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	where := joinAnd(conditions)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM companies WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT `+companyColumns+` FROM companies WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

// UpdateCompany never touches tenant_id.
func (s *PostgresStore) UpdateCompany(ctx context.Context, c *models.Company) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE companies SET name = $3, legal_name = $4, industry = $5, company_type = $6,
		        website = $7, phone = $8, email = $9, tax_id = $10, currency = $11, status = $12,
		        source = $13, assigned_to = $14, notes = $15, is_active = $16, updated_at = $17
		 WHERE id = $1 AND tenant_id = $2`,
		c.ID, c.TenantID, c.Name, c.LegalName, c.Industry, c.CompanyType,
		c.Website, c.Phone, c.Email, c.TaxID, c.Currency, c.Status,
		c.Source, c.AssignedTo, c.Notes, c.IsActive, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	if err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.LegalName, &c.Industry,
		&c.CompanyType, &c.Website, &c.Phone, &c.Email, &c.TaxID, &c.Currency,
		&c.Status, &c.Source, &c.AssignedTo, &c.Notes, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// --- Addresses ---

const addressColumns = `id, tenant_id, company_id, address_type, street_address, city,
	state_province, postal_code, country, is_primary, is_active, created_at, updated_at`

func (s *PostgresStore) CreateAddress(ctx context.Context, a *models.Address) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO company_addresses (id, tenant_id, company_id, address_type, street_address,
		                                city, state_province, postal_code, country, is_primary,
		                                is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.TenantID, a.CompanyID, a.AddressType, a.StreetAddress,
		a.City, a.StateProvince, a.PostalCode, a.Country, a.IsPrimary,
		a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create address: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAddress(ctx context.Context, id, tenantID uuid.UUID) (*models.Address, error) {
	a, err := scanAddress(s.db.QueryRow(ctx,
		`SELECT `+addressColumns+` FROM company_addresses WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAddresses(ctx context.Context, companyID, tenantID uuid.UUID) ([]*models.Address, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+addressColumns+` FROM company_addresses
		 WHERE company_id = $1 AND tenant_id = $2 ORDER BY created_at`, companyID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var addresses []*models.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (s *PostgresStore) UpdateAddress(ctx context.Context, a *models.Address) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE company_addresses SET address_type = $3, street_address = $4, city = $5,
		        state_province = $6, postal_code = $7, country = $8, is_primary = $9,
		        is_active = $10, updated_at = $11
		 WHERE id = $1 AND tenant_id = $2`,
		a.ID, a.TenantID, a.AddressType, a.StreetAddress, a.City,
		a.StateProvince, a.PostalCode, a.Country, a.IsPrimary, a.IsActive, a.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) HasPrimaryAddress(ctx context.Context, companyID, tenantID, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM company_addresses
		  WHERE company_id = $1 AND tenant_id = $2 AND id <> $3 AND is_primary AND is_active)`,
		companyID, tenantID, exclude).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check primary address: %w", err)
	}
	return exists, nil
}

func scanAddress(row pgx.Row) (*models.Address, error) {
	var a models.Address
	if err := row.Scan(&a.ID, &a.TenantID, &a.CompanyID, &a.AddressType, &a.StreetAddress,
		&a.City, &a.StateProvince, &a.PostalCode, &a.Country, &a.IsPrimary,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
