package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/exportdesk/exportdesk/pkg/models"
)

const tenantColumns = `id, name, slug, domain, settings, plan, plan_status, is_active, created_at, updated_at`

func (s *PostgresStore) CreateTenant(ctx context.Context, t *models.Tenant) error {
	settings, err := json.Marshal(t.Settings)
	if err != nil {
		return fmt.Errorf("encode tenant settings: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO tenants (id, name, slug, domain, settings, plan, plan_status, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.Name, t.Slug, t.Domain, settings, t.Plan, t.PlanStatus, t.IsActive, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			if constraintName(err) == "tenants_slug_key" {
				return ErrDuplicateSlug
			}
			return ErrDuplicateKey
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant by slug: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListTenants(ctx context.Context, filter TenantFilter) ([]*models.Tenant, int, error) {
	where := "TRUE"
	if filter.ActiveOnly {
		where = "is_active"
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants WHERE `+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tenants: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	rows, err := s.db.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE `+where+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, total, rows.Err()
}

// UpdateTenant never touches the slug: it is immutable after creation.
func (s *PostgresStore) UpdateTenant(ctx context.Context, t *models.Tenant) error {
	settings, err := json.Marshal(t.Settings)
	if err != nil {
		return fmt.Errorf("encode tenant settings: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants SET name = $2, domain = $3, settings = $4, plan = $5, plan_status = $6,
		        is_active = $7, updated_at = $8
		 WHERE id = $1`,
		t.ID, t.Name, t.Domain, settings, t.Plan, t.PlanStatus, t.IsActive, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	var settings []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Domain, &settings, &t.Plan,
		&t.PlanStatus, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &t.Settings); err != nil {
			return nil, fmt.Errorf("decode tenant settings: %w", err)
		}
	}
	return &t, nil
}
