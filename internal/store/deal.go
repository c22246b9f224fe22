package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/exportdesk/exportdesk/pkg/models"
)

const dealColumns = `d.id, d.tenant_id, d.company_id, d.contact_id, d.title, d.description,
	d.stage, d.value, d.currency, d.probability, d.expected_close_date, d.assigned_to,
	d.is_active, d.created_at, d.updated_at`

func (s *PostgresStore) CreateDeal(ctx context.Context, d *models.Deal) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO deals (id, tenant_id, company_id, contact_id, title, description, stage,
		                    value, currency, probability, expected_close_date, assigned_to,
		                    is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		d.ID, d.TenantID, d.CompanyID, d.ContactID, d.Title, d.Description, d.Stage,
		d.Value, d.Currency, d.Probability, d.ExpectedCloseDate, d.AssignedTo,
		d.IsActive, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create deal: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDeal(ctx context.Context, id, tenantID uuid.UUID) (*models.Deal, error) {
	d, err := scanDeal(s.db.QueryRow(ctx,
		`SELECT `+dealColumns+` FROM deals d WHERE d.id = $1 AND d.tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDeals(ctx context.Context, filter DealFilter) ([]*models.Deal, int, error) {
	from := "deals d"
	if filter.ActiveCompanyOnly {
		from = `deals d JOIN companies co
		        ON co.id = d.company_id AND co.tenant_id = d.tenant_id AND co.is_active`
	}

	conditions := []string{"d.tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.CompanyID != nil {
		conditions = append(conditions, fmt.Sprintf("d.company_id = $%d", argIdx))
		args = append(args, *filter.CompanyID)
		argIdx++
	}
	if filter.Stage != "" {
		conditions = append(conditions, fmt.Sprintf("d.stage = $%d", argIdx))
		args = append(args, filter.Stage)
		argIdx++
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "d.is_active")
	}
	where := joinAnd(conditions)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, from, where)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deals: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT `+dealColumns+` FROM %s WHERE %s ORDER BY d.created_at DESC LIMIT $%d OFFSET $%d`,
		from, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan deal: %w", err)
		}
		deals = append(deals, d)
	}
	return deals, total, rows.Err()
}

// UpdateDeal never touches tenant_id.
func (s *PostgresStore) UpdateDeal(ctx context.Context, d *models.Deal) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE deals SET company_id = $3, contact_id = $4, title = $5, description = $6,
		        stage = $7, value = $8, currency = $9, probability = $10,
		        expected_close_date = $11, assigned_to = $12, is_active = $13, updated_at = $14
		 WHERE id = $1 AND tenant_id = $2`,
		d.ID, d.TenantID, d.CompanyID, d.ContactID, d.Title, d.Description,
		d.Stage, d.Value, d.Currency, d.Probability,
		d.ExpectedCloseDate, d.AssignedTo, d.IsActive, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDeal(row pgx.Row) (*models.Deal, error) {
	var d models.Deal
	if err := row.Scan(&d.ID, &d.TenantID, &d.CompanyID, &d.ContactID, &d.Title,
		&d.Description, &d.Stage, &d.Value, &d.Currency, &d.Probability,
		&d.ExpectedCloseDate, &d.AssignedTo, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// --- Activities ---

func (s *PostgresStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO deal_activities (id, tenant_id, deal_id, activity_type, subject, description,
		                              activity_date, duration_minutes, outcome, completed,
		                              is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.TenantID, a.DealID, a.ActivityType, a.Subject, a.Description,
		a.ActivityDate, a.DurationMinutes, a.Outcome, a.Completed,
		a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActivities(ctx context.Context, dealID, tenantID uuid.UUID) ([]*models.Activity, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, deal_id, activity_type, subject, description, activity_date,
		        duration_minutes, outcome, completed, is_active, created_at, updated_at
		 FROM deal_activities WHERE deal_id = $1 AND tenant_id = $2 ORDER BY activity_date DESC`,
		dealID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.TenantID, &a.DealID, &a.ActivityType, &a.Subject,
			&a.Description, &a.ActivityDate, &a.DurationMinutes, &a.Outcome, &a.Completed,
			&a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, &a)
	}
	return activities, rows.Err()
}
