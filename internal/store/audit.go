package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/exportdesk/exportdesk/pkg/models"
)

func (s *PostgresStore) CreateAuditEntry(ctx context.Context, e *models.AuditLogEntry) error {
	oldValues, newValues, err := encodeSnapshots(e)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO audit_logs (id, tenant_id, entity_type, entity_id, action, old_values,
		                         new_values, actor_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.TenantID, e.EntityType, e.EntityID, e.Action, oldValues,
		newValues, e.ActorID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries returns entries ordered by creation time ascending, the
// natural reading order for a change history.
func (s *PostgresStore) ListAuditEntries(ctx context.Context, filter AuditFilter) ([]*models.AuditLogEntry, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.EntityType != "" {
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", argIdx))
		args = append(args, filter.EntityType)
		argIdx++
	}
	if filter.EntityID != nil {
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", argIdx))
		args = append(args, *filter.EntityID)
		argIdx++
	}
	if filter.ActorID != nil {
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", argIdx))
		args = append(args, *filter.ActorID)
		argIdx++
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filter.From)
		argIdx++
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, filter.To)
		argIdx++
	}
	where := joinAnd(conditions)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(
		`SELECT id, tenant_id, entity_type, entity_id, action, old_values, new_values, actor_id, created_at
		 FROM audit_logs WHERE %s ORDER BY created_at ASC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		var oldValues, newValues []byte
		if err := rows.Scan(&e.ID, &e.TenantID, &e.EntityType, &e.EntityID, &e.Action,
			&oldValues, &newValues, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		if err := decodeSnapshot(oldValues, &e.OldValues); err != nil {
			return nil, 0, err
		}
		if err := decodeSnapshot(newValues, &e.NewValues); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}

func encodeSnapshots(e *models.AuditLogEntry) (oldValues, newValues []byte, err error) {
	if e.OldValues != nil {
		if oldValues, err = json.Marshal(e.OldValues); err != nil {
			return nil, nil, fmt.Errorf("encode old values: %w", err)
		}
	}
	if e.NewValues != nil {
		if newValues, err = json.Marshal(e.NewValues); err != nil {
			return nil, nil, fmt.Errorf("encode new values: %w", err)
		}
	}
	return oldValues, newValues, nil
}

func decodeSnapshot(raw []byte, dst *models.Snapshot) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return nil
}
