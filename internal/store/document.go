package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/exportdesk/exportdesk/pkg/models"
)

const documentColumns = `id, tenant_id, file_name, content_type, size_bytes, storage_key, title,
	document_type, version, parent_id, entity_type, entity_id, uploaded_by, is_active,
	created_at, updated_at`

func (s *PostgresStore) CreateDocument(ctx context.Context, d *models.Document) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO documents (id, tenant_id, file_name, content_type, size_bytes, storage_key,
		                        title, document_type, version, parent_id, entity_type, entity_id,
		                        uploaded_by, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		d.ID, d.TenantID, d.FileName, d.ContentType, d.SizeBytes, d.StorageKey,
		d.Title, d.DocumentType, d.Version, d.ParentID, d.EntityType, d.EntityID,
		d.UploadedBy, d.IsActive, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id, tenantID uuid.UUID) (*models.Document, error) {
	d, err := scanDocument(s.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, filter DocumentFilter) ([]*models.Document, int, error) {
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
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	where := joinAnd(conditions)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT `+documentColumns+` FROM documents WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

// UpdateDocument never touches tenant_id, the version chain, or the entity
// reference; those are fixed at upload time.
func (s *PostgresStore) UpdateDocument(ctx context.Context, d *models.Document) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE documents SET title = $3, document_type = $4, is_active = $5, updated_at = $6
		 WHERE id = $1 AND tenant_id = $2`,
		d.ID, d.TenantID, d.Title, d.DocumentType, d.IsActive, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	if err := row.Scan(&d.ID, &d.TenantID, &d.FileName, &d.ContentType, &d.SizeBytes,
		&d.StorageKey, &d.Title, &d.DocumentType, &d.Version, &d.ParentID,
		&d.EntityType, &d.EntityID, &d.UploadedBy, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
