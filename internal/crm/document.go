package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/audit"
	"github.com/exportdesk/exportdesk/internal/scope"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// DocumentService manages document metadata. Documents attach to any entity
// through a typed reference, which the schema cannot enforce, so the owning
// row is resolved and tenant-checked here before every write.
type DocumentService struct {
	store store.Store
	audit *audit.Recorder
	now   func() time.Time
}

type CreateDocumentInput struct {
	FileName     string            `json:"file_name"`
	ContentType  string            `json:"content_type"`
	SizeBytes    int64             `json:"size_bytes"`
	StorageKey   string            `json:"storage_key"`
	Title        string            `json:"title"`
	DocumentType string            `json:"document_type"`
	ParentID     *uuid.UUID        `json:"parent_id"`
	EntityType   models.EntityType `json:"entity_type"`
	EntityID     uuid.UUID         `json:"entity_id"`
}

type UpdateDocumentInput struct {
	Title        *string `json:"title"`
	DocumentType *string `json:"document_type"`
}

func (s *DocumentService) Create(ctx context.Context, p models.Principal, in CreateDocumentInput) (*models.Document, error) {
	if in.FileName == "" {
		return nil, &ValidationError{Field: "file_name", Reason: "must not be empty"}
	}
	if in.StorageKey == "" {
		return nil, &ValidationError{Field: "storage_key", Reason: "must not be empty"}
	}
	if !models.ValidEntityType(in.EntityType) {
		return nil, &ValidationError{Field: "entity_type", Reason: fmt.Sprintf("unknown entity type %q", in.EntityType)}
	}
	if in.EntityID == uuid.Nil {
		return nil, &ValidationError{Field: "entity_id", Reason: "must not be empty"}
	}

	now := s.now()
	d := &models.Document{
		ID:           uuid.New(),
		FileName:     in.FileName,
		ContentType:  in.ContentType,
		SizeBytes:    in.SizeBytes,
		StorageKey:   in.StorageKey,
		Title:        in.Title,
		DocumentType: in.DocumentType,
		Version:      1,
		ParentID:     in.ParentID,
		EntityType:   in.EntityType,
		EntityID:     in.EntityID,
		UploadedBy:   p.UserID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	scope.ForceTenant(p, &d.TenantID)

	err := s.store.Tx(ctx, func(tx store.Store) error {
		if err := scope.CheckReference(ctx, tx, p, d.EntityType, d.EntityID); err != nil {
			return referenceError(err, "documents_entity")
		}
		if d.ParentID != nil {
			parent, err := tx.GetDocument(ctx, *d.ParentID, p.TenantID)
			if err != nil {
				return referenceError(err, "documents_parent")
			}
			if parent.EntityType != d.EntityType || parent.EntityID != d.EntityID {
				return &ReferentialIntegrityError{Constraint: "documents_parent_entity_match"}
			}
			d.Version = parent.Version + 1
		}
		if err := tx.CreateDocument(ctx, d); err != nil {
			return err
		}
		return s.audit.Created(ctx, tx, p, models.EntityDocument, d.ID, d.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DocumentService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Document, error) {
	return s.store.GetDocument(ctx, id, p.TenantID)
}

func (s *DocumentService) List(ctx context.Context, p models.Principal, f store.DocumentFilter) ([]*models.Document, int, error) {
	f.TenantID = p.TenantID
	return s.store.ListDocuments(ctx, f)
}

// Update changes display metadata only. The file, the version chain and the
// entity reference are immutable; a new version is a new Create with
// ParentID set.
func (s *DocumentService) Update(ctx context.Context, p models.Principal, id uuid.UUID, in UpdateDocumentInput) (*models.Document, error) {
	var updated *models.Document
	err := s.store.Tx(ctx, func(tx store.Store) error {
		d, err := tx.GetDocument(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		before := d.Snapshot()

		if in.Title != nil {
			d.Title = *in.Title
		}
		if in.DocumentType != nil {
			d.DocumentType = *in.DocumentType
		}
		d.UpdatedAt = s.now()

		if err := tx.UpdateDocument(ctx, d); err != nil {
			return err
		}
		if err := s.audit.Updated(ctx, tx, p, models.EntityDocument, d.ID, before, d.Snapshot()); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *DocumentService) Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		d, err := tx.GetDocument(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		if !d.IsActive {
			return nil
		}
		before := d.Snapshot()
		d.IsActive = false
		d.UpdatedAt = s.now()
		if err := tx.UpdateDocument(ctx, d); err != nil {
			return err
		}
		return s.audit.Deleted(ctx, tx, p, models.EntityDocument, d.ID, before)
	})
}
