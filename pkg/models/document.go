package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is file metadata attached to any entity through a typed
// (entity_type, entity_id) reference. ParentID chains versions: version N
// points at version N-1.
type Document struct {
	ID           uuid.UUID  `db:"id"            json:"id"`
	TenantID     uuid.UUID  `db:"tenant_id"     json:"tenant_id"`
	FileName     string     `db:"file_name"     json:"file_name"`
	ContentType  string     `db:"content_type"  json:"content_type"`
	SizeBytes    int64      `db:"size_bytes"    json:"size_bytes"`
	StorageKey   string     `db:"storage_key"   json:"storage_key"`
	Title        string     `db:"title"         json:"title"`
	DocumentType string     `db:"document_type" json:"document_type"`
	Version      int        `db:"version"       json:"version"`
	ParentID     *uuid.UUID `db:"parent_id"     json:"parent_id,omitempty"`
	EntityType   EntityType `db:"entity_type"   json:"entity_type"`
	EntityID     uuid.UUID  `db:"entity_id"     json:"entity_id"`
	UploadedBy   uuid.UUID  `db:"uploaded_by"   json:"uploaded_by"`
	IsActive     bool       `db:"is_active"     json:"is_active"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}

func (d *Document) Snapshot() Snapshot {
	s := Snapshot{
		"file_name":     d.FileName,
		"content_type":  d.ContentType,
		"size_bytes":    d.SizeBytes,
		"storage_key":   d.StorageKey,
		"title":         d.Title,
		"document_type": d.DocumentType,
		"version":       d.Version,
		"entity_type":   string(d.EntityType),
		"entity_id":     d.EntityID.String(),
		"is_active":     d.IsActive,
	}
	if d.ParentID != nil {
		s["parent_id"] = d.ParentID.String()
	}
	return s
}
