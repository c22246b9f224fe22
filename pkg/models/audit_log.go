package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// AuditLogEntry is one immutable record of a mutation. OldValues is nil on
// create, NewValues is nil on delete. Entries are never updated or removed.
type AuditLogEntry struct {
	ID         uuid.UUID  `db:"id"          json:"id"`
	TenantID   uuid.UUID  `db:"tenant_id"   json:"tenant_id"`
	EntityType EntityType `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID  `db:"entity_id"   json:"entity_id"`
	Action     string     `db:"action"      json:"action"`
	OldValues  Snapshot   `db:"old_values"  json:"old_values,omitempty"`
	NewValues  Snapshot   `db:"new_values"  json:"new_values,omitempty"`
	ActorID    uuid.UUID  `db:"actor_id"    json:"actor_id"`
	CreatedAt  time.Time  `db:"created_at"  json:"created_at"`
}

// ChangedFields lists field names whose value differs between the old and
// new snapshots, in no particular order. Values are compared by their
// rendered form since snapshots may hold slices.
func (e *AuditLogEntry) ChangedFields() []string {
	var changed []string
	for k, newVal := range e.NewValues {
		if oldVal, ok := e.OldValues[k]; !ok || fmt.Sprint(oldVal) != fmt.Sprint(newVal) {
			changed = append(changed, k)
		}
	}
	for k := range e.OldValues {
		if _, ok := e.NewValues[k]; !ok {
			changed = append(changed, k)
		}
	}
	return changed
}
