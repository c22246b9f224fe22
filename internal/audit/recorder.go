// Package audit writes the append-only change trail. Every mutation on a
// tenant-scoped entity produces exactly one entry, inside the same
// transaction as the mutation itself.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// Recorder produces audit entries. Timestamps are assigned here at write
// time, never taken from the client.
type Recorder struct {
	now func() time.Time
}

// NewRecorder creates a Recorder using the wall clock.
func NewRecorder() *Recorder {
	return &Recorder{now: func() time.Time { return time.Now().UTC() }}
}

// NewRecorderAt creates a Recorder with a fixed clock, for tests.
func NewRecorderAt(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// Record appends one entry through s. Callers pass the transaction-bound
// store so the entry commits or rolls back together with the business write.
// oldValues is nil on create, newValues is nil on delete.
func (r *Recorder) Record(ctx context.Context, s store.Store, p models.Principal,
	entity models.EntityType, entityID uuid.UUID, action string,
	oldValues, newValues models.Snapshot) error {

	entry := &models.AuditLogEntry{
		ID:         uuid.New(),
		TenantID:   p.TenantID,
		EntityType: entity,
		EntityID:   entityID,
		Action:     action,
		OldValues:  oldValues,
		NewValues:  newValues,
		ActorID:    p.UserID,
		CreatedAt:  r.now(),
	}
	if err := s.CreateAuditEntry(ctx, entry); err != nil {
		return fmt.Errorf("record %s on %s %s: %w", action, entity, entityID, err)
	}
	return nil
}

// Created records a create: no before state.
func (r *Recorder) Created(ctx context.Context, s store.Store, p models.Principal,
	entity models.EntityType, entityID uuid.UUID, after models.Snapshot) error {
	return r.Record(ctx, s, p, entity, entityID, models.ActionCreate, nil, after)
}

// Updated records an update with both before and after state.
func (r *Recorder) Updated(ctx context.Context, s store.Store, p models.Principal,
	entity models.EntityType, entityID uuid.UUID, before, after models.Snapshot) error {
	return r.Record(ctx, s, p, entity, entityID, models.ActionUpdate, before, after)
}

// Deleted records a soft-deactivation: no after state.
func (r *Recorder) Deleted(ctx context.Context, s store.Store, p models.Principal,
	entity models.EntityType, entityID uuid.UUID, before models.Snapshot) error {
	return r.Record(ctx, s, p, entity, entityID, models.ActionDelete, before, nil)
}
