package models_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/exportdesk/exportdesk/pkg/models"
)

func TestChangedFields(t *testing.T) {
	e := &models.AuditLogEntry{
		OldValues: models.Snapshot{"stage": "qualified", "title": "Steel coils", "value": 50000.0},
		NewValues: models.Snapshot{"stage": "proposal", "title": "Steel coils", "value": 50000.0},
	}

	changed := e.ChangedFields()
	assert.Equal(t, []string{"stage"}, changed)
}

func TestChangedFields_AddedAndRemovedKeys(t *testing.T) {
	e := &models.AuditLogEntry{
		OldValues: models.Snapshot{"outcome": "pending"},
		NewValues: models.Snapshot{"completed": true},
	}

	changed := e.ChangedFields()
	assert.ElementsMatch(t, []string{"outcome", "completed"}, changed)
}

func TestChangedFields_CreateEntry(t *testing.T) {
	e := &models.AuditLogEntry{
		NewValues: models.Snapshot{"name": "Hamburg Trading GmbH"},
	}

	assert.Equal(t, []string{"name"}, e.ChangedFields())
}

func TestChangedFields_SliceValues(t *testing.T) {
	// Roles are stored as slices; comparison must not panic.
	e := &models.AuditLogEntry{
		OldValues: models.Snapshot{"roles": []string{"sales"}},
		NewValues: models.Snapshot{"roles": []string{"sales", "manager"}},
	}

	assert.Equal(t, []string{"roles"}, e.ChangedFields())
}

func TestWeightedValue(t *testing.T) {
	d := &models.Deal{Value: 50000, Probability: 60}
	assert.InDelta(t, 30000, d.WeightedValue(), 0.001)

	d.Probability = 0
	assert.Zero(t, d.WeightedValue())
}

func TestValidDealStage(t *testing.T) {
	for _, s := range []string{"lead", "qualified", "proposal", "negotiation", "won", "lost"} {
		assert.True(t, models.ValidDealStage(s), s)
	}
	assert.False(t, models.ValidDealStage("closed"))
	assert.False(t, models.ValidDealStage(""))
}

func TestValidEntityType(t *testing.T) {
	for _, e := range []models.EntityType{
		models.EntityTenant, models.EntityUser, models.EntityCompany,
		models.EntityAddress, models.EntityContact, models.EntityDeal,
		models.EntityActivity, models.EntityOrder, models.EntityShipment,
		models.EntityDocument,
	} {
		assert.True(t, models.ValidEntityType(e), string(e))
	}
	assert.False(t, models.ValidEntityType("spaceship"))
	assert.False(t, models.ValidEntityType(""))
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "processing", "shipped", "delivered", "cancelled"} {
		assert.True(t, models.ValidOrderStatus(s), s)
	}
	assert.False(t, models.ValidOrderStatus("lost"))
}

func TestValidShipmentStatus(t *testing.T) {
	for _, s := range []string{"preparing", "shipped", "in_transit", "delivered", "returned"} {
		assert.True(t, models.ValidShipmentStatus(s), s)
	}
	assert.False(t, models.ValidShipmentStatus("lost"))
}

func TestShipmentOverdue(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	due := now.Add(-24 * time.Hour)

	sh := models.Shipment{Status: models.ShipmentStatusInTransit, EstimatedDeliveryDate: &due}
	assert.True(t, sh.Overdue(now))

	sh.Status = models.ShipmentStatusDelivered
	assert.False(t, sh.Overdue(now))

	sh.Status = models.ShipmentStatusReturned
	assert.False(t, sh.Overdue(now))

	none := models.Shipment{Status: models.ShipmentStatusInTransit}
	assert.False(t, none.Overdue(now))
}

func TestPrincipalHasRole(t *testing.T) {
	p := models.Principal{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Roles:    []string{models.RoleSales, models.RoleManager},
	}

	assert.True(t, p.HasRole(models.RoleSales))
	assert.True(t, p.HasRole(models.RoleManager))
	assert.False(t, p.HasRole(models.RoleAdmin))
	assert.False(t, models.Principal{}.HasRole(models.RoleViewer))
}

func TestDealSnapshot_OptionalReferences(t *testing.T) {
	companyID := uuid.New()
	d := &models.Deal{Title: "Steel coils", Stage: models.StageLead, CompanyID: &companyID}

	s := d.Snapshot()
	assert.Equal(t, companyID.String(), s["company_id"])
	_, hasContact := s["contact_id"]
	assert.False(t, hasContact)
}
