package crm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

func TestAuditTrail_CreateRecordsActorAndAfterState(t *testing.T) {
	env := newTestEnv()
	p := env.seedTenant(t, "acme")

	c := env.seedCompany(t, p, "Hamburg Trading GmbH")

	entries := env.store.entriesFor(c.ID)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, models.ActionCreate, e.Action)
	assert.Equal(t, models.EntityCompany, e.EntityType)
	assert.Equal(t, p.UserID, e.ActorID)
	assert.Equal(t, p.TenantID, e.TenantID)
	assert.Nil(t, e.OldValues)
	require.NotNil(t, e.NewValues)
	assert.Equal(t, "Hamburg Trading GmbH", e.NewValues["name"])
	assert.False(t, e.CreatedAt.IsZero())
}

func TestAuditTrail_UpdateRecordsBeforeAndAfter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")
	company := env.seedCompany(t, p, "Hamburg Trading GmbH")

	d, err := env.svc.Deals.Create(ctx, p, crm.CreateDealInput{
		Title:     "Container order Q3",
		CompanyID: &company.ID,
		Stage:     models.StageQualified,
		Value:     120000,
	})
	require.NoError(t, err)

	stage := models.StageProposal
	_, err = env.svc.Deals.Update(ctx, p, d.ID, crm.UpdateDealInput{Stage: &stage})
	require.NoError(t, err)

	entries := env.store.entriesFor(d.ID)
	require.Len(t, entries, 2)
	upd := entries[1]
	assert.Equal(t, models.ActionUpdate, upd.Action)
	assert.Equal(t, models.StageQualified, upd.OldValues["stage"])
	assert.Equal(t, models.StageProposal, upd.NewValues["stage"])
	assert.Equal(t, p.UserID, upd.ActorID)

	changed := upd.ChangedFields()
	assert.Contains(t, changed, "stage")
	assert.NotContains(t, changed, "title")
}

func TestAuditTrail_DeactivateRecordsDeleteWithBeforeState(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")
	c := env.seedCompany(t, p, "Hamburg Trading GmbH")

	require.NoError(t, env.svc.Companies.Deactivate(ctx, p, c.ID))

	entries := env.store.entriesFor(c.ID)
	require.Len(t, entries, 2)
	del := entries[1]
	assert.Equal(t, models.ActionDelete, del.Action)
	require.NotNil(t, del.OldValues)
	assert.Equal(t, true, del.OldValues["is_active"])
	assert.Nil(t, del.NewValues)

	// The row still exists, flagged inactive.
	got, err := env.svc.Companies.Get(ctx, p, c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestAuditTrail_DeactivateTwiceRecordsOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")
	c := env.seedCompany(t, p, "Hamburg Trading GmbH")

	require.NoError(t, env.svc.Companies.Deactivate(ctx, p, c.ID))
	require.NoError(t, env.svc.Companies.Deactivate(ctx, p, c.ID))

	entries := env.store.entriesFor(c.ID)
	assert.Len(t, entries, 2) // create + one delete
}

func TestAuditTrail_WriteFailureRollsBackMutation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	env.store.failAudit = true

	_, err := env.svc.Companies.Create(ctx, p, crm.CreateCompanyInput{Name: "Hamburg Trading GmbH"})
	require.ErrorIs(t, err, errAuditUnavailable)

	// The business write rolled back with the audit write.
	companies, total, listErr := env.svc.Companies.List(ctx, p, store.CompanyFilter{})
	require.NoError(t, listErr)
	assert.Zero(t, total)
	assert.Empty(t, companies)
}

func TestAuditTrail_UpdateFailureLeavesOldState(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")
	c := env.seedCompany(t, p, "Hamburg Trading GmbH")

	env.store.failAudit = true
	name := "Renamed"
	_, err := env.svc.Companies.Update(ctx, p, c.ID, crm.UpdateCompanyInput{Name: &name})
	require.ErrorIs(t, err, errAuditUnavailable)

	env.store.failAudit = false
	got, err := env.svc.Companies.Get(ctx, p, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hamburg Trading GmbH", got.Name)
}

func TestAuditTrail_ChronologicalOrderAndFilters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	c := env.seedCompany(t, p, "A")
	name := "B"
	_, err := env.svc.Companies.Update(ctx, p, c.ID, crm.UpdateCompanyInput{Name: &name})
	require.NoError(t, err)
	require.NoError(t, env.svc.Companies.Deactivate(ctx, p, c.ID))

	entries, total, err := env.svc.Audit.List(ctx, p, store.AuditFilter{
		EntityType: models.EntityCompany,
		EntityID:   &c.ID,
	})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	assert.Equal(t, models.ActionCreate, entries[0].Action)
	assert.Equal(t, models.ActionUpdate, entries[1].Action)
	assert.Equal(t, models.ActionDelete, entries[2].Action)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].CreatedAt.Before(entries[i].CreatedAt))
	}
}
