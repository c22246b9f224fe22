package crm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/internal/scope"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

func TestTenantIsolation_ReadsHideForeignRows(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p1 := env.seedTenant(t, "acme")
	p2 := env.seedTenant(t, "globex")

	c := env.seedCompany(t, p1, "Hamburg Trading GmbH")

	// The owning tenant sees the row.
	got, err := env.svc.Companies.Get(ctx, p1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	// Another tenant gets a not-found, never an existence hint.
	_, err = env.svc.Companies.Get(ctx, p2, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTenantIsolation_ListsOnlyOwnRows(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p1 := env.seedTenant(t, "acme")
	p2 := env.seedTenant(t, "globex")

	env.seedCompany(t, p1, "A")
	env.seedCompany(t, p1, "B")
	env.seedCompany(t, p2, "C")

	companies, total, err := env.svc.Companies.List(ctx, p1, store.CompanyFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, c := range companies {
		assert.Equal(t, p1.TenantID, c.TenantID)
	}
}

func TestTenantIsolation_CreateForcesPrincipalTenant(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	c, err := env.svc.Companies.Create(ctx, p, crm.CreateCompanyInput{Name: "Rotterdam Exports BV"})
	require.NoError(t, err)
	assert.Equal(t, p.TenantID, c.TenantID)
}

func TestTenantIsolation_CrossTenantReferenceRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p1 := env.seedTenant(t, "acme")
	p2 := env.seedTenant(t, "globex")

	foreign := env.seedCompany(t, p1, "Hamburg Trading GmbH")

	// Tenant 2 tries to hang a contact off tenant 1's company.
	_, err := env.svc.Contacts.Create(ctx, p2, crm.CreateContactInput{
		FirstName: "Jan",
		LastName:  "de Vries",
		CompanyID: &foreign.ID,
	})
	assert.ErrorIs(t, err, scope.ErrCrossTenantAccess)

	// Nothing was written: no contact, no audit entry for the attempt.
	contacts, total, err := env.svc.Contacts.List(ctx, p2, store.ContactFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, contacts)

	entries, _, err := env.svc.Audit.List(ctx, p2, store.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTenantIsolation_MissingReferenceIsIntegrityError(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	ghost := uuid.New()
	_, err := env.svc.Contacts.Create(ctx, p, crm.CreateContactInput{
		FirstName: "Jan",
		CompanyID: &ghost,
	})

	var refErr *crm.ReferentialIntegrityError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "contacts_company", refErr.Constraint)
}

func TestTenantIsolation_UpdateAcrossTenantsIsNotFound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p1 := env.seedTenant(t, "acme")
	p2 := env.seedTenant(t, "globex")

	c := env.seedCompany(t, p1, "Hamburg Trading GmbH")

	name := "Hijacked"
	_, err := env.svc.Companies.Update(ctx, p2, c.ID, crm.UpdateCompanyInput{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The row is untouched.
	got, err := env.svc.Companies.Get(ctx, p1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hamburg Trading GmbH", got.Name)
}

func TestTenantIsolation_AuditTrailScoped(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p1 := env.seedTenant(t, "acme")
	p2 := env.seedTenant(t, "globex")

	env.seedCompany(t, p1, "A")
	env.seedCompany(t, p2, "B")

	entries, total, err := env.svc.Audit.List(ctx, p1, store.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	for _, e := range entries {
		assert.Equal(t, p1.TenantID, e.TenantID)
	}
}

func TestTenantIsolation_DocumentPolymorphicReference(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p1 := env.seedTenant(t, "acme")
	p2 := env.seedTenant(t, "globex")

	foreign := env.seedCompany(t, p1, "Hamburg Trading GmbH")

	_, err := env.svc.Documents.Create(ctx, p2, crm.CreateDocumentInput{
		FileName:   "invoice.pdf",
		StorageKey: "tenants/globex/invoice.pdf",
		EntityType: models.EntityCompany,
		EntityID:   foreign.ID,
	})
	assert.ErrorIs(t, err, scope.ErrCrossTenantAccess)
}
