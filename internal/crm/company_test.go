package crm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/internal/store"
)

func TestAddress_SinglePrimaryPerCompany(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")
	company := env.seedCompany(t, p, "Hamburg Trading GmbH")

	_, err := env.svc.Companies.AddAddress(ctx, p, company.ID, crm.CreateAddressInput{
		Country: "DE", City: "Hamburg", IsPrimary: true,
	})
	require.NoError(t, err)

	_, err = env.svc.Companies.AddAddress(ctx, p, company.ID, crm.CreateAddressInput{
		Country: "DE", City: "Bremen", IsPrimary: true,
	})
	var refErr *crm.ReferentialIntegrityError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "company_addresses_primary_key", refErr.Constraint)

	// A non-primary second address is fine.
	_, err = env.svc.Companies.AddAddress(ctx, p, company.ID, crm.CreateAddressInput{
		Country: "DE", City: "Bremen",
	})
	assert.NoError(t, err)
}

func TestAddress_PromoteAfterPrimaryDeactivated(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")
	company := env.seedCompany(t, p, "Hamburg Trading GmbH")

	primary, err := env.svc.Companies.AddAddress(ctx, p, company.ID, crm.CreateAddressInput{
		Country: "DE", City: "Hamburg", IsPrimary: true,
	})
	require.NoError(t, err)
	second, err := env.svc.Companies.AddAddress(ctx, p, company.ID, crm.CreateAddressInput{
		Country: "DE", City: "Bremen",
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Companies.DeactivateAddress(ctx, p, primary.ID))

	// The slot freed up.
	makePrimary := true
	_, err = env.svc.Companies.UpdateAddress(ctx, p, second.ID, crm.UpdateAddressInput{IsPrimary: &makePrimary})
	assert.NoError(t, err)
}

func TestContact_SinglePrimaryPerCompany(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")
	company := env.seedCompany(t, p, "Hamburg Trading GmbH")

	_, err := env.svc.Contacts.Create(ctx, p, crm.CreateContactInput{
		FirstName: "Jan", CompanyID: &company.ID, IsPrimary: true,
	})
	require.NoError(t, err)

	_, err = env.svc.Contacts.Create(ctx, p, crm.CreateContactInput{
		FirstName: "Petra", CompanyID: &company.ID, IsPrimary: true,
	})
	var refErr *crm.ReferentialIntegrityError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "contacts_primary_key", refErr.Constraint)
}

func TestContact_PrimaryRequiresCompany(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	_, err := env.svc.Contacts.Create(ctx, p, crm.CreateContactInput{
		FirstName: "Jan", IsPrimary: true,
	})
	var vErr *crm.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "is_primary", vErr.Field)
}

func TestCompanyDeactivate_DoesNotCascade(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")
	company := env.seedCompany(t, p, "Hamburg Trading GmbH")

	contact, err := env.svc.Contacts.Create(ctx, p, crm.CreateContactInput{
		FirstName: "Jan", CompanyID: &company.ID,
	})
	require.NoError(t, err)
	deal, err := env.svc.Deals.Create(ctx, p, crm.CreateDealInput{
		Title: "Q3", CompanyID: &company.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Companies.Deactivate(ctx, p, company.ID))

	// Children keep their own flags.
	gotContact, err := env.svc.Contacts.Get(ctx, p, contact.ID)
	require.NoError(t, err)
	assert.True(t, gotContact.IsActive)
	gotDeal, err := env.svc.Deals.Get(ctx, p, deal.ID)
	require.NoError(t, err)
	assert.True(t, gotDeal.IsActive)

	// Aggregate views filter through the company flag on demand.
	visible, total, err := env.svc.Contacts.List(ctx, p, store.ContactFilter{ActiveCompanyOnly: true})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, visible)

	all, total, err := env.svc.Contacts.List(ctx, p, store.ContactFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, all, 1)
}

func TestDeal_ValidationBounds(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	cases := []crm.CreateDealInput{
		{Title: ""},
		{Title: "x", Stage: "daydream"},
		{Title: "x", Probability: 101},
		{Title: "x", Probability: -1},
		{Title: "x", Value: -5},
	}
	for _, in := range cases {
		_, err := env.svc.Deals.Create(ctx, p, in)
		var vErr *crm.ValidationError
		assert.True(t, errors.As(err, &vErr), "input %+v should be rejected", in)
	}
}

func TestActivity_BelongsToDealInTenant(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p1 := env.seedTenant(t, "acme")
	p2 := env.seedTenant(t, "globex")
	company := env.seedCompany(t, p1, "A")

	deal, err := env.svc.Deals.Create(ctx, p1, crm.CreateDealInput{Title: "Q3", CompanyID: &company.ID})
	require.NoError(t, err)

	// Foreign tenant cannot log activity on the deal.
	_, err = env.svc.Deals.AddActivity(ctx, p2, deal.ID, crm.AddActivityInput{Subject: "call"})
	assert.Error(t, err)

	a, err := env.svc.Deals.AddActivity(ctx, p1, deal.ID, crm.AddActivityInput{
		Subject: "intro call", ActivityType: "call", DurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, p1.TenantID, a.TenantID)
	assert.False(t, a.ActivityDate.IsZero())

	list, err := env.svc.Deals.ListActivities(ctx, p1, deal.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
