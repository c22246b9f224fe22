package crm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportdesk/exportdesk/internal/cache"
	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

func onboardInput(slug string) crm.OnboardTenantInput {
	return crm.OnboardTenantInput{
		Name:          "Acme Exports",
		Slug:          slug,
		AdminEmail:    "admin@" + slug + ".example.com",
		AdminPassword: "correct-horse-battery",
		AdminFirst:    "Ada",
		AdminLast:     "Lovelace",
	}
}

func TestTenantOnboard_CreatesTenantAndAdmin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tenant, admin, err := env.svc.Tenants.Onboard(ctx, onboardInput("acme"))
	require.NoError(t, err)

	assert.Equal(t, "acme", tenant.Slug)
	assert.Equal(t, models.PlanStatusTrialing, tenant.PlanStatus)
	assert.True(t, tenant.IsActive)

	assert.Equal(t, tenant.ID, admin.TenantID)
	assert.Equal(t, []string{models.RoleAdmin}, admin.Roles)
	assert.NotEmpty(t, admin.PasswordHash)
	assert.NotEqual(t, "correct-horse-battery", admin.PasswordHash)

	// Both rows got audit entries attributed to the new admin.
	tenantEntries := env.store.entriesFor(tenant.ID)
	require.Len(t, tenantEntries, 1)
	assert.Equal(t, admin.ID, tenantEntries[0].ActorID)
	adminEntries := env.store.entriesFor(admin.ID)
	require.Len(t, adminEntries, 1)
}

func TestTenantOnboard_DuplicateSlug(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, _, err := env.svc.Tenants.Onboard(ctx, onboardInput("acme"))
	require.NoError(t, err)

	in := onboardInput("acme")
	in.AdminEmail = "other@acme.example.com"
	_, _, err = env.svc.Tenants.Onboard(ctx, in)
	assert.ErrorIs(t, err, store.ErrDuplicateSlug)

	// The losing attempt left nothing behind.
	tenants, total, listErr := env.store.ListTenants(ctx, store.TenantFilter{})
	require.NoError(t, listErr)
	assert.Equal(t, 1, total)
	assert.Len(t, tenants, 1)
}

func TestTenantOnboard_InvalidSlug(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for _, slug := range []string{"", "A", "Bad Slug", "UPPER", "x"} {
		in := onboardInput(slug)
		_, _, err := env.svc.Tenants.Onboard(ctx, in)
		var vErr *crm.ValidationError
		assert.True(t, errors.As(err, &vErr), "slug %q should be rejected", slug)
	}
}

func TestTenantGet_CachesRow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	got, err := env.svc.Tenants.Get(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, p.TenantID, got.ID)

	// The second read is served from cache.
	_, ok, err := env.cache.Get(ctx, cache.TenantKey(p.TenantID))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTenantUpdate_SlugImmutableAndCacheInvalidated(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	// Warm the cache.
	_, err := env.svc.Tenants.Get(ctx, p)
	require.NoError(t, err)

	name := "Acme Global"
	updated, err := env.svc.Tenants.Update(ctx, p, crm.UpdateTenantInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Global", updated.Name)
	assert.Equal(t, "acme", updated.Slug)

	_, ok, err := env.cache.Get(ctx, cache.TenantKey(p.TenantID))
	require.NoError(t, err)
	assert.False(t, ok, "stale cache entry should be gone")
}

func TestTenantUpdate_RejectsUnknownPlanStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	bad := "comped"
	_, err := env.svc.Tenants.Update(ctx, p, crm.UpdateTenantInput{PlanStatus: &bad})
	var vErr *crm.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "plan_status", vErr.Field)
}

func TestTenantDeactivate_SoftDeletesAndAudits(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedTenant(t, "acme")

	require.NoError(t, env.svc.Tenants.Deactivate(ctx, p))

	got, err := env.store.GetTenant(ctx, p.TenantID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	entries := env.store.entriesFor(p.TenantID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionDelete, entries[0].Action)
}
