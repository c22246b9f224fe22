package crm_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/exportdesk/exportdesk/internal/audit"
	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// fakeCache is a map-backed cache.Cache for service tests.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }

func (c *fakeCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

// testEnv bundles the fake store and the wired services.
type testEnv struct {
	store *fakeStore
	cache *fakeCache
	svc   *crm.Services
}

func newTestEnv() *testEnv {
	st := newFakeStore()
	ca := newFakeCache()
	clock := fakeClock()
	return &testEnv{
		store: st,
		cache: ca,
		svc:   crm.NewServicesAt(st, audit.NewRecorderAt(clock), ca, clock),
	}
}

// seedTenant creates a tenant row plus an admin principal acting inside it.
func (e *testEnv) seedTenant(t *testing.T, slug string) models.Principal {
	t.Helper()
	tenantID := uuid.New()
	userID := uuid.New()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	e.store.tenants[tenantID] = &models.Tenant{
		ID: tenantID, Name: slug, Slug: slug, Plan: "starter",
		PlanStatus: models.PlanStatusActive, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	e.store.users[userID] = &models.User{
		ID: userID, TenantID: tenantID, Email: slug + "-admin@example.com",
		Roles: []string{models.RoleAdmin}, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	return models.Principal{UserID: userID, TenantID: tenantID, Roles: []string{models.RoleAdmin}}
}

// seedCompany creates a company for the principal's tenant.
func (e *testEnv) seedCompany(t *testing.T, p models.Principal, name string) *models.Company {
	t.Helper()
	c, err := e.svc.Companies.Create(context.Background(), p, crm.CreateCompanyInput{Name: name})
	require.NoError(t, err)
	return c
}
