package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/audit"
	"github.com/exportdesk/exportdesk/internal/cache"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// tenantCacheTTL bounds how stale a cached tenant row may be.
const tenantCacheTTL = 5 * time.Minute

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// TenantService manages the tenant registry. Slugs are globally unique and
// immutable; tenants are deactivated, never deleted.
type TenantService struct {
	store store.Store
	audit *audit.Recorder
	cache cache.Cache
	now   func() time.Time
}

// OnboardTenantInput creates a tenant together with its first admin user.
type OnboardTenantInput struct {
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Domain        string            `json:"domain"`
	Settings      map[string]string `json:"settings"`
	Plan          string            `json:"plan"`
	AdminEmail    string            `json:"admin_email"`
	AdminPassword string            `json:"admin_password"`
	AdminFirst    string            `json:"admin_first_name"`
	AdminLast     string            `json:"admin_last_name"`
}

// UpdateTenantInput carries the mutable tenant fields. Nil means unchanged;
// the slug is deliberately absent.
type UpdateTenantInput struct {
	Name       *string            `json:"name"`
	Domain     *string            `json:"domain"`
	Settings   *map[string]string `json:"settings"`
	Plan       *string            `json:"plan"`
	PlanStatus *string            `json:"plan_status"`
}

// Onboard provisions a tenant and its first admin user in one transaction.
// Both rows get audit entries attributed to the new admin.
func (s *TenantService) Onboard(ctx context.Context, in OnboardTenantInput) (*models.Tenant, *models.User, error) {
	if in.Name == "" {
		return nil, nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !slugPattern.MatchString(in.Slug) {
		return nil, nil, &ValidationError{Field: "slug", Reason: "must be 2-63 lowercase letters, digits or hyphens"}
	}
	if in.AdminEmail == "" {
		return nil, nil, &ValidationError{Field: "admin_email", Reason: "must not be empty"}
	}
	hash, err := hashPassword(in.AdminPassword)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	t := &models.Tenant{
		ID:         uuid.New(),
		Name:       in.Name,
		Slug:       in.Slug,
		Domain:     in.Domain,
		Settings:   in.Settings,
		Plan:       in.Plan,
		PlanStatus: models.PlanStatusTrialing,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if t.Settings == nil {
		t.Settings = map[string]string{}
	}
	if t.Plan == "" {
		t.Plan = "starter"
	}
	u := &models.User{
		ID:           uuid.New(),
		TenantID:     t.ID,
		Email:        in.AdminEmail,
		PasswordHash: hash,
		FirstName:    in.AdminFirst,
		LastName:     in.AdminLast,
		Roles:        []string{models.RoleAdmin},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The admin does not exist until this transaction, so it acts as the
	// principal for its own onboarding entries.
	p := models.Principal{UserID: u.ID, TenantID: t.ID, Roles: u.Roles}

	err = s.store.Tx(ctx, func(tx store.Store) error {
		if _, err := tx.GetTenantBySlug(ctx, in.Slug); err == nil {
			return store.ErrDuplicateSlug
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.CreateTenant(ctx, t); err != nil {
			return err
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		if err := s.audit.Created(ctx, tx, p, models.EntityTenant, t.ID, t.Snapshot()); err != nil {
			return err
		}
		return s.audit.Created(ctx, tx, p, models.EntityUser, u.ID, u.Snapshot())
	})
	if err != nil {
		return nil, nil, err
	}
	return t, u, nil
}

// Get returns the principal's own tenant, served from cache when possible.
func (s *TenantService) Get(ctx context.Context, p models.Principal) (*models.Tenant, error) {
	key := cache.TenantKey(p.TenantID)
	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var t models.Tenant
		if err := json.Unmarshal(raw, &t); err == nil {
			return &t, nil
		}
	}

	t, err := s.store.GetTenant(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(t); err == nil {
		// Cache failures are not the caller's problem.
		_ = s.cache.Set(ctx, key, raw, tenantCacheTTL)
	}
	return t, nil
}

// GetBySlug resolves a tenant by its public slug. Used during login, before
// any principal exists.
func (s *TenantService) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	return s.store.GetTenantBySlug(ctx, slug)
}

// Update changes the principal's own tenant. The slug is never touched.
func (s *TenantService) Update(ctx context.Context, p models.Principal, in UpdateTenantInput) (*models.Tenant, error) {
	var updated *models.Tenant
	err := s.store.Tx(ctx, func(tx store.Store) error {
		t, err := tx.GetTenant(ctx, p.TenantID)
		if err != nil {
			return err
		}
		before := t.Snapshot()

		if in.Name != nil {
			if *in.Name == "" {
				return &ValidationError{Field: "name", Reason: "must not be empty"}
			}
			t.Name = *in.Name
		}
		if in.Domain != nil {
			t.Domain = *in.Domain
		}
		if in.Settings != nil {
			t.Settings = *in.Settings
		}
		if in.Plan != nil {
			t.Plan = *in.Plan
		}
		if in.PlanStatus != nil {
			switch *in.PlanStatus {
			case models.PlanStatusActive, models.PlanStatusTrialing, models.PlanStatusSuspended:
			default:
				return &ValidationError{Field: "plan_status", Reason: fmt.Sprintf("unknown status %q", *in.PlanStatus)}
			}
			t.PlanStatus = *in.PlanStatus
		}
		t.UpdatedAt = s.now()

		if err := tx.UpdateTenant(ctx, t); err != nil {
			return err
		}
		if err := s.audit.Updated(ctx, tx, p, models.EntityTenant, t.ID, before, t.Snapshot()); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, updated)
	return updated, nil
}

// Deactivate soft-deletes the principal's tenant. Child rows keep their own
// active flags; aggregate views filter on the tenant flag instead.
func (s *TenantService) Deactivate(ctx context.Context, p models.Principal) error {
	var deactivated *models.Tenant
	err := s.store.Tx(ctx, func(tx store.Store) error {
		t, err := tx.GetTenant(ctx, p.TenantID)
		if err != nil {
			return err
		}
		if !t.IsActive {
			return nil
		}
		before := t.Snapshot()
		t.IsActive = false
		t.UpdatedAt = s.now()
		if err := tx.UpdateTenant(ctx, t); err != nil {
			return err
		}
		if err := s.audit.Deleted(ctx, tx, p, models.EntityTenant, t.ID, before); err != nil {
			return err
		}
		deactivated = t
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, deactivated)
	return nil
}

func (s *TenantService) invalidate(ctx context.Context, t *models.Tenant) {
	if t == nil {
		return
	}
	_ = s.cache.Delete(ctx, cache.TenantKey(t.ID))
	_ = s.cache.Delete(ctx, cache.TenantSlugKey(t.Slug))
}
