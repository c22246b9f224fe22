package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/exportdesk/exportdesk/internal/audit"
	"github.com/exportdesk/exportdesk/internal/scope"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

const minPasswordLength = 8

func hashPassword(plain string) (string, error) {
	if len(plain) < minPasswordLength {
		return "", &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func validRoles(roles []string) error {
	if len(roles) == 0 {
		return &ValidationError{Field: "roles", Reason: "at least one role required"}
	}
	for _, r := range roles {
		switch r {
		case models.RoleAdmin, models.RoleManager, models.RoleSales, models.RoleViewer:
		default:
			return &ValidationError{Field: "roles", Reason: fmt.Sprintf("unknown role %q", r)}
		}
	}
	return nil
}

// UserService manages accounts inside a tenant. Email is unique per tenant;
// users are deactivated, never deleted.
type UserService struct {
	store store.Store
	audit *audit.Recorder
	now   func() time.Time
}

type CreateUserInput struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Language  string   `json:"language"`
	Timezone  string   `json:"timezone"`
	Roles     []string `json:"roles"`
}

type UpdateUserInput struct {
	Password  *string   `json:"password"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Phone     *string   `json:"phone"`
	Language  *string   `json:"language"`
	Timezone  *string   `json:"timezone"`
	Roles     *[]string `json:"roles"`
}

func (s *UserService) Create(ctx context.Context, p models.Principal, in CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	if err := validRoles(in.Roles); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Language:     in.Language,
		Timezone:     in.Timezone,
		Roles:        in.Roles,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	scope.ForceTenant(p, &u.TenantID)

	err = s.store.Tx(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		return s.audit.Created(ctx, tx, p, models.EntityUser, u.ID, u.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.User, error) {
	return s.store.GetUser(ctx, id, p.TenantID)
}

func (s *UserService) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	return s.store.GetUserByEmail(ctx, tenantID, strings.ToLower(strings.TrimSpace(email)))
}

func (s *UserService) List(ctx context.Context, p models.Principal, f store.UserFilter) ([]*models.User, int, error) {
	f.TenantID = p.TenantID
	return s.store.ListUsers(ctx, f)
}

func (s *UserService) Update(ctx context.Context, p models.Principal, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	var updated *models.User
	err := s.store.Tx(ctx, func(tx store.Store) error {
		u, err := tx.GetUser(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		before := u.Snapshot()

		if in.Password != nil {
			hash, err := hashPassword(*in.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}
		if in.FirstName != nil {
			u.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			u.LastName = *in.LastName
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		if in.Language != nil {
			u.Language = *in.Language
		}
		if in.Timezone != nil {
			u.Timezone = *in.Timezone
		}
		if in.Roles != nil {
			if err := validRoles(*in.Roles); err != nil {
				return err
			}
			u.Roles = *in.Roles
		}
		u.UpdatedAt = s.now()

		if err := tx.UpdateUser(ctx, u); err != nil {
			return err
		}
		if err := s.audit.Updated(ctx, tx, p, models.EntityUser, u.ID, before, u.Snapshot()); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Deactivate(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		u, err := tx.GetUser(ctx, id, p.TenantID)
		if err != nil {
			return err
		}
		if !u.IsActive {
			return nil
		}
		before := u.Snapshot()
		u.IsActive = false
		u.UpdatedAt = s.now()
		if err := tx.UpdateUser(ctx, u); err != nil {
			return err
		}
		return s.audit.Deleted(ctx, tx, p, models.EntityUser, u.ID, before)
	})
}

// RecordLogin stamps the last login time. Not audited: reads and logins are
// outside the mutation trail.
func (s *UserService) RecordLogin(ctx context.Context, u *models.User) error {
	now := s.now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return s.store.UpdateUser(ctx, u)
}
