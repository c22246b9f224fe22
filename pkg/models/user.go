package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account inside a tenant. Credentials are stored as an opaque
// bcrypt hash; only deactivation is supported, never hard deletion.
type User struct {
	ID           uuid.UUID  `db:"id"            json:"id"`
	TenantID     uuid.UUID  `db:"tenant_id"     json:"tenant_id"`
	Email        string     `db:"email"         json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name"    json:"first_name"`
	LastName     string     `db:"last_name"     json:"last_name"`
	Phone        string     `db:"phone"         json:"phone"`
	Language     string     `db:"language"      json:"language"`
	Timezone     string     `db:"timezone"      json:"timezone"`
	Roles        []string   `db:"roles"         json:"roles"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	IsActive     bool       `db:"is_active"     json:"is_active"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}

// FullName joins first and last name, falling back to the email address.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Email
}

func (u *User) Snapshot() Snapshot {
	return Snapshot{
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"phone":      u.Phone,
		"language":   u.Language,
		"timezone":   u.Timezone,
		"roles":      u.Roles,
		"is_active":  u.IsActive,
	}
}
