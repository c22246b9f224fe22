package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exportdesk/exportdesk/pkg/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every query
// method works identically inside and outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	db querier
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(*pgxpool.Pool); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Tx runs fn against a transaction-bound store. A nested call opens a
// savepoint, which pgx handles transparently.
func (s *PostgresStore) Tx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresStore{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// entityTables maps entity type tags to their backing tables. This is the
// one registry that polymorphic references are resolved through; adding an
// entity type means adding exactly one row here.
var entityTables = map[models.EntityType]string{
	models.EntityTenant:   "tenants",
	models.EntityUser:     "users",
	models.EntityCompany:  "companies",
	models.EntityAddress:  "company_addresses",
	models.EntityContact:  "contacts",
	models.EntityDeal:     "deals",
	models.EntityActivity: "deal_activities",
	models.EntityOrder:    "orders",
	models.EntityShipment: "shipments",
	models.EntityDocument: "documents",
}

func (s *PostgresStore) EntityTenant(ctx context.Context, entity models.EntityType, id uuid.UUID) (uuid.UUID, error) {
	table, ok := entityTables[entity]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown entity type %q", entity)
	}

	// tenants own themselves
	query := fmt.Sprintf(`SELECT tenant_id FROM %s WHERE id = $1 FOR SHARE`, table)
	if entity == models.EntityTenant {
		query = `SELECT id FROM tenants WHERE id = $1 FOR SHARE`
	}

	var tenantID uuid.UUID
	err := s.db.QueryRow(ctx, query, id).Scan(&tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve entity tenant: %w", err)
	}
	return tenantID, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// constraintName returns the violated constraint for a pg error, or "".
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func joinAnd(conditions []string) string {
	return strings.Join(conditions, " AND ")
}

// normalizePage clamps pagination parameters to sane bounds.
func normalizePage(page, limit int) (int, int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return page, limit, (page - 1) * limit
}
