package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/posterzone/storefront/internal/domain/audit"
)

const (
	insertAuditSQL = `INSERT INTO audit_logs (id, actor, action, entity, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6)`

	listAuditSQL = `SELECT id, actor, action, entity, entity_id, detail, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1`
)

var _ audit.Repository = (*AuditRepository)(nil)

// AuditRepository implements audit.Repository backed by PostgreSQL.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns an AuditRepository that uses the given pool.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Append writes one audit entry.
func (r *AuditRepository) Append(ctx context.Context, e audit.Entry) error {
	_, err := r.pool.Exec(ctx, insertAuditSQL,
		e.ID, e.Actor, e.Action, e.Entity, e.EntityID, e.Detail,
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]audit.Entry, error) {
	rows, err := r.pool.Query(ctx, listAuditSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (audit.Entry, error) {
		var e audit.Entry
		err := row.Scan(&e.ID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &e.Detail, &e.CreatedAt)
		return e, err
	})
}
