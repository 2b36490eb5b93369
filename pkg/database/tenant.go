package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// WithTenantRLS executes a function with RLS-based tenant isolation.
// This is the isolation mechanism for pooled multi-tenancy: all tenants
// share one schema, and row-level security policies filter by tenant id.
//
// Usage in repositories:
//
//	tenantID, err := tenant.TenantID(ctx)
//	if err != nil { return err }
//	err = r.db.WithTenantRLS(ctx, tenantID, func(ctx context.Context) error {
//	    return r.db.GetContext(ctx, &st, "SELECT * FROM staff WHERE id = $1", id)
//	})
//
// How it works:
//  1. Starts a transaction
//  2. Sets "SET LOCAL app.current_tenant = '<tenant-uuid>'"
//  3. RLS policies filter rows: USING (tenant_id = current_setting('app.current_tenant')::uuid)
//  4. Commits the transaction (SET LOCAL is transaction-scoped, so pooled
//     connections are handed back clean)
//
// Because the whole callback runs in one transaction, multi-statement
// mutations (attendance record write + staff overtime counter adjustment)
// are atomic: either both land or neither does.
func (db *DB) WithTenantRLS(ctx context.Context, tenantID string, fn func(context.Context) error) error {
	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		// SET LOCAL doesn't support parameterized queries, so the value is
		// interpolated. tenantID is a UUID validated upstream, not raw input.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL app.current_tenant = '%s'", tenantID)); err != nil {
			return fmt.Errorf("failed to set app.current_tenant to %s: %w", tenantID, err)
		}

		// Store transaction in context so the DB query helpers use it
		txCtx := context.WithValue(ctx, txKey{}, tx)

		return fn(txCtx)
	})
}

// getTx extracts the transaction from context if present
func (db *DB) getTx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}
