package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/schoolhub/schoolhub-backend/pkg/tenant"
)

// TestTenant represents a tenant (school) created for testing
type TestTenant struct {
	ID   string
	Name string
	Slug string
}

// TenantManager manages test tenants. Tenancy is pooled: all tenants share
// one set of tables partitioned by tenant_id, so tenant setup is a registry
// row plus idempotent shared migrations, and teardown deletes the tenant's
// rows.
type TenantManager struct {
	db      *sqlx.DB
	tenants []TestTenant
	mu      sync.Mutex
}

// NewTenantManager creates a new tenant manager for tests
func NewTenantManager(db *sqlx.DB) *TenantManager {
	return &TenantManager{
		db:      db,
		tenants: make([]TestTenant, 0),
	}
}

// CreateTenant registers a new tenant for testing. Each test should use its
// own tenant so tests can run in parallel against the shared tables.
func (tm *TenantManager) CreateTenant(ctx context.Context, name string) (*TestTenant, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	id := uuid.New().String()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))

	_, err := tm.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, slug, subscription_status)
		VALUES ($1, $2, $3, 'active')
		ON CONFLICT (slug) DO NOTHING
	`, id, name, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to register tenant: %w", err)
	}

	t := TestTenant{
		ID:   id,
		Name: name,
		Slug: slug,
	}

	tm.tenants = append(tm.tenants, t)
	return &t, nil
}

// CreateTenantWithMigrations registers a tenant and applies the given
// migrations. Migrations use IF NOT EXISTS so repeated application across
// tenants is harmless.
func (tm *TenantManager) CreateTenantWithMigrations(ctx context.Context, name string, migrations []string) (*TestTenant, error) {
	t, err := tm.CreateTenant(ctx, name)
	if err != nil {
		return nil, err
	}

	for _, migration := range migrations {
		if _, err := tm.db.ExecContext(ctx, migration); err != nil {
			return nil, fmt.Errorf("failed to apply migration: %w", err)
		}
	}

	return t, nil
}

// DropTenant removes a tenant and all its rows
func (tm *TenantManager) DropTenant(ctx context.Context, t *TestTenant) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	statements := []string{
		"DELETE FROM staff_attendance WHERE tenant_id = $1",
		"DELETE FROM staff WHERE tenant_id = $1",
		"DELETE FROM user_cache WHERE tenant_id = $1",
		"DELETE FROM tenants WHERE id = $1",
	}

	for _, stmt := range statements {
		if _, err := tm.db.ExecContext(ctx, stmt, t.ID); err != nil {
			return fmt.Errorf("failed to clean up tenant %s: %w", t.Slug, err)
		}
	}

	for i, registered := range tm.tenants {
		if registered.ID == t.ID {
			tm.tenants = append(tm.tenants[:i], tm.tenants[i+1:]...)
			break
		}
	}

	return nil
}

// Cleanup removes all tenants created by this manager
func (tm *TenantManager) Cleanup(ctx context.Context) error {
	tm.mu.Lock()
	remaining := make([]TestTenant, len(tm.tenants))
	copy(remaining, tm.tenants)
	tm.mu.Unlock()

	for i := range remaining {
		if err := tm.DropTenant(ctx, &remaining[i]); err != nil {
			return err
		}
	}

	return nil
}

// WithTestTenant returns a context carrying the test tenant
func WithTestTenant(ctx context.Context, t *TestTenant) context.Context {
	return tenant.WithTenantContext(ctx, t.ID, t.Slug, "public")
}

// TestTenantContext returns a context with a random throwaway tenant id,
// for unit tests that only need tenant context present.
func TestTenantContext() context.Context {
	id := uuid.New().String()
	return tenant.WithTenantContext(context.Background(), id, "test-school", "public")
}

// SchoolMigrations returns the staff service migrations for tests. The
// constraint names matter: the error mapping layer keys on them.
func SchoolMigrations() []string {
	return []string{
		`
		CREATE TABLE IF NOT EXISTS user_cache (
			user_id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS staff (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id UUID NOT NULL,
			user_id UUID,
			employee_number VARCHAR(50) NOT NULL,
			position VARCHAR(100),
			department VARCHAR(100),
			shift_start VARCHAR(5) NOT NULL DEFAULT '08:00',
			shift_end VARCHAR(5) NOT NULL DEFAULT '17:00',
			salary NUMERIC(10,2) NOT NULL DEFAULT 0,
			weekly_hours INT NOT NULL DEFAULT 40,
			overtime_enabled BOOLEAN NOT NULL DEFAULT false,
			overtime_rate NUMERIC(4,2) NOT NULL DEFAULT 1.5,
			total_overtime_minutes INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			CONSTRAINT staff_tenant_employee_number_key UNIQUE (tenant_id, employee_number),
			CONSTRAINT staff_overtime_minutes_non_negative CHECK (total_overtime_minutes >= 0)
		);
		CREATE INDEX IF NOT EXISTS idx_staff_tenant ON staff(tenant_id);
		`,
		`
		CREATE TABLE IF NOT EXISTS staff_attendance (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id UUID NOT NULL,
			staff_id UUID NOT NULL REFERENCES staff(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			clock_in TIMESTAMPTZ,
			clock_out TIMESTAMPTZ,
			expected_clock_out TIMESTAMPTZ,
			is_late BOOLEAN NOT NULL DEFAULT false,
			late_minutes INT NOT NULL DEFAULT 0,
			overtime_minutes INT NOT NULL DEFAULT 0,
			overtime_pay NUMERIC(10,2) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'present',
			notes TEXT,
			created_by UUID,
			updated_by UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT staff_attendance_staff_id_date_key UNIQUE (staff_id, date),
			CONSTRAINT staff_attendance_status_valid CHECK (status IN ('present', 'absent', 'half-day', 'leave'))
		);
		CREATE INDEX IF NOT EXISTS idx_staff_attendance_tenant_date ON staff_attendance(tenant_id, date);
		CREATE INDEX IF NOT EXISTS idx_staff_attendance_staff ON staff_attendance(staff_id);
		`,
	}
}
