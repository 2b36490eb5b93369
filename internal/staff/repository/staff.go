package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/schoolhub/schoolhub-backend/pkg/database"
	"github.com/schoolhub/schoolhub-backend/pkg/errors"
	"github.com/schoolhub/schoolhub-backend/pkg/tenant"
)

// Staff represents a staff member's employment record. Identity data (name,
// email) lives in the identity service and is joined in from the local user
// cache.
type Staff struct {
	ID             string  `db:"id" json:"id"`
	TenantID       string  `db:"tenant_id" json:"tenant_id"`
	UserID         *string `db:"user_id" json:"user_id,omitempty"`
	EmployeeNumber string  `db:"employee_number" json:"employee_number"`
	Position       *string `db:"position" json:"position,omitempty"`
	Department     *string `db:"department" json:"department,omitempty"`

	// Shift window: wall-clock time of day in "HH:MM", no date component.
	ShiftStart string `db:"shift_start" json:"shift_start"`
	ShiftEnd   string `db:"shift_end" json:"shift_end"`

	// Pay configuration. Salary is monthly; the hourly rate is derived as
	// salary / (4 * weekly_hours).
	Salary          float64 `db:"salary" json:"salary"`
	WeeklyHours     int     `db:"weekly_hours" json:"weekly_hours"`
	OvertimeEnabled bool    `db:"overtime_enabled" json:"overtime_enabled"`
	OvertimeRate    float64 `db:"overtime_rate" json:"overtime_rate"`

	// TotalOvertimeMinutes is the lifetime aggregate, adjusted only through
	// attendance lifecycle events. Never negative.
	TotalOvertimeMinutes int `db:"total_overtime_minutes" json:"total_overtime_minutes"`

	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Joined from user_cache
	Name *string `db:"name" json:"name,omitempty"`
}

// StaffRepository handles staff persistence
type StaffRepository struct {
	db *database.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *database.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// GetByID fetches a staff member by id WITHOUT a tenant predicate. The
// service layer compares the returned tenant_id against the caller's tenant
// and rejects mismatches with FORBIDDEN; scoping the query here would
// collapse that case into NOT_FOUND.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*Staff, error) {
	var st Staff

	query := `
		SELECT s.id, s.tenant_id, s.user_id, s.employee_number, s.position, s.department,
		       s.shift_start, s.shift_end, s.salary, s.weekly_hours,
		       s.overtime_enabled, s.overtime_rate, s.total_overtime_minutes,
		       s.is_active, s.created_at, s.updated_at,
		       uc.name as name
		FROM staff s
		LEFT JOIN user_cache uc ON s.user_id = uc.user_id
		WHERE s.id = $1 AND s.deleted_at IS NULL
	`
	err := r.db.GetContext(ctx, &st, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("staff")
	}
	if err != nil {
		return nil, err
	}

	return &st, nil
}

// ListActive lists the tenant's active staff, ordered by employee number.
// Used by the attendance screen's staff filter.
func (r *StaffRepository) ListActive(ctx context.Context) ([]*Staff, error) {
	tenantID, err := tenant.TenantID(ctx)
	if err != nil {
		return nil, err
	}

	staff := []*Staff{}

	query := `
		SELECT s.id, s.tenant_id, s.user_id, s.employee_number, s.position, s.department,
		       s.shift_start, s.shift_end, s.salary, s.weekly_hours,
		       s.overtime_enabled, s.overtime_rate, s.total_overtime_minutes,
		       s.is_active, s.created_at, s.updated_at,
		       uc.name as name
		FROM staff s
		LEFT JOIN user_cache uc ON s.user_id = uc.user_id
		WHERE s.tenant_id = $1 AND s.is_active = true AND s.deleted_at IS NULL
		ORDER BY s.employee_number
	`
	if err := r.db.SelectContext(ctx, &staff, query, tenantID); err != nil {
		return nil, err
	}

	return staff, nil
}
