package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/schoolhub/schoolhub-backend/pkg/database"
	"github.com/schoolhub/schoolhub-backend/pkg/errors"
	"github.com/schoolhub/schoolhub-backend/pkg/tenant"
)

// Attendance statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusHalfDay = "half-day"
	StatusLeave   = "leave"
)

// Attendance is one staff member's attendance record for one calendar day.
// At most one row exists per (staff_id, date); the database enforces this
// with a unique constraint.
type Attendance struct {
	ID       string    `db:"id" json:"id"`
	TenantID string    `db:"tenant_id" json:"tenant_id"`
	StaffID  string    `db:"staff_id" json:"staff_id"`
	Date     time.Time `db:"date" json:"date"`

	ClockIn          *time.Time `db:"clock_in" json:"clock_in,omitempty"`
	ClockOut         *time.Time `db:"clock_out" json:"clock_out,omitempty"`
	ExpectedClockOut *time.Time `db:"expected_clock_out" json:"expected_clock_out,omitempty"`

	IsLate      bool `db:"is_late" json:"is_late"`
	LateMinutes int  `db:"late_minutes" json:"late_minutes"`

	OvertimeMinutes int     `db:"overtime_minutes" json:"overtime_minutes"`
	OvertimePay     float64 `db:"overtime_pay" json:"overtime_pay"`

	Status string  `db:"status" json:"status"`
	Notes  *string `db:"notes" json:"notes,omitempty"`

	CreatedBy *string `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy *string `db:"updated_by" json:"updated_by,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Joined from staff -> user_cache
	StaffName *string `db:"staff_name" json:"staff_name,omitempty"`
}

// AttendanceFilter narrows List results. Zero values mean "no filter".
type AttendanceFilter struct {
	StaffID  string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PerPage  int
}

// AttendanceRepository handles attendance persistence
type AttendanceRepository struct {
	db *database.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *database.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// GetByID fetches an attendance record by id WITHOUT a tenant predicate, for
// the same reason as StaffRepository.GetByID: the service distinguishes
// cross-tenant access (FORBIDDEN) from absence (NOT_FOUND).
func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (*Attendance, error) {
	var att Attendance

	query := `
		SELECT a.id, a.tenant_id, a.staff_id, a.date,
		       a.clock_in, a.clock_out, a.expected_clock_out,
		       a.is_late, a.late_minutes, a.overtime_minutes, a.overtime_pay,
		       a.status, a.notes, a.created_by, a.updated_by,
		       a.created_at, a.updated_at,
		       uc.name as staff_name
		FROM staff_attendance a
		JOIN staff s ON a.staff_id = s.id
		LEFT JOIN user_cache uc ON s.user_id = uc.user_id
		WHERE a.id = $1
	`
	err := r.db.GetContext(ctx, &att, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("attendance record")
	}
	if err != nil {
		return nil, err
	}

	return &att, nil
}

// GetByStaffAndDate fetches the record for a staff member on a given day.
// Returns (nil, nil) when no record exists; callers treat absence as a state,
// not an error.
func (r *AttendanceRepository) GetByStaffAndDate(ctx context.Context, staffID string, date time.Time) (*Attendance, error) {
	tenantID, err := tenant.TenantID(ctx)
	if err != nil {
		return nil, err
	}

	var att Attendance

	query := `
		SELECT id, tenant_id, staff_id, date,
		       clock_in, clock_out, expected_clock_out,
		       is_late, late_minutes, overtime_minutes, overtime_pay,
		       status, notes, created_by, updated_by,
		       created_at, updated_at
		FROM staff_attendance
		WHERE tenant_id = $1 AND staff_id = $2 AND date = $3
	`
	err = r.db.GetContext(ctx, &att, query, tenantID, staffID, date.Format("2006-01-02"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &att, nil
}

// UpsertClockIn writes a clock-in transition. The upsert handles the case
// where a record for the day already exists without a clock-in (for example
// a manually created absence later converted to presence): the existing row
// is updated in place instead of violating the one-record-per-day constraint.
func (r *AttendanceRepository) UpsertClockIn(ctx context.Context, att *Attendance) error {
	return r.db.WithTenantRLS(ctx, att.TenantID, func(ctx context.Context) error {
		query := `
			INSERT INTO staff_attendance (
				tenant_id, staff_id, date, clock_in,
				is_late, late_minutes, status, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (staff_id, date) DO UPDATE SET
				clock_in = EXCLUDED.clock_in,
				is_late = EXCLUDED.is_late,
				late_minutes = EXCLUDED.late_minutes,
				status = EXCLUDED.status,
				updated_by = EXCLUDED.created_by,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`
		err := r.db.QueryRowxContext(ctx, query,
			att.TenantID, att.StaffID, att.Date.Format("2006-01-02"), att.ClockIn,
			att.IsLate, att.LateMinutes, att.Status, att.CreatedBy,
		).Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return fmt.Errorf("failed to upsert clock-in: %w", err)
		}
		return nil
	})
}

// Create inserts a manually captured record. When the calculator produced a
// non-zero overtime delta, the staff lifetime counter is adjusted in the same
// transaction so the record and the aggregate can never diverge.
func (r *AttendanceRepository) Create(ctx context.Context, att *Attendance, overtimeDelta int) error {
	return r.db.WithTenantRLS(ctx, att.TenantID, func(ctx context.Context) error {
		query := `
			INSERT INTO staff_attendance (
				tenant_id, staff_id, date, clock_in, clock_out, expected_clock_out,
				is_late, late_minutes, overtime_minutes, overtime_pay,
				status, notes, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at, updated_at
		`
		err := r.db.QueryRowxContext(ctx, query,
			att.TenantID, att.StaffID, att.Date.Format("2006-01-02"),
			att.ClockIn, att.ClockOut, att.ExpectedClockOut,
			att.IsLate, att.LateMinutes, att.OvertimeMinutes, att.OvertimePay,
			att.Status, att.Notes, att.CreatedBy,
		).Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return fmt.Errorf("failed to create attendance record: %w", err)
		}

		return r.adjustOvertimeCounter(ctx, att.TenantID, att.StaffID, overtimeDelta)
	})
}

// Update rewrites a record's mutable fields and applies the overtime delta to
// the staff counter atomically. The delta is signed: a correction that lowers
// a record's overtime decrements the aggregate by the difference.
func (r *AttendanceRepository) Update(ctx context.Context, att *Attendance, overtimeDelta int) error {
	return r.db.WithTenantRLS(ctx, att.TenantID, func(ctx context.Context) error {
		query := `
			UPDATE staff_attendance SET
				clock_in = $1,
				clock_out = $2,
				expected_clock_out = $3,
				is_late = $4,
				late_minutes = $5,
				overtime_minutes = $6,
				overtime_pay = $7,
				status = $8,
				notes = $9,
				updated_by = $10,
				updated_at = NOW()
			WHERE id = $11 AND tenant_id = $12
		`
		result, err := r.db.ExecContext(ctx, query,
			att.ClockIn, att.ClockOut, att.ExpectedClockOut,
			att.IsLate, att.LateMinutes, att.OvertimeMinutes, att.OvertimePay,
			att.Status, att.Notes, att.UpdatedBy,
			att.ID, att.TenantID,
		)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return fmt.Errorf("failed to update attendance record: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.NotFound("attendance record")
		}

		return r.adjustOvertimeCounter(ctx, att.TenantID, att.StaffID, overtimeDelta)
	})
}

// Delete removes a record. overtimeDelta is expected to be zero or negative
// (the reversal of whatever the record contributed); it is applied in the
// same transaction as the delete.
func (r *AttendanceRepository) Delete(ctx context.Context, att *Attendance, overtimeDelta int) error {
	return r.db.WithTenantRLS(ctx, att.TenantID, func(ctx context.Context) error {
		if err := r.adjustOvertimeCounter(ctx, att.TenantID, att.StaffID, overtimeDelta); err != nil {
			return err
		}

		result, err := r.db.ExecContext(ctx,
			`DELETE FROM staff_attendance WHERE id = $1 AND tenant_id = $2`,
			att.ID, att.TenantID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete attendance record: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.NotFound("attendance record")
		}

		return nil
	})
}

// adjustOvertimeCounter applies a signed delta to the staff lifetime overtime
// aggregate, clamped at zero. Must run inside the caller's transaction.
func (r *AttendanceRepository) adjustOvertimeCounter(ctx context.Context, tenantID, staffID string, delta int) error {
	if delta == 0 {
		return nil
	}

	query := `
		UPDATE staff SET
			total_overtime_minutes = GREATEST(0, total_overtime_minutes + $1),
			updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
	`
	if _, err := r.db.ExecContext(ctx, query, delta, staffID, tenantID); err != nil {
		return fmt.Errorf("failed to adjust overtime counter: %w", err)
	}

	return nil
}

// List returns a page of the tenant's attendance records, newest day first,
// with the total count for pagination metadata.
func (r *AttendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]*Attendance, int64, error) {
	tenantID, err := tenant.TenantID(ctx)
	if err != nil {
		return nil, 0, err
	}

	conditions := []string{"a.tenant_id = $1"}
	args := []interface{}{tenantID}
	argIdx := 2

	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("a.staff_id = $%d", argIdx))
		args = append(args, filter.StaffID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, filter.DateFrom.Format("2006-01-02"))
		argIdx++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, filter.DateTo.Format("2006-01-02"))
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM staff_attendance a WHERE %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}
	offset := (filter.Page - 1) * filter.PerPage

	records := []*Attendance{}
	query := fmt.Sprintf(`
		SELECT a.id, a.tenant_id, a.staff_id, a.date,
		       a.clock_in, a.clock_out, a.expected_clock_out,
		       a.is_late, a.late_minutes, a.overtime_minutes, a.overtime_pay,
		       a.status, a.notes, a.created_by, a.updated_by,
		       a.created_at, a.updated_at,
		       uc.name as staff_name
		FROM staff_attendance a
		JOIN staff s ON a.staff_id = s.id
		LEFT JOIN user_cache uc ON s.user_id = uc.user_id
		WHERE %s
		ORDER BY a.date DESC, a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.PerPage, offset)

	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
