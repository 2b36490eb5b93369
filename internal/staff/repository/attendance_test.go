package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
	apperrors "github.com/schoolhub/schoolhub-backend/pkg/errors"
	"github.com/schoolhub/schoolhub-backend/pkg/testutil"
)

func TestAttendance_UpsertClockIn_NewRecord(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "upsert-new-school")
	tenantCtx := suite.TenantContext(tenant)

	staffID := insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))
	repo := newAttendanceRepo()

	day := date(2026, 3, 2)
	clockIn := at(day, 8, 10)
	att := &repository.Attendance{
		TenantID:    tenant.ID,
		StaffID:     staffID,
		Date:        day,
		ClockIn:     &clockIn,
		IsLate:      true,
		LateMinutes: 10,
		Status:      repository.StatusPresent,
	}

	err := repo.UpsertClockIn(tenantCtx, att)
	require.NoError(t, err)
	require.NotEmpty(t, att.ID)

	stored, err := repo.GetByStaffAndDate(tenantCtx, staffID, day)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, att.ID, stored.ID)
	assert.True(t, stored.IsLate)
	assert.Equal(t, 10, stored.LateMinutes)
	require.NotNil(t, stored.ClockIn)
}

func TestAttendance_UpsertClockIn_OverExistingRecord(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "upsert-existing-school")
	tenantCtx := suite.TenantContext(tenant)

	staffID := insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))
	repo := newAttendanceRepo()

	day := date(2026, 3, 2)

	// An absence was entered manually in the morning...
	absence := &repository.Attendance{
		TenantID: tenant.ID,
		StaffID:  staffID,
		Date:     day,
		Status:   repository.StatusAbsent,
	}
	require.NoError(t, repo.Create(tenantCtx, absence, 0))

	// ...then the staff member showed up and clocked in.
	clockIn := at(day, 10, 0)
	att := &repository.Attendance{
		TenantID:    tenant.ID,
		StaffID:     staffID,
		Date:        day,
		ClockIn:     &clockIn,
		IsLate:      true,
		LateMinutes: 120,
		Status:      repository.StatusPresent,
	}
	require.NoError(t, repo.UpsertClockIn(tenantCtx, att))

	// The upsert updated the absence row instead of inserting a second one.
	assert.Equal(t, absence.ID, att.ID)

	var count int
	err := suite.RawDB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM staff_attendance WHERE staff_id = $1", staffID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := repo.GetByStaffAndDate(tenantCtx, staffID, day)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusPresent, stored.Status)
}

func TestAttendance_Create_DuplicateDate(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "duplicate-school")
	tenantCtx := suite.TenantContext(tenant)

	staffID := insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))
	repo := newAttendanceRepo()

	day := date(2026, 3, 2)
	first := &repository.Attendance{
		TenantID: tenant.ID,
		StaffID:  staffID,
		Date:     day,
		Status:   repository.StatusPresent,
	}
	require.NoError(t, repo.Create(tenantCtx, first, 0))

	second := &repository.Attendance{
		TenantID: tenant.ID,
		StaffID:  staffID,
		Date:     day,
		Status:   repository.StatusLeave,
	}
	err := repo.Create(tenantCtx, second, 0)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DUPLICATE_RECORD", appErr.Code)
}

func TestAttendance_Create_InvalidStatus(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "bad-status-school")
	tenantCtx := suite.TenantContext(tenant)

	staffID := insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))
	repo := newAttendanceRepo()

	att := &repository.Attendance{
		TenantID: tenant.ID,
		StaffID:  staffID,
		Date:     date(2026, 3, 2),
		Status:   "vacationing",
	}
	err := repo.Create(tenantCtx, att, 0)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestAttendance_OvertimeCounterLifecycle(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "counter-school")
	tenantCtx := suite.TenantContext(tenant)

	staffID := insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))
	repo := newAttendanceRepo()

	day := date(2026, 3, 2)
	clockIn := at(day, 8, 0)
	clockOut := at(day, 17, 45)
	expected := at(day, 17, 0)

	att := &repository.Attendance{
		TenantID:         tenant.ID,
		StaffID:          staffID,
		Date:             day,
		ClockIn:          &clockIn,
		ClockOut:         &clockOut,
		ExpectedClockOut: &expected,
		OvertimeMinutes:  45,
		OvertimePay:      28.13,
		Status:           repository.StatusPresent,
	}

	// Create with +45 lands record and counter together.
	require.NoError(t, repo.Create(tenantCtx, att, 45))
	assert.Equal(t, 45, overtimeCounter(t, ctx, staffID))

	// A correction that lowers overtime applies the negative difference.
	corrected := at(day, 17, 30)
	att.ClockOut = &corrected
	att.OvertimeMinutes = 30
	att.OvertimePay = 18.75
	require.NoError(t, repo.Update(tenantCtx, att, -15))
	assert.Equal(t, 30, overtimeCounter(t, ctx, staffID))

	// Delete reverses what the record still contributes.
	require.NoError(t, repo.Delete(tenantCtx, att, -30))
	assert.Equal(t, 0, overtimeCounter(t, ctx, staffID))

	stored, err := repo.GetByStaffAndDate(tenantCtx, staffID, day)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestAttendance_CounterClampsAtZero(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "clamp-school")
	tenantCtx := suite.TenantContext(tenant)

	staffID := insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))
	repo := newAttendanceRepo()

	day := date(2026, 3, 2)
	att := &repository.Attendance{
		TenantID:        tenant.ID,
		StaffID:         staffID,
		Date:            day,
		OvertimeMinutes: 60,
		Status:          repository.StatusPresent,
	}
	require.NoError(t, repo.Create(tenantCtx, att, 10))
	assert.Equal(t, 10, overtimeCounter(t, ctx, staffID))

	// The record claims 60 minutes but the counter only holds 10; the
	// reversal clamps at zero instead of going negative.
	require.NoError(t, repo.Delete(tenantCtx, att, -60))
	assert.Equal(t, 0, overtimeCounter(t, ctx, staffID))
}

func TestAttendance_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "update-missing-school")
	tenantCtx := suite.TenantContext(tenant)

	insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))
	repo := newAttendanceRepo()

	att := &repository.Attendance{
		ID:       "99999999-9999-9999-9999-999999999999",
		TenantID: tenant.ID,
		StaffID:  "99999999-9999-9999-9999-999999999998",
		Date:     date(2026, 3, 2),
		Status:   repository.StatusPresent,
	}
	err := repo.Update(tenantCtx, att, 0)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestAttendance_List_FiltersAndPagination(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "list-school")
	tenantCtx := suite.TenantContext(tenant)

	staffA := insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))
	staffB := insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))
	repo := newAttendanceRepo()

	for day := 1; day <= 5; day++ {
		att := &repository.Attendance{
			TenantID: tenant.ID,
			StaffID:  staffA,
			Date:     date(2026, 3, day),
			Status:   repository.StatusPresent,
		}
		require.NoError(t, repo.Create(tenantCtx, att, 0))
	}
	leave := &repository.Attendance{
		TenantID: tenant.ID,
		StaffID:  staffB,
		Date:     date(2026, 3, 3),
		Status:   repository.StatusLeave,
	}
	require.NoError(t, repo.Create(tenantCtx, leave, 0))

	// All records, newest day first
	records, total, err := repo.List(tenantCtx, repository.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, records, 6)
	assert.False(t, records[0].Date.Before(records[len(records)-1].Date))

	// Staff filter
	records, total, err = repo.List(tenantCtx, repository.AttendanceFilter{StaffID: staffB})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, repository.StatusLeave, records[0].Status)

	// Status filter
	_, total, err = repo.List(tenantCtx, repository.AttendanceFilter{Status: repository.StatusPresent})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	// Date range
	from := date(2026, 3, 2)
	to := date(2026, 3, 4)
	_, total, err = repo.List(tenantCtx, repository.AttendanceFilter{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	// Pagination
	records, total, err = repo.List(tenantCtx, repository.AttendanceFilter{Page: 2, PerPage: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, records, 2)
}

func TestAttendance_List_ScopedToTenant(t *testing.T) {
	ctx := context.Background()
	tenantA := suite.SetupSchool(t, ctx, "scope-school-a")
	tenantB := suite.SetupSchool(t, ctx, "scope-school-b")

	staffA := insertStaff(t, ctx, suite.Fixtures.Staff(tenantA.ID))
	repo := newAttendanceRepo()

	att := &repository.Attendance{
		TenantID: tenantA.ID,
		StaffID:  staffA,
		Date:     date(2026, 3, 2),
		Status:   repository.StatusPresent,
	}
	require.NoError(t, repo.Create(suite.TenantContext(tenantA), att, 0))

	// Tenant B sees nothing of tenant A's records.
	records, total, err := repo.List(suite.TenantContext(tenantB), repository.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, records)

	// But GetByID still resolves the row so the service layer can reject the
	// access explicitly instead of pretending it does not exist.
	found, err := repo.GetByID(context.Background(), att.ID)
	require.NoError(t, err)
	assert.Equal(t, tenantA.ID, found.TenantID)
}

func TestAttendance_GetByID_JoinsStaffName(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "join-school")
	tenantCtx := suite.TenantContext(tenant)

	user := suite.Fixtures.CachedUser(tenant.ID)
	_, err := suite.RawDB.ExecContext(ctx, `
		INSERT INTO user_cache (user_id, tenant_id, email, name, role)
		VALUES ($1, $2, $3, $4, $5)
	`, user.UserID, user.TenantID, user.Email, user.Name, user.Role)
	require.NoError(t, err)

	staffID := insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID, testutil.WithUser(user.UserID)))
	repo := newAttendanceRepo()

	att := &repository.Attendance{
		TenantID: tenant.ID,
		StaffID:  staffID,
		Date:     date(2026, 3, 2),
		Status:   repository.StatusPresent,
	}
	require.NoError(t, repo.Create(tenantCtx, att, 0))

	found, err := repo.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.NotNil(t, found.StaffName)
	assert.Equal(t, user.Name, *found.StaffName)
}
