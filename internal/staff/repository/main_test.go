package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
	"github.com/schoolhub/schoolhub-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	ctx := context.Background()
	var err error

	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		panic("failed to create integration suite: " + err.Error())
	}
	defer suite.Cleanup(ctx)

	code := m.Run()
	testutil.TerminateContainer(ctx)
	os.Exit(code)
}

// helper: insert a staff member from a fixture and return its ID
func insertStaff(t *testing.T, ctx context.Context, f testutil.StaffFixture) string {
	t.Helper()

	_, err := suite.RawDB.ExecContext(ctx, `
		INSERT INTO staff (
			id, tenant_id, user_id, employee_number, position, department,
			shift_start, shift_end, salary, weekly_hours,
			overtime_enabled, overtime_rate, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		f.ID, f.TenantID, f.UserID, f.EmployeeNumber, f.Position, f.Department,
		f.ShiftStart, f.ShiftEnd, f.Salary, f.WeeklyHours,
		f.OvertimeEnabled, f.OvertimeRate, f.IsActive,
	)
	require.NoError(t, err)
	return f.ID
}

// helper: read the lifetime overtime counter straight from the table
func overtimeCounter(t *testing.T, ctx context.Context, staffID string) int {
	t.Helper()

	var minutes int
	err := suite.RawDB.GetContext(ctx, &minutes,
		"SELECT total_overtime_minutes FROM staff WHERE id = $1", staffID)
	require.NoError(t, err)
	return minutes
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func at(d time.Time, hour, minute int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
}

func newAttendanceRepo() *repository.AttendanceRepository {
	return repository.NewAttendanceRepository(suite.DB)
}
