package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
)

func testStaff() *repository.Staff {
	return &repository.Staff{
		ID:              "f2b1a7e0-0000-0000-0000-000000000001",
		TenantID:        "f2b1a7e0-0000-0000-0000-0000000000aa",
		ShiftStart:      "08:00",
		ShiftEnd:        "17:00",
		Salary:          4000,
		WeeklyHours:     40,
		OvertimeEnabled: true,
		OvertimeRate:    1.5,
	}
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return parsed
}

func TestOvertimeCalculator_ClockOutPastShiftEnd(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()

	clockIn := mustTime(t, "2026-03-02 08:00")
	clockOut := mustTime(t, "2026-03-02 17:30")
	att := &repository.Attendance{
		Date:     mustTime(t, "2026-03-02 00:00"),
		ClockIn:  &clockIn,
		ClockOut: &clockOut,
	}

	delta := calc.Apply(att, staff)

	assert.Equal(t, 30, att.OvertimeMinutes)
	// 4000 / (4 * 40) = 25/h; 0.5h * 25 * 1.5 = 18.75
	assert.InDelta(t, 18.75, att.OvertimePay, 0.001)
	assert.Equal(t, 30, delta)
	require.NotNil(t, att.ExpectedClockOut)
	assert.Equal(t, mustTime(t, "2026-03-02 17:00"), *att.ExpectedClockOut)
	assert.False(t, att.IsLate)
}

func TestOvertimeCalculator_LateClockIn(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()

	clockIn := mustTime(t, "2026-03-02 08:15")
	clockOut := mustTime(t, "2026-03-02 17:00")
	att := &repository.Attendance{
		Date:     mustTime(t, "2026-03-02 00:00"),
		ClockIn:  &clockIn,
		ClockOut: &clockOut,
	}

	delta := calc.Apply(att, staff)

	assert.True(t, att.IsLate)
	assert.Equal(t, 15, att.LateMinutes)
	assert.Equal(t, 0, att.OvertimeMinutes)
	assert.Equal(t, 0, delta)
}

func TestOvertimeCalculator_OnTimeClockIn(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()

	clockIn := mustTime(t, "2026-03-02 07:55")
	clockOut := mustTime(t, "2026-03-02 16:45")
	att := &repository.Attendance{
		Date:     mustTime(t, "2026-03-02 00:00"),
		ClockIn:  &clockIn,
		ClockOut: &clockOut,
	}

	delta := calc.Apply(att, staff)

	assert.False(t, att.IsLate)
	assert.Equal(t, 0, att.LateMinutes)
	assert.Equal(t, 0, att.OvertimeMinutes)
	assert.Equal(t, 0.0, att.OvertimePay)
	assert.Equal(t, 0, delta)
}

func TestOvertimeCalculator_OvertimeDisabled(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()
	staff.OvertimeEnabled = false

	clockIn := mustTime(t, "2026-03-02 08:00")
	clockOut := mustTime(t, "2026-03-02 18:00")
	att := &repository.Attendance{
		Date:     mustTime(t, "2026-03-02 00:00"),
		ClockIn:  &clockIn,
		ClockOut: &clockOut,
	}

	delta := calc.Apply(att, staff)

	// Minutes are still tracked for reporting, but nothing is priced and the
	// lifetime counter is untouched.
	assert.Equal(t, 60, att.OvertimeMinutes)
	assert.Equal(t, 0.0, att.OvertimePay)
	assert.Equal(t, 0, delta)
}

func TestOvertimeCalculator_ReapplyIsIdempotent(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()

	clockIn := mustTime(t, "2026-03-02 08:00")
	clockOut := mustTime(t, "2026-03-02 17:30")
	att := &repository.Attendance{
		Date:     mustTime(t, "2026-03-02 00:00"),
		ClockIn:  &clockIn,
		ClockOut: &clockOut,
	}

	first := calc.Apply(att, staff)
	second := calc.Apply(att, staff)

	assert.Equal(t, 30, first)
	assert.Equal(t, 0, second, "recomputing an unchanged record must not move the counter")
	assert.Equal(t, 30, att.OvertimeMinutes)
}

func TestOvertimeCalculator_CorrectionLowersOvertime(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()

	clockIn := mustTime(t, "2026-03-02 08:00")
	clockOut := mustTime(t, "2026-03-02 17:30")
	att := &repository.Attendance{
		Date:            mustTime(t, "2026-03-02 00:00"),
		ClockIn:         &clockIn,
		ClockOut:        &clockOut,
		OvertimeMinutes: 45, // previously recorded from a mistyped clock-out
	}

	delta := calc.Apply(att, staff)

	assert.Equal(t, 30, att.OvertimeMinutes)
	assert.Equal(t, -15, delta)
}

func TestOvertimeCalculator_NoResetWhenWithinShift(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()

	clockIn := mustTime(t, "2026-03-02 08:00")
	clockOut := mustTime(t, "2026-03-02 16:30")
	att := &repository.Attendance{
		Date:            mustTime(t, "2026-03-02 00:00"),
		ClockIn:         &clockIn,
		ClockOut:        &clockOut,
		OvertimeMinutes: 45,
		OvertimePay:     28.13,
	}

	delta := calc.Apply(att, staff)

	// A corrected clock-out inside the shift leaves historical overtime
	// values in place; only the counter delta reflects the change (none).
	assert.Equal(t, 45, att.OvertimeMinutes)
	assert.InDelta(t, 28.13, att.OvertimePay, 0.001)
	assert.Equal(t, 0, delta)
}

func TestOvertimeCalculator_NoClockOut(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()

	clockIn := mustTime(t, "2026-03-02 09:00")
	att := &repository.Attendance{
		Date:    mustTime(t, "2026-03-02 00:00"),
		ClockIn: &clockIn,
	}

	delta := calc.Apply(att, staff)

	assert.Equal(t, 0, delta)
	assert.False(t, att.IsLate, "lateness is not derived until the record completes")
}

func TestOvertimeCalculator_ClockOutOnly(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()

	// A partial backfill carrying only a clock-out has no worked interval;
	// nothing is derived and the lifetime counter must not move.
	clockOut := mustTime(t, "2026-03-02 17:30")
	att := &repository.Attendance{
		Date:     mustTime(t, "2026-03-02 00:00"),
		ClockOut: &clockOut,
	}

	delta := calc.Apply(att, staff)

	assert.Equal(t, 0, delta)
	assert.Equal(t, 0, att.OvertimeMinutes)
	assert.Equal(t, 0.0, att.OvertimePay)
	assert.Nil(t, att.ExpectedClockOut)
}

func TestOvertimeCalculator_ZeroWeeklyHours(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()
	staff.WeeklyHours = 0

	clockIn := mustTime(t, "2026-03-02 08:00")
	clockOut := mustTime(t, "2026-03-02 18:00")
	att := &repository.Attendance{
		Date:     mustTime(t, "2026-03-02 00:00"),
		ClockIn:  &clockIn,
		ClockOut: &clockOut,
	}

	delta := calc.Apply(att, staff)

	assert.Equal(t, 60, att.OvertimeMinutes)
	assert.Equal(t, 0.0, att.OvertimePay, "misconfigured pay basis must not divide by zero")
	assert.Equal(t, 60, delta)
}

func TestOvertimeCalculator_PayRounding(t *testing.T) {
	calc := NewOvertimeCalculator()
	staff := testStaff()
	staff.Salary = 3100
	staff.WeeklyHours = 38

	clockIn := mustTime(t, "2026-03-02 08:00")
	clockOut := mustTime(t, "2026-03-02 17:50")
	att := &repository.Attendance{
		Date:     mustTime(t, "2026-03-02 00:00"),
		ClockIn:  &clockIn,
		ClockOut: &clockOut,
	}

	calc.Apply(att, staff)

	// 3100 / 152 = 20.3947.../h; 50/60 h * rate 1.5 -> 25.4934... -> 25.49
	assert.InDelta(t, 25.49, att.OvertimePay, 0.001)
}

func TestOvertimeCalculator_CalculateOvertimePay(t *testing.T) {
	calc := NewOvertimeCalculator()

	staff := testStaff()
	staff.TotalOvertimeMinutes = 120

	// 2h * 25/h * 1.5
	assert.InDelta(t, 75.0, calc.CalculateOvertimePay(staff), 0.001)

	staff.OvertimeEnabled = false
	assert.Equal(t, 0.0, calc.CalculateOvertimePay(staff))

	staff.OvertimeEnabled = true
	staff.TotalOvertimeMinutes = 0
	assert.Equal(t, 0.0, calc.CalculateOvertimePay(staff))

	assert.Equal(t, 0.0, calc.CalculateOvertimePay(nil))
}

func TestTimeOfDayOn(t *testing.T) {
	date := mustTime(t, "2026-03-02 00:00")

	anchored, err := timeOfDayOn(date, "08:30")
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2026-03-02 08:30"), anchored)

	anchored, err = timeOfDayOn(date, "08:30:15")
	require.NoError(t, err)
	assert.Equal(t, 15, anchored.Second())

	_, err = timeOfDayOn(date, "25:99")
	assert.Error(t, err)

	_, err = timeOfDayOn(date, "")
	assert.Error(t, err)
}

func TestMinutesBetween(t *testing.T) {
	a := mustTime(t, "2026-03-02 08:00")
	b := mustTime(t, "2026-03-02 08:45")

	assert.Equal(t, 45, minutesBetween(a, b))
	assert.Equal(t, -45, minutesBetween(b, a))
	assert.Equal(t, 0, minutesBetween(a, a))
}
