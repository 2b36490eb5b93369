package service

import (
	"math"

	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
)

// OvertimeCalculator derives lateness and overtime from a completed
// attendance record and the staff member's shift and pay configuration.
// It is pure: it mutates the record in memory and reports the signed
// change to the lifetime counter; persistence is the caller's problem.
type OvertimeCalculator struct{}

// NewOvertimeCalculator creates a new overtime calculator
func NewOvertimeCalculator() *OvertimeCalculator {
	return &OvertimeCalculator{}
}

// Apply recomputes the record's derived fields and returns the delta to apply
// to the staff member's total_overtime_minutes.
//
// The delta is new minus previous overtime minutes, so re-running the
// computation over the same record is idempotent with respect to the lifetime
// counter, and a correction that lowers a record's overtime yields a negative
// delta. When overtime is disabled for the staff member the counter is never
// touched and the delta is zero, though the record's overtime_minutes is
// still tracked for reporting.
//
// Overtime fields are never reset: if a corrected clock-out no longer exceeds
// the expected clock-out, previously stored overtime values stand and the
// delta is zero.
//
// The computation runs only on a complete in/out pair. A record carrying a
// lone clock-out (a partial manual backfill) has no worked interval to price,
// so nothing is derived and the counter stays put.
func (c *OvertimeCalculator) Apply(att *repository.Attendance, staff *repository.Staff) int {
	if att == nil || staff == nil || att.ClockIn == nil || att.ClockOut == nil {
		return 0
	}

	previous := att.OvertimeMinutes

	expected := att.ExpectedClockOut
	if expected == nil && staff.ShiftEnd != "" {
		if t, err := timeOfDayOn(att.Date, staff.ShiftEnd); err == nil {
			att.ExpectedClockOut = &t
			expected = &t
		}
	}

	if expected != nil && att.ClockOut.After(*expected) {
		att.OvertimeMinutes = minutesBetween(*expected, *att.ClockOut)
		if staff.OvertimeEnabled {
			att.OvertimePay = c.payFor(att.OvertimeMinutes, staff)
		}
	}

	if att.ClockIn != nil && staff.ShiftStart != "" {
		if shiftStart, err := timeOfDayOn(att.Date, staff.ShiftStart); err == nil {
			if att.ClockIn.After(shiftStart) {
				att.IsLate = true
				att.LateMinutes = minutesBetween(shiftStart, *att.ClockIn)
			}
		}
	}

	if !staff.OvertimeEnabled {
		return 0
	}

	return att.OvertimeMinutes - previous
}

// CalculateOvertimePay prices a staff member's accumulated overtime. Returns
// zero when overtime is disabled.
func (c *OvertimeCalculator) CalculateOvertimePay(staff *repository.Staff) float64 {
	if staff == nil || !staff.OvertimeEnabled {
		return 0
	}
	return c.payFor(staff.TotalOvertimeMinutes, staff)
}

// payFor converts minutes to pay: hours * hourly rate * multiplier, where the
// hourly rate approximates the month as four working weeks.
func (c *OvertimeCalculator) payFor(minutes int, staff *repository.Staff) float64 {
	if minutes <= 0 || staff.WeeklyHours <= 0 {
		return 0
	}

	hourlyRate := staff.Salary / (4 * float64(staff.WeeklyHours))
	pay := float64(minutes) / 60 * hourlyRate * staff.OvertimeRate

	return math.Round(pay*100) / 100
}
