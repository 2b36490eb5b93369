package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StaffFixture represents test staff data
type StaffFixture struct {
	ID              string
	TenantID        string
	UserID          *string
	EmployeeNumber  string
	Position        string
	Department      string
	ShiftStart      string
	ShiftEnd        string
	Salary          float64
	WeeklyHours     int
	OvertimeEnabled bool
	OvertimeRate    float64
	IsActive        bool
	CreatedAt       time.Time
}

// AttendanceFixture represents test attendance data
type AttendanceFixture struct {
	ID       string
	TenantID string
	StaffID  string
	Date     time.Time
	ClockIn  *time.Time
	ClockOut *time.Time
	Status   string
}

// CachedUserFixture represents test user cache data
type CachedUserFixture struct {
	UserID   string
	TenantID string
	Email    string
	Name     string
	Role     string
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Staff creates a staff fixture with defaults: standard school hours,
// overtime enabled at 1.5x, RM4000 a month, 40-hour week.
func (f *FixtureFactory) Staff(tenantID string, opts ...func(*StaffFixture)) StaffFixture {
	seq := f.nextSeq()

	staff := StaffFixture{
		ID:              uuid.New().String(),
		TenantID:        tenantID,
		EmployeeNumber:  fmt.Sprintf("EMP%04d", seq),
		Position:        "Teacher",
		Department:      "Academic",
		ShiftStart:      "08:00",
		ShiftEnd:        "17:00",
		Salary:          4000,
		WeeklyHours:     40,
		OvertimeEnabled: true,
		OvertimeRate:    1.5,
		IsActive:        true,
		CreatedAt:       time.Now(),
	}

	for _, opt := range opts {
		opt(&staff)
	}

	return staff
}

// WithShift sets the shift window
func WithShift(start, end string) func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.ShiftStart = start
		s.ShiftEnd = end
	}
}

// WithPay sets the salary and weekly hours
func WithPay(salary float64, weeklyHours int) func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.Salary = salary
		s.WeeklyHours = weeklyHours
	}
}

// WithOvertime sets the overtime configuration
func WithOvertime(enabled bool, rate float64) func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.OvertimeEnabled = enabled
		s.OvertimeRate = rate
	}
}

// WithUser links the staff member to a cached user
func WithUser(userID string) func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.UserID = &userID
	}
}

// Inactive marks the staff member as inactive
func Inactive() func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.IsActive = false
	}
}

// Attendance creates an attendance fixture for the given staff member
func (f *FixtureFactory) Attendance(tenantID, staffID string, date time.Time, opts ...func(*AttendanceFixture)) AttendanceFixture {
	att := AttendanceFixture{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		StaffID:  staffID,
		Date:     date,
		Status:   "present",
	}

	for _, opt := range opts {
		opt(&att)
	}

	return att
}

// WithClockIn sets the clock-in time
func WithClockIn(t time.Time) func(*AttendanceFixture) {
	return func(a *AttendanceFixture) {
		a.ClockIn = &t
	}
}

// WithClockOut sets the clock-out time
func WithClockOut(t time.Time) func(*AttendanceFixture) {
	return func(a *AttendanceFixture) {
		a.ClockOut = &t
	}
}

// WithStatus sets the attendance status
func WithStatus(status string) func(*AttendanceFixture) {
	return func(a *AttendanceFixture) {
		a.Status = status
	}
}

// CachedUser creates a user cache fixture
func (f *FixtureFactory) CachedUser(tenantID string, opts ...func(*CachedUserFixture)) CachedUserFixture {
	seq := f.nextSeq()

	user := CachedUserFixture{
		UserID:   uuid.New().String(),
		TenantID: tenantID,
		Email:    fmt.Sprintf("staff%d@test.schoolhub.my", seq),
		Name:     fmt.Sprintf("Test Staff %d", seq),
		Role:     "teacher",
	}

	for _, opt := range opts {
		opt(&user)
	}

	return user
}
