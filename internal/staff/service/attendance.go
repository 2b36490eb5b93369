package service

import (
	"context"
	"time"

	"github.com/schoolhub/schoolhub-backend/internal/staff/events"
	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
	"github.com/schoolhub/schoolhub-backend/pkg/actor"
	"github.com/schoolhub/schoolhub-backend/pkg/errors"
	"github.com/schoolhub/schoolhub-backend/pkg/logger"
	"github.com/schoolhub/schoolhub-backend/pkg/tenant"
)

// CreateAttendanceInput is a manually captured record. Times are wall-clock
// on the record's date; either or both may be absent (an absence or leave
// entry has neither).
type CreateAttendanceInput struct {
	StaffID  string
	Date     time.Time
	ClockIn  *string // "HH:MM"
	ClockOut *string // "HH:MM"
	Status   string
	Notes    *string
}

// UpdateAttendanceInput corrects an existing record. Nil pointers leave the
// corresponding field untouched.
type UpdateAttendanceInput struct {
	ClockIn  *string // "HH:MM"
	ClockOut *string // "HH:MM"
	Status   string
	Notes    *string
}

// AttendanceService implements the attendance recording lifecycle: the
// clock-in/clock-out flow used by the kiosk, and the manual create/correct/
// delete flow used by office admins.
type AttendanceService struct {
	staffRepo *repository.StaffRepository
	attRepo   *repository.AttendanceRepository
	overtime  *OvertimeCalculator
	publisher *events.AttendancePublisher
	logger    *logger.Logger

	// now is injectable for tests; defaults to time.Now
	now func() time.Time
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	staffRepo *repository.StaffRepository,
	attRepo *repository.AttendanceRepository,
	overtime *OvertimeCalculator,
	publisher *events.AttendancePublisher,
	log *logger.Logger,
) *AttendanceService {
	return &AttendanceService{
		staffRepo: staffRepo,
		attRepo:   attRepo,
		overtime:  overtime,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// requireStaff loads a staff member and verifies they belong to the caller's
// tenant. A mismatch is FORBIDDEN, not NOT_FOUND: the record exists, the
// caller just isn't allowed to act on it.
func (s *AttendanceService) requireStaff(ctx context.Context, staffID string) (*repository.Staff, error) {
	tenantID, err := tenant.TenantID(ctx)
	if err != nil {
		return nil, errors.Unauthorized("missing tenant context")
	}

	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}

	if staff.TenantID != tenantID {
		return nil, errors.Forbidden("staff member belongs to a different school")
	}

	return staff, nil
}

// ClockIn records the start of a staff member's workday. Lateness is derived
// immediately against the shift start; overtime waits for clock-out.
func (s *AttendanceService) ClockIn(ctx context.Context, staffID string) (*repository.Attendance, error) {
	staff, err := s.requireStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := dateOnly(now)

	existing, err := s.attRepo.GetByStaffAndDate(ctx, staffID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ClockIn != nil {
		return nil, errors.AlreadyClockedIn()
	}

	att := existing
	if att == nil {
		att = &repository.Attendance{
			TenantID: staff.TenantID,
			StaffID:  staffID,
			Date:     today,
		}
	}

	att.ClockIn = &now
	att.Status = repository.StatusPresent
	if a := actor.FromContext(ctx); a != nil {
		att.CreatedBy = &a.ID
	}

	if staff.ShiftStart != "" {
		shiftStart, err := timeOfDayOn(today, staff.ShiftStart)
		if err != nil {
			s.logger.Warn().Err(err).Str("staff_id", staffID).Msg("unparseable shift start, skipping lateness")
		} else if now.After(shiftStart) {
			att.IsLate = true
			att.LateMinutes = minutesBetween(shiftStart, now)
		}
	}

	if err := s.attRepo.UpsertClockIn(ctx, att); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("staff_id", staffID).
		Str("attendance_id", att.ID).
		Bool("is_late", att.IsLate).
		Int("late_minutes", att.LateMinutes).
		Msg("staff clocked in")

	s.publisher.PublishClockIn(ctx, att)

	return att, nil
}

// ClockOut completes the workday. The overtime calculator derives lateness
// and overtime from the full in/out pair, and the record write plus any
// lifetime counter adjustment land in one transaction.
func (s *AttendanceService) ClockOut(ctx context.Context, staffID string) (*repository.Attendance, error) {
	staff, err := s.requireStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := dateOnly(now)

	att, err := s.attRepo.GetByStaffAndDate(ctx, staffID, today)
	if err != nil {
		return nil, err
	}
	if att == nil || att.ClockIn == nil {
		return nil, errors.NotClockedIn()
	}
	if att.ClockOut != nil {
		return nil, errors.AlreadyClockedOut()
	}

	att.ClockOut = &now
	if staff.ShiftEnd != "" {
		if expected, err := timeOfDayOn(today, staff.ShiftEnd); err == nil {
			att.ExpectedClockOut = &expected
		} else {
			s.logger.Warn().Err(err).Str("staff_id", staffID).Msg("unparseable shift end, skipping overtime")
		}
	}
	if a := actor.FromContext(ctx); a != nil {
		att.UpdatedBy = &a.ID
	}

	delta := s.overtime.Apply(att, staff)

	if err := s.attRepo.Update(ctx, att, delta); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("staff_id", staffID).
		Str("attendance_id", att.ID).
		Int("overtime_minutes", att.OvertimeMinutes).
		Int("overtime_delta", delta).
		Msg("staff clocked out")

	s.publisher.PublishClockOut(ctx, att)

	return att, nil
}

// Create captures a record manually, e.g. backfilling a day the kiosk was
// down or entering an absence. When both times are present the overtime
// calculation runs exactly as it would have on a live clock-out.
func (s *AttendanceService) Create(ctx context.Context, input CreateAttendanceInput) (*repository.Attendance, error) {
	staff, err := s.requireStaff(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}

	date := dateOnly(input.Date)

	att := &repository.Attendance{
		TenantID: staff.TenantID,
		StaffID:  input.StaffID,
		Date:     date,
		Status:   input.Status,
		Notes:    input.Notes,
	}
	if a := actor.FromContext(ctx); a != nil {
		att.CreatedBy = &a.ID
	}

	if input.ClockIn != nil {
		t, err := timeOfDayOn(date, *input.ClockIn)
		if err != nil {
			return nil, errors.Validation(map[string]string{"clock_in": "must be a valid time (HH:MM)"})
		}
		att.ClockIn = &t
	}
	if input.ClockOut != nil {
		t, err := timeOfDayOn(date, *input.ClockOut)
		if err != nil {
			return nil, errors.Validation(map[string]string{"clock_out": "must be a valid time (HH:MM)"})
		}
		att.ClockOut = &t
	}

	delta := s.overtime.Apply(att, staff)

	if err := s.attRepo.Create(ctx, att, delta); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("staff_id", input.StaffID).
		Str("attendance_id", att.ID).
		Str("date", date.Format("2006-01-02")).
		Msg("attendance record created")

	changedBy := ""
	if a := actor.FromContext(ctx); a != nil {
		changedBy = a.ID
	}
	s.publisher.PublishCreated(ctx, att, changedBy)

	return att, nil
}

// Update corrects an existing record. The overtime recomputation applies the
// signed difference against the lifetime counter, so repeated corrections of
// the same record never double-count.
func (s *AttendanceService) Update(ctx context.Context, recordID string, input UpdateAttendanceInput) (*repository.Attendance, error) {
	att, err := s.attRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	staff, err := s.requireStaff(ctx, att.StaffID)
	if err != nil {
		return nil, err
	}

	if input.ClockIn != nil {
		t, err := timeOfDayOn(att.Date, *input.ClockIn)
		if err != nil {
			return nil, errors.Validation(map[string]string{"clock_in": "must be a valid time (HH:MM)"})
		}
		att.ClockIn = &t
	}
	if input.ClockOut != nil {
		t, err := timeOfDayOn(att.Date, *input.ClockOut)
		if err != nil {
			return nil, errors.Validation(map[string]string{"clock_out": "must be a valid time (HH:MM)"})
		}
		att.ClockOut = &t
	}
	if input.Status != "" {
		att.Status = input.Status
	}
	if input.Notes != nil {
		att.Notes = input.Notes
	}
	if a := actor.FromContext(ctx); a != nil {
		att.UpdatedBy = &a.ID
	}

	delta := s.overtime.Apply(att, staff)

	if err := s.attRepo.Update(ctx, att, delta); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("attendance_id", att.ID).
		Int("overtime_delta", delta).
		Msg("attendance record updated")

	changedBy := ""
	if a := actor.FromContext(ctx); a != nil {
		changedBy = a.ID
	}
	s.publisher.PublishUpdated(ctx, att, changedBy)

	return att, nil
}

// Delete removes a record and reverses its overtime contribution. The
// counter decrement and the row delete share a transaction, and the SQL
// clamp keeps the aggregate from going negative if the counter was already
// reconciled by other means.
func (s *AttendanceService) Delete(ctx context.Context, recordID string) error {
	att, err := s.attRepo.GetByID(ctx, recordID)
	if err != nil {
		return err
	}

	staff, err := s.requireStaff(ctx, att.StaffID)
	if err != nil {
		return err
	}

	delta := 0
	if staff.OvertimeEnabled && att.OvertimeMinutes > 0 {
		delta = -att.OvertimeMinutes
	}

	if err := s.attRepo.Delete(ctx, att, delta); err != nil {
		return err
	}

	s.logger.Info().
		Str("attendance_id", att.ID).
		Str("staff_id", att.StaffID).
		Int("overtime_delta", delta).
		Msg("attendance record deleted")

	changedBy := ""
	if a := actor.FromContext(ctx); a != nil {
		changedBy = a.ID
	}
	s.publisher.PublishDeleted(ctx, att, changedBy)

	return nil
}

// Get fetches a single record, enforcing tenant ownership.
func (s *AttendanceService) Get(ctx context.Context, recordID string) (*repository.Attendance, error) {
	tenantID, err := tenant.TenantID(ctx)
	if err != nil {
		return nil, errors.Unauthorized("missing tenant context")
	}

	att, err := s.attRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if att.TenantID != tenantID {
		return nil, errors.Forbidden("attendance record belongs to a different school")
	}

	return att, nil
}

// List returns a filtered page of the tenant's records.
func (s *AttendanceService) List(ctx context.Context, filter repository.AttendanceFilter) ([]*repository.Attendance, int64, error) {
	return s.attRepo.List(ctx, filter)
}
