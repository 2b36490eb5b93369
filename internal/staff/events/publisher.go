package events

import (
	"context"

	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
	"github.com/schoolhub/schoolhub-backend/pkg/logger"
	"github.com/schoolhub/schoolhub-backend/pkg/messaging"
)

// AttendancePublisher publishes attendance lifecycle events to the staff
// events exchange. Publishing is best-effort: a broker failure is logged but
// never fails the request, since the database write already committed.
type AttendancePublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewAttendancePublisher creates a new attendance event publisher
func NewAttendancePublisher(publisher *messaging.Publisher, log *logger.Logger) *AttendancePublisher {
	return &AttendancePublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishClockIn publishes a clock-in transition
func (p *AttendancePublisher) PublishClockIn(ctx context.Context, att *repository.Attendance) {
	p.publishClock(ctx, messaging.EventAttendanceClockIn, att)
}

// PublishClockOut publishes a clock-out transition
func (p *AttendancePublisher) PublishClockOut(ctx context.Context, att *repository.Attendance) {
	p.publishClock(ctx, messaging.EventAttendanceClockOut, att)
}

func (p *AttendancePublisher) publishClock(ctx context.Context, eventType string, att *repository.Attendance) {
	if p == nil || p.publisher == nil {
		return
	}

	event := messaging.AttendanceClockEvent{
		AttendanceID: att.ID,
		StaffID:      att.StaffID,
		TenantID:     att.TenantID,
		Date:         att.Date.Format("2006-01-02"),
		ClockIn:      att.ClockIn,
		ClockOut:     att.ClockOut,
		IsLate:       att.IsLate,
		LateMinutes:  att.LateMinutes,
		Overtime:     att.OvertimeMinutes,
	}

	if err := p.publisher.Publish(ctx, eventType, event); err != nil {
		p.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("attendance_id", att.ID).
			Msg("failed to publish attendance event")
	}
}

// PublishCreated publishes a manual-create notification
func (p *AttendancePublisher) PublishCreated(ctx context.Context, att *repository.Attendance, changedBy string) {
	p.publishChanged(ctx, messaging.EventAttendanceCreated, att, changedBy)
}

// PublishUpdated publishes a manual-update notification
func (p *AttendancePublisher) PublishUpdated(ctx context.Context, att *repository.Attendance, changedBy string) {
	p.publishChanged(ctx, messaging.EventAttendanceUpdated, att, changedBy)
}

// PublishDeleted publishes a delete notification
func (p *AttendancePublisher) PublishDeleted(ctx context.Context, att *repository.Attendance, changedBy string) {
	p.publishChanged(ctx, messaging.EventAttendanceDeleted, att, changedBy)
}

func (p *AttendancePublisher) publishChanged(ctx context.Context, eventType string, att *repository.Attendance, changedBy string) {
	if p == nil || p.publisher == nil {
		return
	}

	event := messaging.AttendanceChangedEvent{
		AttendanceID: att.ID,
		StaffID:      att.StaffID,
		TenantID:     att.TenantID,
		Date:         att.Date.Format("2006-01-02"),
		Status:       att.Status,
		ChangedBy:    changedBy,
	}

	if err := p.publisher.Publish(ctx, eventType, event); err != nil {
		p.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("attendance_id", att.ID).
			Msg("failed to publish attendance event")
	}
}
