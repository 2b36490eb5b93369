package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// User events (published by the identity service, consumed here to keep
	// the staff name cache warm)
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"

	// Attendance events
	EventAttendanceClockIn  = "staff.attendance.clock_in"
	EventAttendanceClockOut = "staff.attendance.clock_out"
	EventAttendanceCreated  = "staff.attendance.created"
	EventAttendanceUpdated  = "staff.attendance.updated"
	EventAttendanceDeleted  = "staff.attendance.deleted"
)

// Exchange names
const (
	ExchangeUserEvents  = "user.events"
	ExchangeStaffEvents = "staff.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// UserCreatedEvent is published by the identity service when a user is created
type UserCreatedEvent struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	TenantID     string `json:"tenant_id"`
	TenantSlug   string `json:"tenant_slug"`
	TenantSchema string `json:"tenant_schema"`
}

// UserUpdatedEvent is published by the identity service on profile changes
type UserUpdatedEvent struct {
	UserID       string                 `json:"user_id"`
	Fields       map[string]interface{} `json:"fields"`
	TenantID     string                 `json:"tenant_id"`
	TenantSlug   string                 `json:"tenant_slug"`
	TenantSchema string                 `json:"tenant_schema"`
}

// UserDeletedEvent is published by the identity service when a user is removed
type UserDeletedEvent struct {
	UserID       string `json:"user_id"`
	TenantID     string `json:"tenant_id"`
	TenantSlug   string `json:"tenant_slug"`
	TenantSchema string `json:"tenant_schema"`
}

// AttendanceClockEvent carries a clock-in or clock-out transition
type AttendanceClockEvent struct {
	AttendanceID string     `json:"attendance_id"`
	StaffID      string     `json:"staff_id"`
	TenantID     string     `json:"tenant_id"`
	Date         string     `json:"date"`
	ClockIn      *time.Time `json:"clock_in,omitempty"`
	ClockOut     *time.Time `json:"clock_out,omitempty"`
	IsLate       bool       `json:"is_late"`
	LateMinutes  int        `json:"late_minutes"`
	Overtime     int        `json:"overtime_minutes"`
}

// AttendanceChangedEvent carries manual create/update/delete notifications
type AttendanceChangedEvent struct {
	AttendanceID string `json:"attendance_id"`
	StaffID      string `json:"staff_id"`
	TenantID     string `json:"tenant_id"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	ChangedBy    string `json:"changed_by,omitempty"`
}
