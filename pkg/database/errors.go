package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/schoolhub/schoolhub-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return mapUniqueConstraint(pqErr)

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: present, absent, half-day, leave",
		})

	case strings.Contains(constraint, "overtime_minutes_non_negative"):
		return errors.Validation(map[string]string{
			"total_overtime_minutes": "must not be negative",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// mapUniqueConstraint maps unique violations. The one-record-per-day
// invariant on staff_attendance surfaces as DUPLICATE_RECORD so a concurrent
// duplicate create fails closed with a state-conflict error.
func mapUniqueConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "staff_attendance_staff_id_date"):
		return errors.DuplicateRecord()
	case strings.Contains(constraint, "employee_number"):
		return errors.Conflict("a staff member with this employee number already exists")
	default:
		return errors.Conflict("a record with these values already exists")
	}
}
