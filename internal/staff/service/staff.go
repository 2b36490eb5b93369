package service

import (
	"context"

	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
	"github.com/schoolhub/schoolhub-backend/pkg/errors"
	"github.com/schoolhub/schoolhub-backend/pkg/logger"
	"github.com/schoolhub/schoolhub-backend/pkg/tenant"
)

// StaffOvertimeSummary is a staff member's profile together with the priced
// value of their accumulated overtime.
type StaffOvertimeSummary struct {
	Staff       *repository.Staff `json:"staff"`
	OvertimePay float64           `json:"overtime_pay"`
}

// StaffService exposes staff reads for the attendance screens.
type StaffService struct {
	staffRepo *repository.StaffRepository
	overtime  *OvertimeCalculator
	logger    *logger.Logger
}

// NewStaffService creates a new staff service
func NewStaffService(staffRepo *repository.StaffRepository, overtime *OvertimeCalculator, log *logger.Logger) *StaffService {
	return &StaffService{
		staffRepo: staffRepo,
		overtime:  overtime,
		logger:    log,
	}
}

// Get fetches a staff member with their overtime summary.
func (s *StaffService) Get(ctx context.Context, staffID string) (*StaffOvertimeSummary, error) {
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

	return &StaffOvertimeSummary{
		Staff:       staff,
		OvertimePay: s.overtime.CalculateOvertimePay(staff),
	}, nil
}

// OvertimePayBreakdown prices a staff member's accumulated overtime without
// the rest of the profile.
type OvertimePayBreakdown struct {
	StaffID         string  `json:"staff_id"`
	OvertimeEnabled bool    `json:"overtime_enabled"`
	OvertimeMinutes int     `json:"overtime_minutes"`
	OvertimeRate    float64 `json:"overtime_rate"`
	OvertimePay     float64 `json:"overtime_pay"`
}

// OvertimePay returns the priced overtime for a staff member.
func (s *StaffService) OvertimePay(ctx context.Context, staffID string) (*OvertimePayBreakdown, error) {
	summary, err := s.Get(ctx, staffID)
	if err != nil {
		return nil, err
	}

	return &OvertimePayBreakdown{
		StaffID:         summary.Staff.ID,
		OvertimeEnabled: summary.Staff.OvertimeEnabled,
		OvertimeMinutes: summary.Staff.TotalOvertimeMinutes,
		OvertimeRate:    summary.Staff.OvertimeRate,
		OvertimePay:     summary.OvertimePay,
	}, nil
}

// ListActive lists the tenant's active staff.
func (s *StaffService) ListActive(ctx context.Context) ([]*repository.Staff, error) {
	return s.staffRepo.ListActive(ctx)
}
