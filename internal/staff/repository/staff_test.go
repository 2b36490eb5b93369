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

func TestStaff_GetByID(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "staff-get-school")

	fixture := suite.Fixtures.Staff(tenant.ID, testutil.WithShift("07:30", "16:30"), testutil.WithPay(3500, 38))
	insertStaff(t, ctx, fixture)

	repo := repository.NewStaffRepository(suite.DB)

	staff, err := repo.GetByID(ctx, fixture.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, staff.TenantID)
	assert.Equal(t, "07:30", staff.ShiftStart)
	assert.Equal(t, "16:30", staff.ShiftEnd)
	assert.InDelta(t, 3500.0, staff.Salary, 0.001)
	assert.Equal(t, 38, staff.WeeklyHours)
	assert.Equal(t, 0, staff.TotalOvertimeMinutes)
}

func TestStaff_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	suite.SetupSchool(t, ctx, "staff-missing-school")

	repo := repository.NewStaffRepository(suite.DB)

	_, err := repo.GetByID(ctx, "99999999-9999-9999-9999-999999999999")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestStaff_ListActive(t *testing.T) {
	ctx := context.Background()
	tenantA := suite.SetupSchool(t, ctx, "staff-list-school-a")
	tenantB := suite.SetupSchool(t, ctx, "staff-list-school-b")

	insertStaff(t, ctx, suite.Fixtures.Staff(tenantA.ID))
	insertStaff(t, ctx, suite.Fixtures.Staff(tenantA.ID))
	insertStaff(t, ctx, suite.Fixtures.Staff(tenantA.ID, testutil.Inactive()))
	insertStaff(t, ctx, suite.Fixtures.Staff(tenantB.ID))

	repo := repository.NewStaffRepository(suite.DB)

	staff, err := repo.ListActive(suite.TenantContext(tenantA))
	require.NoError(t, err)
	assert.Len(t, staff, 2, "inactive staff and other tenants are excluded")

	for _, s := range staff {
		assert.Equal(t, tenantA.ID, s.TenantID)
		assert.True(t, s.IsActive)
	}
}

func TestStaff_ListActive_JoinsUserCache(t *testing.T) {
	ctx := context.Background()
	tenant := suite.SetupSchool(t, ctx, "staff-names-school")

	user := suite.Fixtures.CachedUser(tenant.ID)
	_, err := suite.RawDB.ExecContext(ctx, `
		INSERT INTO user_cache (user_id, tenant_id, email, name, role)
		VALUES ($1, $2, $3, $4, $5)
	`, user.UserID, user.TenantID, user.Email, user.Name, user.Role)
	require.NoError(t, err)

	insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID, testutil.WithUser(user.UserID)))
	insertStaff(t, ctx, suite.Fixtures.Staff(tenant.ID))

	repo := repository.NewStaffRepository(suite.DB)

	staff, err := repo.ListActive(suite.TenantContext(tenant))
	require.NoError(t, err)
	require.Len(t, staff, 2)

	var named, unnamed int
	for _, s := range staff {
		if s.Name != nil {
			named++
			assert.Equal(t, user.Name, *s.Name)
		} else {
			unnamed++
		}
	}
	assert.Equal(t, 1, named)
	assert.Equal(t, 1, unnamed, "staff without a cached user still list, just nameless")
}
