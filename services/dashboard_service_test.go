package services

import (
	"context"
	"testing"
	"time"

	"spacrm-backend/models"
	"spacrm-backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Overview(t *testing.T) {
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	customers := NewCustomerService(db, nil)
	_, err := customers.CreateWalkIn(ctx, CreateCustomerInput{FullName: "Walk", PhoneNumber: "0908000001", DateOfBirth: "1990-06-10"})
	require.NoError(t, err)
	acc := testutil.SeedAccount(t, db, "dash@example.com", models.RoleCustomer)
	_, err = customers.CreateStub(ctx, acc.ID, CreateCustomerInput{})
	require.NoError(t, err)

	onLeave := seedStaff(t, db, "leave@example.com", "0908000002")
	seedStaff(t, db, "work@example.com", "0908000003")
	timeOff := NewTimeOffService(db, clock, nil)
	req, err := timeOff.Request(ctx, onLeave.AccountID, models.RoleStaff, TimeOffRequestInput{StartDate: "2024-06-03", EndDate: "2024-06-04"})
	require.NoError(t, err)
	_, err = timeOff.Decide(ctx, req.ID, acc.ID, models.TimeOffApproved, "")
	require.NoError(t, err)
	_, err = timeOff.Request(ctx, onLeave.AccountID, models.RoleStaff, TimeOffRequestInput{StartDate: "2024-07-01", EndDate: "2024-07-01"})
	require.NoError(t, err)

	out, err := NewDashboardService(db, clock).Overview(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, out.TotalCustomers)
	assert.EqualValues(t, 1, out.WalkInsAwaitingLink)
	assert.EqualValues(t, 2, out.ActiveStaff)
	assert.EqualValues(t, 1, out.PendingTimeOff)
	assert.EqualValues(t, 1, out.StaffOnLeaveToday)
	assert.Equal(t, 1, out.UpcomingBirthdays)
}
