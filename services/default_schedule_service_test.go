package services

import (
	"context"
	"testing"

	"spacrm-backend/errs"
	"spacrm-backend/models"
	"spacrm-backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScheduleService(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDefaultScheduleService(db)
	ctx := context.Background()
	acc := testutil.SeedAccount(t, db, "hours@example.com", models.RoleStaff)

	days, err := svc.Get(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.False(t, days[0].IsActive)

	days, err = svc.Replace(ctx, acc.ID, weekdayHours())
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.True(t, days[4].IsActive)
	assert.Equal(t, "17:00:00", days[4].EndTime.String())
	assert.False(t, days[5].IsActive)

	again, err := svc.Get(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, again[0].IsActive)

	bad := weekdayHours()
	bad[1].StartTime = "nine"
	_, err = svc.Replace(ctx, acc.ID, bad)
	assert.True(t, errs.Is(err, errs.KindValidation))
}
