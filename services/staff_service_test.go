package services

import (
	"context"
	"testing"

	"spacrm-backend/errs"
	"spacrm-backend/models"
	"spacrm-backend/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedStaff(t *testing.T, db *gorm.DB, email, phone string) *models.StaffProfile {
	t.Helper()
	acc := testutil.SeedAccount(t, db, email, models.RoleCustomer)
	p, err := NewStaffService(db, nil).Create(context.Background(), CreateStaffInput{
		AccountID:   acc.ID,
		FullName:    "Staff " + email,
		PhoneNumber: phone,
		Position:    "Therapist",
	})
	require.NoError(t, err)
	return p
}

func seedService(t *testing.T, db *gorm.DB, name string) *models.Service {
	t.Helper()
	s := &models.Service{Name: name, Price: 40, Duration: 60, IsActive: true}
	require.NoError(t, db.Create(s).Error)
	return s
}

func TestStaffService_CreatePromotesAccount(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStaffService(db, nil)
	ctx := context.Background()
	acc := testutil.SeedAccount(t, db, "linh@example.com", models.RoleCustomer)

	p, err := svc.Create(ctx, CreateStaffInput{
		AccountID:   acc.ID,
		FullName:    "Linh",
		PhoneNumber: "+84 901 234 567",
		HireDate:    "2024-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EmploymentProbation, p.EmploymentStatus)
	assert.Equal(t, "0901234567", p.PhoneNumber)
	require.NotNil(t, p.HireDate)

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, "id = ?", acc.ID).Error)
	assert.Equal(t, models.RoleStaff, reloaded.Role)

	_, err = svc.Create(ctx, CreateStaffInput{AccountID: acc.ID, FullName: "Again", PhoneNumber: "0909999999"})
	assert.True(t, errs.Is(err, errs.KindConflict))

	other := testutil.SeedAccount(t, db, "other@example.com", models.RoleCustomer)
	_, err = svc.Create(ctx, CreateStaffInput{AccountID: other.ID, FullName: "Dup phone", PhoneNumber: "0901234567"})
	assert.True(t, errs.Is(err, errs.KindConflict))

	_, err = svc.Create(ctx, CreateStaffInput{AccountID: uuid.New(), FullName: "Ghost", PhoneNumber: "0908888888"})
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = svc.Create(ctx, CreateStaffInput{AccountID: other.ID, FullName: "Bad", PhoneNumber: "0907777777", EmploymentStatus: models.EmploymentResigned})
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestStaffService_CreateKeepsAdminRole(t *testing.T) {
	db := testutil.NewDB(t)
	acc := testutil.SeedAccount(t, db, "boss@example.com", models.RoleAdmin)

	_, err := NewStaffService(db, nil).Create(context.Background(), CreateStaffInput{AccountID: acc.ID, FullName: "Boss", PhoneNumber: "0901111111"})
	require.NoError(t, err)

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, "id = ?", acc.ID).Error)
	assert.Equal(t, models.RoleAdmin, reloaded.Role)
}

func TestStaffService_UpdateAndList(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStaffService(db, nil)
	ctx := context.Background()
	a := seedStaff(t, db, "a@example.com", "0901000001")
	b := seedStaff(t, db, "b@example.com", "0901000002")

	pos := "Senior therapist"
	updated, err := svc.Update(ctx, a.ID, UpdateStaffInput{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, pos, updated.Position)
	assert.Equal(t, a.FullName, updated.FullName)

	phone := b.PhoneNumber
	_, err = svc.Update(ctx, a.ID, UpdateStaffInput{PhoneNumber: &phone})
	assert.True(t, errs.Is(err, errs.KindConflict))

	_, err = svc.ChangeStatus(ctx, b.ID, models.EmploymentActive)
	require.NoError(t, err)

	page, err := svc.List(ctx, 1, 10, models.EmploymentActive)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].ID)

	page, err = svc.List(ctx, 1, 10, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	_, err = svc.List(ctx, 1, 10, "retired")
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestStaffService_StatusAndOffboard(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStaffService(db, nil)
	ctx := context.Background()
	p := seedStaff(t, db, "s@example.com", "0902000001")

	_, err := svc.ChangeStatus(ctx, p.ID, models.EmploymentResigned)
	assert.True(t, errs.Is(err, errs.KindValidation))

	changed, err := svc.ChangeStatus(ctx, p.ID, models.EmploymentSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.EmploymentSuspended, changed.EmploymentStatus)

	off, err := svc.Offboard(ctx, p.ID, "moved away")
	require.NoError(t, err)
	assert.Equal(t, models.EmploymentResigned, off.EmploymentStatus)
	assert.Contains(t, off.Notes, "moved away")

	var acc models.Account
	require.NoError(t, db.First(&acc, "id = ?", p.AccountID).Error)
	assert.False(t, acc.IsActive)

	_, err = svc.Offboard(ctx, p.ID, "")
	assert.True(t, errs.Is(err, errs.KindConflict))
	_, err = svc.ChangeStatus(ctx, p.ID, models.EmploymentActive)
	assert.True(t, errs.Is(err, errs.KindConflict))
}

func TestStaffService_AssignServices(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStaffService(db, nil)
	ctx := context.Background()
	p := seedStaff(t, db, "t@example.com", "0903000001")
	facial := seedService(t, db, "Facial")
	massage := seedService(t, db, "Massage")

	got, err := svc.AssignServices(ctx, p.ID, []uuid.UUID{facial.ID, massage.ID, facial.ID})
	require.NoError(t, err)
	assert.Len(t, got.Services, 2)

	got, err = svc.AssignServices(ctx, p.ID, []uuid.UUID{massage.ID})
	require.NoError(t, err)
	require.Len(t, got.Services, 1)
	assert.Equal(t, massage.ID, got.Services[0].ID)

	_, err = svc.AssignServices(ctx, p.ID, []uuid.UUID{uuid.New()})
	assert.True(t, errs.Is(err, errs.KindNotFound))

	got, err = svc.AssignServices(ctx, p.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Services)
}
