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
)

func strPtr(s string) *string { return &s }

func TestCustomerService_CreateWalkIn(t *testing.T) {
	svc := NewCustomerService(testutil.NewDB(t), nil)
	ctx := context.Background()

	c, err := svc.CreateWalkIn(ctx, CreateCustomerInput{
		FullName:    "  Lan Nguyen ",
		PhoneNumber: "+84 912 345 678",
		DateOfBirth: "1990-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lan Nguyen", *c.FullName)
	assert.Equal(t, "0912345678", *c.PhoneNumber)
	assert.Equal(t, models.ProfileWalkIn, c.Kind())
	assert.True(t, c.IsActive)

	_, err = svc.CreateWalkIn(ctx, CreateCustomerInput{FullName: "Other", PhoneNumber: "0912345678"})
	assert.True(t, errs.Is(err, errs.KindConflict))
}

func TestCustomerService_CreateWalkInValidation(t *testing.T) {
	svc := NewCustomerService(testutil.NewDB(t), nil)
	ctx := context.Background()

	cases := []CreateCustomerInput{
		{PhoneNumber: "0912345678"},
		{FullName: "No Phone"},
		{FullName: "Bad Phone", PhoneNumber: "12345"},
		{FullName: "Future", PhoneNumber: "0912345678", DateOfBirth: "2999-01-01"},
		{FullName: "Bad Date", PhoneNumber: "0912345678", DateOfBirth: "15/03/1990"},
	}
	for _, in := range cases {
		_, err := svc.CreateWalkIn(ctx, in)
		assert.True(t, errs.Is(err, errs.KindValidation), "%+v", in)
	}
}

func TestCustomerService_DeletedPhoneCanBeReused(t *testing.T) {
	svc := NewCustomerService(testutil.NewDB(t), nil)
	ctx := context.Background()

	first, err := svc.CreateWalkIn(ctx, CreateCustomerInput{FullName: "First", PhoneNumber: "0912345678"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, first.ID))

	err = svc.Delete(ctx, first.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = svc.GetByID(ctx, first.ID, false)
	assert.True(t, errs.Is(err, errs.KindNotFound))
	deleted, err := svc.GetByID(ctx, first.ID, true)
	require.NoError(t, err)
	assert.True(t, deleted.DeletedAt.Valid)

	second, err := svc.CreateWalkIn(ctx, CreateCustomerInput{FullName: "Second", PhoneNumber: "0912345678"})
	require.NoError(t, err)

	found, err := svc.GetByPhone(ctx, "84912345678", false)
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)

	// the phone is live again, so the old profile cannot come back
	_, err = svc.Restore(ctx, first.ID)
	assert.True(t, errs.Is(err, errs.KindConflict))

	require.NoError(t, svc.Delete(ctx, second.ID))
	restored, err := svc.Restore(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", *restored.FullName)

	_, err = svc.Restore(ctx, first.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestCustomerService_Update(t *testing.T) {
	svc := NewCustomerService(testutil.NewDB(t), nil)
	ctx := context.Background()

	a, err := svc.CreateWalkIn(ctx, CreateCustomerInput{FullName: "A", PhoneNumber: "0911111111", Notes: "keep"})
	require.NoError(t, err)
	_, err = svc.CreateWalkIn(ctx, CreateCustomerInput{FullName: "B", PhoneNumber: "0922222222"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, a.ID, UpdateCustomerInput{
		FullName:    strPtr("Anh"),
		DateOfBirth: strPtr("1985-12-01"),
		SkinType:    strPtr("oily"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anh", *updated.FullName)
	assert.Equal(t, "keep", updated.Notes)
	assert.Equal(t, "oily", updated.SkinType)
	require.NotNil(t, updated.DateOfBirth)

	_, err = svc.Update(ctx, a.ID, UpdateCustomerInput{PhoneNumber: strPtr("0922222222")})
	assert.True(t, errs.Is(err, errs.KindConflict))

	_, err = svc.Update(ctx, a.ID, UpdateCustomerInput{FullName: strPtr("  ")})
	assert.True(t, errs.Is(err, errs.KindValidation))

	// same phone in another spelling is not a conflict with itself
	updated, err = svc.Update(ctx, a.ID, UpdateCustomerInput{PhoneNumber: strPtr("+84911111111"), DateOfBirth: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "0911111111", *updated.PhoneNumber)
	assert.Nil(t, updated.DateOfBirth)

	_, err = svc.Update(ctx, uuid.New(), UpdateCustomerInput{})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestCustomerService_StubAndLookup(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCustomerService(db, nil)
	ctx := context.Background()
	acc := testutil.SeedAccount(t, db, "stub@example.com", models.RoleCustomer)

	stub, err := svc.CreateStub(ctx, acc.ID, CreateCustomerInput{FullName: "Mai"})
	require.NoError(t, err)
	assert.Equal(t, models.ProfileStub, stub.Kind())
	assert.Nil(t, stub.PhoneNumber)

	got, err := svc.GetByAccount(ctx, acc.ID, false)
	require.NoError(t, err)
	assert.Equal(t, stub.ID, got.ID)

	_, err = svc.CreateStub(ctx, acc.ID, CreateCustomerInput{})
	assert.Error(t, err)

	_, err = svc.GetByPhone(ctx, "0933333333", false)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestCustomerService_Search(t *testing.T) {
	svc := NewCustomerService(testutil.NewDB(t), nil)
	ctx := context.Background()

	for _, in := range []CreateCustomerInput{
		{FullName: "Hoa Tran", PhoneNumber: "0911000001"},
		{FullName: "Minh HOANG", PhoneNumber: "0911000002"},
		{FullName: "Thu Le", PhoneNumber: "0988000003"},
	} {
		_, err := svc.CreateWalkIn(ctx, in)
		require.NoError(t, err)
	}

	page, err := svc.Search(ctx, "hoa", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.Search(ctx, "0988", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Thu Le", *page.Items[0].FullName)

	page, err = svc.Search(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 3, page.Total)
	assert.True(t, page.HasNext)
}

func TestCustomerService_SearchMatchesWildcardsLiterally(t *testing.T) {
	svc := NewCustomerService(testutil.NewDB(t), nil)
	ctx := context.Background()

	for _, in := range []CreateCustomerInput{
		{FullName: "An Nguyen", PhoneNumber: "0912000001"},
		{FullName: "Bao_Pham", PhoneNumber: "0912000002"},
		{FullName: "Chi 100% Vo", PhoneNumber: "0912000003"},
	} {
		_, err := svc.CreateWalkIn(ctx, in)
		require.NoError(t, err)
	}

	page, err := svc.Search(ctx, "_", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Bao_Pham", *page.Items[0].FullName)

	page, err = svc.Search(ctx, "%", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Chi 100% Vo", *page.Items[0].FullName)

	page, err = svc.Search(ctx, `\`, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
}
