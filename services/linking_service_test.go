package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"spacrm-backend/cache"
	"spacrm-backend/errs"
	"spacrm-backend/models"
	"spacrm-backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type linkingFixture struct {
	db        *gorm.DB
	sms       *testutil.FakeSMS
	clock     *testutil.Clock
	customers *CustomerService
	linking   *LinkingService
	account   *models.Account
	stub      *models.Customer
	walkIn    *models.Customer
}

func newLinkingFixture(t *testing.T) *linkingFixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	sms := &testutil.FakeSMS{}
	otp := NewOTPService(cache.NewMemoryStore(clock.Now), clock)
	customers := NewCustomerService(db, nil)
	ctx := context.Background()

	acc := testutil.SeedAccount(t, db, "lan@example.com", models.RoleCustomer)
	stub, err := customers.CreateStub(ctx, acc.ID, CreateCustomerInput{FullName: "Lan"})
	require.NoError(t, err)
	walkIn, err := customers.CreateWalkIn(ctx, CreateCustomerInput{FullName: "Lan Nguyen", PhoneNumber: "0912345678", Notes: "sensitive skin"})
	require.NoError(t, err)

	return &linkingFixture{
		db: db, sms: sms, clock: clock, customers: customers,
		linking: NewLinkingService(db, otp, sms, nil),
		account: acc, stub: stub, walkIn: walkIn,
	}
}

var sixDigits = regexp.MustCompile(`\b(\d{6})\b`)

func (f *linkingFixture) initiate(t *testing.T) string {
	t.Helper()
	res, err := f.linking.Initiate(context.Background(), "+84 912 345 678")
	require.NoError(t, err)
	assert.Equal(t, 300, res.ExpiresInSeconds)

	msg, ok := f.sms.Last()
	require.True(t, ok)
	assert.Equal(t, "0912345678", msg.To)
	m := sixDigits.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2)
	return m[1]
}

func TestLinking_HappyPath(t *testing.T) {
	f := newLinkingFixture(t)
	ctx := context.Background()
	code := f.initiate(t)

	linked, err := f.linking.VerifyAndMerge(ctx, f.account.ID, "0912345678", code)
	require.NoError(t, err)
	assert.Equal(t, f.walkIn.ID, linked.ID)
	assert.Equal(t, models.ProfileLinked, linked.Kind())
	assert.Equal(t, "sensitive skin", linked.Notes)

	own, err := f.customers.GetByAccount(ctx, f.account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, f.walkIn.ID, own.ID)

	stub, err := f.customers.GetByID(ctx, f.stub.ID, true)
	require.NoError(t, err)
	assert.True(t, stub.DeletedAt.Valid)

	// the code is single use
	_, err = f.linking.VerifyAndMerge(ctx, f.account.ID, "0912345678", code)
	assert.ErrorIs(t, err, errs.ErrInvalidOTP)
}

func TestLinking_InitiateRequiresWalkIn(t *testing.T) {
	f := newLinkingFixture(t)
	ctx := context.Background()

	_, err := f.linking.Initiate(ctx, "0999999999")
	assert.True(t, errs.Is(err, errs.KindNotFound))
	_, err = f.linking.Initiate(ctx, "not a phone")
	assert.True(t, errs.Is(err, errs.KindValidation))
	assert.Empty(t, f.sms.Sent)
}

func TestLinking_InitiateSurvivesSMSFailure(t *testing.T) {
	f := newLinkingFixture(t)
	f.sms.Err = errors.New("gateway down")

	res, err := f.linking.Initiate(context.Background(), "0912345678")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Message)
}

func TestLinking_WrongAndExpiredCode(t *testing.T) {
	f := newLinkingFixture(t)
	ctx := context.Background()
	code := f.initiate(t)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err := f.linking.VerifyAndMerge(ctx, f.account.ID, "0912345678", wrong)
	assert.ErrorIs(t, err, errs.ErrInvalidOTP)

	f.clock.Advance(LinkOTPTTL)
	_, err = f.linking.VerifyAndMerge(ctx, f.account.ID, "0912345678", code)
	assert.ErrorIs(t, err, errs.ErrInvalidOTP)

	walkIn, err := f.customers.GetByID(ctx, f.walkIn.ID, false)
	require.NoError(t, err)
	assert.Nil(t, walkIn.AccountID)
}

func TestLinking_AlreadyLinkedAccount(t *testing.T) {
	f := newLinkingFixture(t)
	ctx := context.Background()
	code := f.initiate(t)
	_, err := f.linking.VerifyAndMerge(ctx, f.account.ID, "0912345678", code)
	require.NoError(t, err)

	_, err = f.customers.CreateWalkIn(ctx, CreateCustomerInput{FullName: "Lan again", PhoneNumber: "0977777777"})
	require.NoError(t, err)
	res, err := f.linking.Initiate(ctx, "0977777777")
	require.NoError(t, err)
	require.NotNil(t, res)
	msg, _ := f.sms.Last()
	second := sixDigits.FindStringSubmatch(msg.Body)[1]

	_, err = f.linking.VerifyAndMerge(ctx, f.account.ID, "0977777777", second)
	assert.True(t, errs.Is(err, errs.KindAccountLinking))
}

func TestLinking_MergeFailureRollsBack(t *testing.T) {
	f := newLinkingFixture(t)
	ctx := context.Background()
	code := f.initiate(t)

	const cb = "test:fail_update"
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register(cb, func(tx *gorm.DB) {
		tx.AddError(errors.New("disk full"))
	}))

	_, err := f.linking.VerifyAndMerge(ctx, f.account.ID, "0912345678", code)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindAccountLinking))

	stub, err := f.customers.GetByID(ctx, f.stub.ID, false)
	require.NoError(t, err)
	assert.False(t, stub.DeletedAt.Valid)
	walkIn, err := f.customers.GetByID(ctx, f.walkIn.ID, false)
	require.NoError(t, err)
	assert.Nil(t, walkIn.AccountID)

	// the code survives so the caller can retry
	require.NoError(t, f.db.Callback().Update().Remove(cb))
	linked, err := f.linking.VerifyAndMerge(ctx, f.account.ID, "0912345678", code)
	require.NoError(t, err)
	assert.Equal(t, f.walkIn.ID, linked.ID)
}
