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

func ptr[T any](v T) *T { return &v }

func seedMedia(t *testing.T, db *gorm.DB, path string) *models.MediaFile {
	t.Helper()
	m := &models.MediaFile{Bucket: "media", Path: path, URL: "https://cdn.example.com/" + path, ContentType: "image/png", IsActive: true}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestCatalogService_CategoriesAndServices(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CategoryInput{Name: ptr("  ")})
	assert.True(t, errs.Is(err, errs.KindValidation))

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: ptr("Facial")})
	require.NoError(t, err)
	assert.True(t, cat.IsActive)

	_, err = svc.CreateService(ctx, ServiceInput{Name: ptr("Peel"), Price: ptr(-1.0)})
	assert.True(t, errs.Is(err, errs.KindValidation))
	_, err = svc.CreateService(ctx, ServiceInput{Name: ptr("Peel"), Duration: ptr(0)})
	assert.True(t, errs.Is(err, errs.KindValidation))
	missing := uuid.New()
	_, err = svc.CreateService(ctx, ServiceInput{Name: ptr("Peel"), CategoryID: &missing})
	assert.True(t, errs.Is(err, errs.KindNotFound))

	peel, err := svc.CreateService(ctx, ServiceInput{Name: ptr("Peel"), CategoryID: &cat.ID, Price: ptr(35.5), Duration: ptr(45)})
	require.NoError(t, err)

	got, err := svc.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, got.Services, 1)

	updated, err := svc.UpdateService(ctx, peel.ID, ServiceInput{Price: ptr(40.0), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 40.0, updated.Price)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 45, updated.Duration)

	require.NoError(t, svc.DeleteService(ctx, peel.ID))
	got, err = svc.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Services)

	renamed, err := svc.UpdateCategory(ctx, cat.ID, CategoryInput{Name: ptr("Face care")})
	require.NoError(t, err)
	assert.Equal(t, "Face care", renamed.Name)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.True(t, errs.Is(svc.DeleteCategory(ctx, cat.ID), errs.KindNotFound))
	list, total, err := svc.ListCategories(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestCatalogService_ProductImages(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: ptr("Serum"), Stock: ptr(-2)})
	assert.True(t, errs.Is(err, errs.KindValidation))

	p, err := svc.CreateProduct(ctx, ProductInput{Name: ptr("Serum"), SKU: ptr("SER-01"), Price: ptr(20.0), Stock: ptr(5)})
	require.NoError(t, err)
	front := seedMedia(t, db, "uploads/front.png")
	back := seedMedia(t, db, "uploads/back.png")

	p, err = svc.AddProductImage(ctx, p.ID, front.ID, false)
	require.NoError(t, err)
	require.Len(t, p.Images, 1)
	require.NotNil(t, p.PrimaryImageID)
	frontImage := p.Images[0].ID
	assert.Equal(t, frontImage, *p.PrimaryImageID)
	assert.Equal(t, front.URL, p.Images[0].URL)

	p, err = svc.AddProductImage(ctx, p.ID, back.ID, false)
	require.NoError(t, err)
	require.Len(t, p.Images, 2)
	assert.Equal(t, frontImage, *p.PrimaryImageID)
	assert.Equal(t, 1, p.Images[1].SortOrder)

	_, err = svc.AddProductImage(ctx, p.ID, uuid.New(), false)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	p, err = svc.RemoveProductImage(ctx, p.ID, frontImage)
	require.NoError(t, err)
	require.Len(t, p.Images, 1)
	assert.Nil(t, p.PrimaryImageID)

	_, err = svc.RemoveProductImage(ctx, p.ID, frontImage)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	p, err = svc.UpdateProduct(ctx, p.ID, ProductInput{Stock: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
	assert.Len(t, p.Images, 1)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestCatalogService_TreatmentPlans(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()
	facial := seedService(t, db, "Facial")
	massage := seedService(t, db, "Massage")

	plan, err := svc.CreateTreatmentPlan(ctx, TreatmentPlanInput{
		Name:       ptr("Glow course"),
		Price:      ptr(300.0),
		ServiceIDs: &[]uuid.UUID{facial.ID, massage.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Sessions)
	assert.Len(t, plan.Services, 2)

	_, err = svc.CreateTreatmentPlan(ctx, TreatmentPlanInput{Name: ptr("Broken"), ServiceIDs: &[]uuid.UUID{uuid.New()}})
	assert.True(t, errs.Is(err, errs.KindNotFound))

	plan, err = svc.UpdateTreatmentPlan(ctx, plan.ID, TreatmentPlanInput{Sessions: ptr(6), ServiceIDs: &[]uuid.UUID{massage.ID}})
	require.NoError(t, err)
	assert.Equal(t, 6, plan.Sessions)
	require.Len(t, plan.Services, 1)
	assert.Equal(t, massage.ID, plan.Services[0].ID)

	_, err = svc.UpdateTreatmentPlan(ctx, plan.ID, TreatmentPlanInput{Sessions: ptr(0)})
	assert.True(t, errs.Is(err, errs.KindValidation))

	plan, err = svc.SetTreatmentPlanServices(ctx, plan.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Services)

	require.NoError(t, svc.DeleteTreatmentPlan(ctx, plan.ID))
	plans, total, err := svc.ListTreatmentPlans(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.Zero(t, total)
}

func TestCatalogService_ListReportsLiveTotal(t *testing.T) {
	svc := NewCatalogService(testutil.NewDB(t), nil)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"Facial", "Body", "Nails"} {
		cat, err := svc.CreateCategory(ctx, CategoryInput{Name: ptr(name)})
		require.NoError(t, err)
		ids = append(ids, cat.ID)
	}

	page, total, err := svc.ListCategories(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.EqualValues(t, 3, total)

	require.NoError(t, svc.DeleteCategory(ctx, ids[0]))
	page, total, err = svc.ListCategories(ctx, 2, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.EqualValues(t, 2, total)
}
