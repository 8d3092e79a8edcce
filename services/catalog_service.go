package services

import (
	"context"
	"strings"

	"spacrm-backend/errs"
	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type ServiceInput struct {
	CategoryID  *uuid.UUID `json:"categoryId"`
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price"`
	Duration    *int       `json:"duration"`
	IsActive    *bool      `json:"isActive"`
}

type ProductInput struct {
	Name        *string  `json:"name"`
	SKU         *string  `json:"sku"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	IsActive    *bool    `json:"isActive"`
}

type TreatmentPlanInput struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Sessions    *int         `json:"sessions"`
	Price       *float64     `json:"price"`
	IsActive    *bool        `json:"isActive"`
	ServiceIDs  *[]uuid.UUID `json:"serviceIds"`
}

// CatalogService manages what the spa sells. All entities are soft-deleted
// through the shared repository.
type CatalogService struct {
	db         *gorm.DB
	categories *repository.Repository[models.Category]
	services   *repository.Repository[models.Service]
	products   *repository.Repository[models.Product]
	plans      *repository.Repository[models.TreatmentPlan]
	media      *repository.Repository[models.MediaFile]
	logger     *zap.Logger
}

func NewCatalogService(db *gorm.DB, log *zap.Logger) *CatalogService {
	return &CatalogService{
		db:         db,
		categories: repository.NewCategoryRepository(db),
		services:   repository.NewServiceRepository(db),
		products:   repository.NewProductRepository(db),
		plans:      repository.NewTreatmentPlanRepository(db),
		media:      repository.NewMediaRepository(db),
		logger:     logger.OrNop(log),
	}
}

func requireName(name *string) (string, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return "", errs.Validation("Name is required")
	}
	return strings.TrimSpace(*name), nil
}

func checkPrice(price *float64) error {
	if price != nil && *price < 0 {
		return errs.Validation("Price cannot be negative")
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func valueOr[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// listWithTotal returns one page of live rows and the live row count.
func listWithTotal[T any](ctx context.Context, repo *repository.Repository[T], skip, limit int) ([]T, int64, error) {
	list, err := repo.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context, skip, limit int) ([]models.Category, int64, error) {
	return listWithTotal(ctx, s.categories, skip, limit)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categories.Get(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	c := &models.Category{Name: name, Description: valueOr(in.Description), IsActive: boolOr(in.IsActive, true)}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.categories.Get(ctx, c.ID)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := repository.Patch{}
	if in.Name != nil {
		name, err := requireName(in.Name)
		if err != nil {
			return nil, err
		}
		patch["name"] = name
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.IsActive != nil {
		patch["is_active"] = *in.IsActive
	}
	return s.categories.Update(ctx, c, patch)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.categories.Delete(ctx, c)
}

// Services

func (s *CatalogService) ListServices(ctx context.Context, skip, limit int) ([]models.Service, int64, error) {
	return listWithTotal(ctx, s.services, skip, limit)
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return s.services.Get(ctx, id)
}

func (s *CatalogService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.categories.Get(ctx, *id)
	return err
}

func (s *CatalogService) CreateService(ctx context.Context, in ServiceInput) (*models.Service, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := checkPrice(in.Price); err != nil {
		return nil, err
	}
	if in.Duration != nil && *in.Duration <= 0 {
		return nil, errs.Validation("Duration must be positive")
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	svc := &models.Service{
		CategoryID:  in.CategoryID,
		Name:        name,
		Description: valueOr(in.Description),
		Price:       valueOr(in.Price),
		Duration:    valueOr(in.Duration),
		IsActive:    boolOr(in.IsActive, true),
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, in ServiceInput) (*models.Service, error) {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := repository.Patch{}
	if in.Name != nil {
		name, err := requireName(in.Name)
		if err != nil {
			return nil, err
		}
		patch["name"] = name
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		patch["category_id"] = *in.CategoryID
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Price != nil {
		if err := checkPrice(in.Price); err != nil {
			return nil, err
		}
		patch["price"] = *in.Price
	}
	if in.Duration != nil {
		if *in.Duration <= 0 {
			return nil, errs.Validation("Duration must be positive")
		}
		patch["duration"] = *in.Duration
	}
	if in.IsActive != nil {
		patch["is_active"] = *in.IsActive
	}
	return s.services.Update(ctx, svc, patch)
}

func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.services.Delete(ctx, svc)
}

// Products

func (s *CatalogService) ListProducts(ctx context.Context, skip, limit int) ([]models.Product, int64, error) {
	return listWithTotal(ctx, s.products, skip, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := checkPrice(in.Price); err != nil {
		return nil, err
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, errs.Validation("Stock cannot be negative")
	}
	p := &models.Product{
		Name:        name,
		SKU:         valueOr(in.SKU),
		Description: valueOr(in.Description),
		Price:       valueOr(in.Price),
		Stock:       valueOr(in.Stock),
		IsActive:    boolOr(in.IsActive, true),
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.products.Get(ctx, p.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := repository.Patch{}
	if in.Name != nil {
		name, err := requireName(in.Name)
		if err != nil {
			return nil, err
		}
		patch["name"] = name
	}
	if in.SKU != nil {
		patch["sku"] = *in.SKU
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Price != nil {
		if err := checkPrice(in.Price); err != nil {
			return nil, err
		}
		patch["price"] = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, errs.Validation("Stock cannot be negative")
		}
		patch["stock"] = *in.Stock
	}
	if in.IsActive != nil {
		patch["is_active"] = *in.IsActive
	}
	return s.products.Update(ctx, p, patch)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.products.Delete(ctx, p)
}

// AddProductImage attaches an uploaded media file to a product. The first
// image, or one added with primary set, becomes the primary image.
func (s *CatalogService) AddProductImage(ctx context.Context, productID, mediaID uuid.UUID, primary bool) (*models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.products.WithTx(tx).Get(ctx, productID)
		if err != nil {
			return err
		}
		media, err := s.media.WithTx(tx).Get(ctx, mediaID)
		if err != nil {
			return err
		}

		img := &models.ProductImage{
			ProductID: p.ID,
			MediaID:   media.ID,
			URL:       media.URL,
			SortOrder: len(p.Images),
		}
		if err := tx.Create(img).Error; err != nil {
			return err
		}
		if primary || p.PrimaryImageID == nil {
			return tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("primary_image_id", img.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.products.Get(ctx, productID)
}

// RemoveProductImage soft-deletes the image. A primary reference to it is
// cleared.
func (s *CatalogService) RemoveProductImage(ctx context.Context, productID, imageID uuid.UUID) (*models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.products.WithTx(tx).Get(ctx, productID)
		if err != nil {
			return err
		}
		res := tx.Where("id = ? AND product_id = ?", imageID, productID).Delete(&models.ProductImage{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("Product image")
		}
		if p.PrimaryImageID != nil && *p.PrimaryImageID == imageID {
			return tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("primary_image_id", nil).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.products.Get(ctx, productID)
}

// Treatment plans

func (s *CatalogService) ListTreatmentPlans(ctx context.Context, skip, limit int) ([]models.TreatmentPlan, int64, error) {
	return listWithTotal(ctx, s.plans, skip, limit)
}

func (s *CatalogService) GetTreatmentPlan(ctx context.Context, id uuid.UUID) (*models.TreatmentPlan, error) {
	return s.plans.Get(ctx, id)
}

func (s *CatalogService) CreateTreatmentPlan(ctx context.Context, in TreatmentPlanInput) (*models.TreatmentPlan, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := checkPrice(in.Price); err != nil {
		return nil, err
	}
	sessions := valueOr(in.Sessions)
	if sessions <= 0 {
		sessions = 1
	}
	plan := &models.TreatmentPlan{
		Name:        name,
		Description: valueOr(in.Description),
		Sessions:    sessions,
		Price:       valueOr(in.Price),
		IsActive:    boolOr(in.IsActive, true),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ServiceIDs != nil {
			services, err := liveServices(tx, *in.ServiceIDs)
			if err != nil {
				return err
			}
			plan.Services = services
		}
		return tx.Create(plan).Error
	})
	if err != nil {
		return nil, err
	}
	return s.plans.Get(ctx, plan.ID)
}

func (s *CatalogService) UpdateTreatmentPlan(ctx context.Context, id uuid.UUID, in TreatmentPlanInput) (*models.TreatmentPlan, error) {
	plan, err := s.plans.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := repository.Patch{}
	if in.Name != nil {
		name, err := requireName(in.Name)
		if err != nil {
			return nil, err
		}
		patch["name"] = name
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Sessions != nil {
		if *in.Sessions <= 0 {
			return nil, errs.Validation("Sessions must be positive")
		}
		patch["sessions"] = *in.Sessions
	}
	if in.Price != nil {
		if err := checkPrice(in.Price); err != nil {
			return nil, err
		}
		patch["price"] = *in.Price
	}
	if in.IsActive != nil {
		patch["is_active"] = *in.IsActive
	}
	if _, err := s.plans.Update(ctx, plan, patch); err != nil {
		return nil, err
	}
	if in.ServiceIDs != nil {
		return s.SetTreatmentPlanServices(ctx, id, *in.ServiceIDs)
	}
	return s.plans.Get(ctx, id)
}

// SetTreatmentPlanServices replaces the services bundled in a plan.
func (s *CatalogService) SetTreatmentPlanServices(ctx context.Context, planID uuid.UUID, serviceIDs []uuid.UUID) (*models.TreatmentPlan, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := s.plans.WithTx(tx).Get(ctx, planID)
		if err != nil {
			return err
		}
		services, err := liveServices(tx, serviceIDs)
		if err != nil {
			return err
		}
		assoc := tx.Model(plan).Association("Services")
		if len(services) == 0 {
			return assoc.Clear()
		}
		return assoc.Replace(services)
	})
	if err != nil {
		return nil, err
	}
	return s.plans.Get(ctx, planID)
}

func (s *CatalogService) DeleteTreatmentPlan(ctx context.Context, id uuid.UUID) error {
	plan, err := s.plans.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.plans.Delete(ctx, plan); err != nil {
		return err
	}
	s.logger.Info("treatment plan deleted", zap.String("plan_id", id.String()))
	return nil
}
