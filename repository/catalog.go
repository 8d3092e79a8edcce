package repository

import (
	"spacrm-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func serviceDeleted(s *models.Service) bool { return s.DeletedAt.Valid }

func NewCategoryRepository(db *gorm.DB) *Repository[models.Category] {
	return New(db, Options[models.Category]{
		Entity: "Category",
		Key:    func(c *models.Category) uuid.UUID { return c.ID },
		Preload: func(q *gorm.DB) *gorm.DB {
			return q.Preload("Services")
		},
		Prune: func(c *models.Category) {
			c.Services = PruneDeleted(c.Services, serviceDeleted)
		},
		Order: "name ASC",
	})
}

func NewServiceRepository(db *gorm.DB) *Repository[models.Service] {
	return New(db, Options[models.Service]{
		Entity: "Service",
		Key:    func(s *models.Service) uuid.UUID { return s.ID },
		Order:  "name ASC",
	})
}

func NewProductRepository(db *gorm.DB) *Repository[models.Product] {
	return New(db, Options[models.Product]{
		Entity: "Product",
		Key:    func(p *models.Product) uuid.UUID { return p.ID },
		Preload: func(q *gorm.DB) *gorm.DB {
			return q.Preload("Images", func(db *gorm.DB) *gorm.DB {
				return db.Order("sort_order ASC")
			})
		},
		Prune: PruneProduct,
	})
}

// PruneProduct drops deleted images and clears a primary image reference
// that no longer resolves to a live image.
func PruneProduct(p *models.Product) {
	p.Images = PruneDeleted(p.Images, func(i *models.ProductImage) bool { return i.DeletedAt.Valid })
	if p.PrimaryImageID == nil {
		return
	}
	for _, img := range p.Images {
		if img.ID == *p.PrimaryImageID {
			return
		}
	}
	p.PrimaryImageID = nil
}

func NewTreatmentPlanRepository(db *gorm.DB) *Repository[models.TreatmentPlan] {
	return New(db, Options[models.TreatmentPlan]{
		Entity: "Treatment plan",
		Key:    func(t *models.TreatmentPlan) uuid.UUID { return t.ID },
		Preload: func(q *gorm.DB) *gorm.DB {
			return q.Preload("Services")
		},
		Prune: func(t *models.TreatmentPlan) {
			t.Services = PruneDeleted(t.Services, serviceDeleted)
		},
	})
}

func NewMediaRepository(db *gorm.DB) *Repository[models.MediaFile] {
	return New(db, Options[models.MediaFile]{
		Entity: "Media file",
		Key:    func(m *models.MediaFile) uuid.UUID { return m.ID },
	})
}
