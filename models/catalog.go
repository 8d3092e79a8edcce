package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`

	Services []Service `gorm:"foreignKey:CategoryID" json:"services,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// Service is a bookable treatment offered by the spa.
type Service struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"categoryId"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	Price       float64    `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int        `json:"duration"` // in minutes
	IsActive    bool       `json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	SKU         string    `gorm:"type:varchar(64);index" json:"sku"`
	Description string    `json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`

	PrimaryImageID *uuid.UUID     `gorm:"type:uuid" json:"primaryImageId"`
	Images         []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"productId"`
	MediaID   uuid.UUID `gorm:"type:uuid;not null" json:"mediaId"`
	URL       string    `gorm:"not null" json:"url"`
	SortOrder int       `json:"sortOrder"`

	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (i *ProductImage) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// TreatmentPlan bundles several services sold as a course of sessions.
type TreatmentPlan struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Sessions    int       `json:"sessions"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	IsActive    bool      `json:"isActive"`

	Services []Service `gorm:"many2many:treatment_plan_services;" json:"services,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *TreatmentPlan) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
