package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaFile records an object uploaded to the blob store.
type MediaFile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Bucket      string    `gorm:"type:varchar(100);not null" json:"bucket"`
	Path        string    `gorm:"not null;uniqueIndex" json:"path"`
	URL         string    `gorm:"not null" json:"url"`
	FileName    string    `json:"fileName"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;index" json:"uploadedBy"`
	IsActive    bool      `json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *MediaFile) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
